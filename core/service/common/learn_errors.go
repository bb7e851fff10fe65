package common

import (
	"errors"

	"learning_server/core/domain"
)

// Service errors are matched with errors.Is by the HTTP layer. Specific
// errors wrap one of these with fmt.Errorf("%w: ...").
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = domain.ErrNotFound
	ErrUnavailable  = errors.New("service unavailable")
	ErrStorage      = domain.ErrStorage
)
