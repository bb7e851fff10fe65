package persistence

import (
	"errors"
	"fmt"

	"learning_server/core/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// Everything except ErrNotFound matches domain.ErrStorage.
var (
	ErrNotFound  = domain.ErrNotFound
	ErrStorage   = domain.ErrStorage
	ErrDuplicate = fmt.Errorf("%w: duplicate entry", ErrStorage)
)

const uniqueViolation = "23505"

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
