package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes returned in the "code" field of error responses.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeTokenExpired = "TOKEN_EXPIRED"

	CodeBadRequest   = "BAD_REQUEST"
	CodeInvalidInput = "INVALID_INPUT"
	CodeMissingField = "MISSING_FIELD"
	CodeTooLarge     = "PAYLOAD_TOO_LARGE"
	CodeNotFound     = "NOT_FOUND"

	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeRateLimited      = "RATE_LIMITED"
	CodeTimeout          = "TIMEOUT"
	CodeInternalError    = "INTERNAL_ERROR"
)

// AppError is an error with an HTTP status and a stable code. The
// middleware error handler renders it; Err is logged, never returned.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithError attaches the underlying cause.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func fieldError(code, message, field string) *AppError {
	e := newError(http.StatusBadRequest, code, message)
	e.Details = map[string]any{"field": field}
	return e
}

func Unauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return newError(http.StatusUnauthorized, CodeUnauthorized, message)
}

func InvalidToken(message string) *AppError {
	return newError(http.StatusUnauthorized, CodeInvalidToken, message)
}

func TokenExpired() *AppError {
	return newError(http.StatusUnauthorized, CodeTokenExpired, "token expired")
}

func BadRequest(message string) *AppError {
	return newError(http.StatusBadRequest, CodeBadRequest, message)
}

func InvalidInput(field, reason string) *AppError {
	return fieldError(CodeInvalidInput, fmt.Sprintf("invalid input for '%s': %s", field, reason), field)
}

func MissingField(field string) *AppError {
	return fieldError(CodeMissingField, "missing required field: "+field, field)
}

// TooLarge rejects an upload above limitBytes.
func TooLarge(limitBytes int) *AppError {
	e := newError(http.StatusRequestEntityTooLarge, CodeTooLarge, "uploaded document is too large")
	e.Details = map[string]any{"limit_bytes": limitBytes}
	return e
}

func NotFound(resource string) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, resource+" not found")
}

// ExtractionFailed reports a document whose text could not be read.
func ExtractionFailed(err error) *AppError {
	return newError(http.StatusUnprocessableEntity, CodeExtractionFailed,
		"could not extract text from the uploaded document").WithError(err)
}

func DatabaseError(operation string, err error) *AppError {
	return newError(http.StatusInternalServerError, CodeDatabaseError, "database error: "+operation).WithError(err)
}

func Unavailable(message string, err error) *AppError {
	return newError(http.StatusServiceUnavailable, CodeUnavailable, message).WithError(err)
}

func Timeout(operation string) *AppError {
	return newError(http.StatusGatewayTimeout, CodeTimeout, "operation timed out: "+operation)
}

func Internal(message string) *AppError {
	if message == "" {
		message = "internal server error"
	}
	return newError(http.StatusInternalServerError, CodeInternalError, message)
}

var (
	ErrUnauthorized = Unauthorized("")
	ErrRateLimited  = newError(http.StatusTooManyRequests, CodeRateLimited, "too many requests")
)

// IsAppError reports whether err or anything it wraps is an *AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError returns the *AppError in err's chain, or an internal error
// wrapping err when there is none.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("").WithError(err)
}
