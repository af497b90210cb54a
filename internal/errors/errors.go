package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Error is the request-boundary error type. Status is the HTTP status the
// handler layer should respond with, Msg is the client-safe message, and Err
// is the wrapped cause (logged, never echoed to clients).
type Error struct {
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation creates a 400 error for malformed or missing input.
func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Msg: msg}
}

// AuthRequired creates a 401 error for requests missing an identity.
func AuthRequired(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Msg: msg}
}

// Forbidden creates a 403 error for authenticated but unauthorized requests.
func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Msg: msg}
}

// NotFound creates a 404 error.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Msg: msg}
}

// Conflict creates a 409 error for uniqueness violations.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Msg: msg}
}

// Upstream creates a 502 error for external dependency failures. The cause
// carries upstream details for logs only.
func Upstream(msg string, cause error) *Error {
	return &Error{Status: http.StatusBadGateway, Msg: msg, Err: cause}
}

// Internal creates a 500 error for unexpected store or runtime failures.
func Internal(cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Msg: "internal error", Err: cause}
}

// Map converts repo/infra errors into boundary errors.
// Keeps the service layer clean by centralizing error mapping.
func Map(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("record not found")

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict("record already exists")

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Status: http.StatusGatewayTimeout, Msg: "request timed out", Err: err}

	case errors.Is(err, context.Canceled):
		return &Error{Status: 499, Msg: "request was canceled", Err: err}

	default:
		return Internal(err)
	}
}
