package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure into the API error taxonomy.
type Code string

const (
	// CodeInvalidArgument indicates malformed or contradictory input.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// CodeForbidden indicates a failed authorization predicate.
	CodeForbidden Code = "FORBIDDEN"

	// CodeNotFound indicates a referenced entity is absent, or a
	// conditional update matched zero rows.
	CodeNotFound Code = "NOT_FOUND"

	// CodeConflict indicates a uniqueness violation.
	CodeConflict Code = "CONFLICT"

	// CodeUnavailable indicates the database pool is not available.
	CodeUnavailable Code = "UNAVAILABLE"

	// CodeUpstream indicates an external collaborator failed.
	CodeUpstream Code = "UPSTREAM"

	// CodeInternal indicates an unclassified store or runtime error.
	CodeInternal Code = "INTERNAL"
)

// Error is a classified error with a caller-safe message and an optional
// wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// New creates a classified error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a classified error wrapping cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// InvalidArgument creates an error for malformed input.
func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

// Forbidden creates an error for a failed authorization check.
func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

// NotFound creates an error for an absent entity.
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// Conflict creates an error for a uniqueness violation.
func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

// Unavailable creates an error for an unusable database pool.
func Unavailable(message string) *Error {
	return New(CodeUnavailable, message)
}

// Upstream creates an error for an external collaborator failure.
func Upstream(message string, cause error) *Error {
	return Wrap(CodeUpstream, message, cause)
}

// Internal wraps an unclassified error.
func Internal(message string, cause error) *Error {
	return Wrap(CodeInternal, message, cause)
}

// CodeOf extracts the classification of err, defaulting to CodeInternal for
// unclassified errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Message returns the caller-safe message of err. Unclassified errors get a
// generic message so store internals are never leaked to clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps the classification of err onto an HTTP status code.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
