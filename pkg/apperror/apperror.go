package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindBadRequest   Kind = "BAD_REQUEST"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindConflict     Kind = "CONFLICT"
	KindInternal     Kind = "INTERNAL"
)

// GenericMessage is the only message an internal fault ever exposes.
const GenericMessage = "An error occurred while processing your request."

// HTTPStatusMap maps error kinds to HTTP status codes.
var HTTPStatusMap = map[Kind]int{
	KindNotFound:     http.StatusNotFound,
	KindBadRequest:   http.StatusBadRequest,
	KindUnauthorized: http.StatusUnauthorized,
	KindConflict:     http.StatusConflict,
	KindInternal:     http.StatusInternalServerError,
}

// Error is an application error with a kind, a caller-safe message and an
// optional cause that is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	if status, ok := HTTPStatusMap[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// New creates an Error.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NotFound creates a NOT_FOUND error with a formatted message.
func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...), nil)
}

// BadRequest creates a BAD_REQUEST error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message, nil)
}

// Unauthorized creates an UNAUTHORIZED error.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message, nil)
}

// Conflict creates a CONFLICT error with a formatted message.
func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...), nil)
}

// Internal wraps cause in an INTERNAL error carrying the generic message.
func Internal(cause error) *Error {
	return New(KindInternal, GenericMessage, cause)
}

// KindOf reports the kind of err. Errors that are not *Error are INTERNAL.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// From converts any error to *Error, treating unknown errors as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
