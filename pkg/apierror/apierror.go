// Package apierror carries the (status, message) pairs that handlers render
// as the JSON error envelope.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	StatusCode int
	Message    string
	Errors     []string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(status int, message string) *Error {
	return &Error{StatusCode: status, Message: message}
}

// Wrap keeps err for logging while the caller only ever sees message.
func Wrap(status int, message string, err error) *Error {
	return &Error{StatusCode: status, Message: message, Err: err}
}

func BadRequest(message string) *Error { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error { return New(http.StatusConflict, message) }

func Internal(err error) *Error {
	return Wrap(http.StatusInternalServerError, "Internal server error", err)
}

// Invalid is a 400 with one message per offending field.
func Invalid(message string, fields []string) *Error {
	return &Error{StatusCode: http.StatusBadRequest, Message: message, Errors: fields}
}

// From returns err as an *Error, or a 500 wrapping it.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}

// StatusOf reports the HTTP status err would be rendered with.
func StatusOf(err error) int {
	return From(err).StatusCode
}
