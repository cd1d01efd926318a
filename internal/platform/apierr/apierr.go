package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a client-visible failure: an HTTP status, a stable machine code and the underlying error
// whose message is shown to the user. Field is set for form-field validation failures.
type Error struct {
	Status int
	Code   string
	Field  string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

func Unauthorized(err error) *Error {
	return New(http.StatusUnauthorized, "unauthorized", err)
}

func NotFound(code string, err error) *Error {
	return New(http.StatusNotFound, code, err)
}

func Conflict(code string, err error) *Error {
	return New(http.StatusConflict, code, err)
}

// Upstream reports a failure of an external AI service.
func Upstream(code string, err error) *Error {
	return New(http.StatusBadGateway, code, err)
}

// FieldError is a local-input failure attached to a single form field.
func FieldError(field, message string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Code: "invalid_" + field, Field: field, Err: errors.New(message)}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

type messageError struct {
	msg   string
	cause error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.cause }

// WithMessage shows msg to the user while keeping cause in the chain for errors.Is and logging.
func WithMessage(msg string, cause error) error {
	return &messageError{msg: msg, cause: cause}
}

// Cause returns the error wrapped by WithMessage, or err itself.
func Cause(err error) error {
	var me *messageError
	if errors.As(err, &me) && me.cause != nil {
		return me.cause
	}
	return err
}
