package common

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeValidation    Code = "validation_error"
	CodeUnauthorized  Code = "unauthorized"
	CodeForbidden     Code = "forbidden"
	CodeNotFound      Code = "not_found"
	CodeConflict      Code = "conflict"
	CodeRateLimited   Code = "rate_limited"
	CodeLimitExceeded Code = "limit_exceeded"
	CodeInternal      Code = "internal_error"
)

// Error is the coded error returned by services and repositories. Handlers
// translate the code into an HTTP status; Err is logged and never sent to clients.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// NewLimitError reports a plan limit denial; details is echoed to the client.
func NewLimitError(message string, details any) *Error {
	return &Error{Code: CodeLimitExceeded, Message: message, Details: details}
}

func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
