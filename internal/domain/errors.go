package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable code carried by every domain error
type ErrorCode string

const (
	CodeNotFound    ErrorCode = "NOT_FOUND"
	CodeForbidden   ErrorCode = "FORBIDDEN"
	CodeValidation  ErrorCode = "VALIDATION"
	CodeUnavailable ErrorCode = "EXTERNAL_DEPENDENCY_UNAVAILABLE"
)

// Sentinel errors, one per code. Use errors.Is(err, domain.ErrNotFound) to test a returned error.
var (
	ErrNotFound    = &Error{Code: CodeNotFound, Message: "not found"}
	ErrForbidden   = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrValidation  = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrUnavailable = &Error{Code: CodeUnavailable, Message: "external dependency unavailable"}
)

// Error is the error type returned across the engine boundary.
// It carries a human-readable Message, a machine Code, and optionally the underlying cause.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a domain error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NotFoundf builds a NOT_FOUND error
func NotFoundf(format string, args ...any) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbiddenf builds a FORBIDDEN error
func Forbiddenf(format string, args ...any) error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

// Validationf builds a VALIDATION error
func Validationf(format string, args ...any) error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a failure of a store or remote service.
// Errors that already belong to the taxonomy are returned unchanged.
func Unavailable(message string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Code: CodeUnavailable, Message: message, Err: err}
}

// CodeOf returns the code of the first domain error in err's chain, or "" if there is none
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
