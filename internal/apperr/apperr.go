// Package apperr defines the error kinds shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates that a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates that the caller could not be identified.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates that the caller is known but lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a state conflict, such as verifying an already verified payment.
	ErrConflict = errors.New("conflict")
)

// Error carries a client-facing message and the kind it belongs to.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func Validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }

func Forbidden(msg string) error { return &Error{Kind: ErrForbidden, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

func Conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}
