// Package common defines the shared error taxonomy and small helpers used by
// both the server and the API client. Callers match sentinels with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Authentication errors. ErrInvalidCredentials is deliberately shared by
	// unknown-email and wrong-password so callers cannot tell which half failed.
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired refresh token")

	// Request-level errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// Anything unexpected. Detail is logged server-side; callers see this.
	ErrInternal = errors.New("internal error")

	// Validation root; ValidationError unwraps to it.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError is a client-correctable, field-level input error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid constructs a ValidationError for the given field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
