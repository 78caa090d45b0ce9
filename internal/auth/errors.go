package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound is returned by stores when no record matches.
	ErrAccountNotFound = errors.New("auth: account not found")
	// ErrDuplicateEmail is returned when a registration collides with an
	// existing account. Exactly one account may exist per email.
	ErrDuplicateEmail = errors.New("auth: email already registered")
	// ErrInvalidCredentials covers both a missing account and a password
	// mismatch so callers cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrForbidden means the caller is authenticated but its role does
	// not grant the requested operation.
	ErrForbidden = errors.New("auth: forbidden")
	// ErrStoreUnavailable wraps infrastructure failures from the account
	// store. Retrying is the caller's decision, not this package's.
	ErrStoreUnavailable = errors.New("auth: account store unavailable")
)

// ValidationError is a user-correctable input failure scoped to a single
// field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("auth: invalid %s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
