package tutor_errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrStorage       = errors.New("storage failure")
	ErrTooLarge      = errors.New("file too large")
	ErrRateLimited   = errors.New("rate limited")
)

// Unauthorized wraps ErrUnauthorized with a human readable reason.
func Unauthorized(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, reason)
}

// NotFound wraps ErrNotFound with the missing entity name.
func NotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// Invalid wraps ErrInvalidInput with a reason.
func Invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

// Storage wraps an I/O failure so callers can match ErrStorage while the
// cause stays reachable through errors.Unwrap.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// IsConflict reports whether err signals a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrAlreadyExists)
}
