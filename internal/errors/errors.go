// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. Every primitive failure inside the vault and
// crypto packages is converted into one of these kinds before it leaves the package.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthenticationFailure indicates an integrity tag did not verify
	// (tampered data, corruption or the wrong key).
	ErrAuthenticationFailure = errors.New("authentication failure")

	// ErrDecodeFailure indicates malformed stored data or malformed key material.
	ErrDecodeFailure = errors.New("decode failure")

	// ErrInvalidKey indicates malformed asymmetric key material.
	ErrInvalidKey = errors.New("invalid key")

	// ErrPlaintextTooLarge indicates the payload exceeds a single-shot asymmetric capacity.
	ErrPlaintextTooLarge = errors.New("plaintext too large")

	// ErrInitialization indicates the subsystem could not start (key derivation or
	// storage setup failed). It is never retried.
	ErrInitialization = errors.New("initialization failure")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is like Wrap but formats the message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
