package domain

import (
	"fmt"
	"regexp"
)

// MaxSecretIDLength is the longest id accepted by the vault.
const MaxSecretIDLength = 128

var secretIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@-]*$`)

// ValidateSecretID reports whether id can safely name a vault record.
func ValidateSecretID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidSecretID)
	}
	if len(id) > MaxSecretIDLength {
		return fmt.Errorf("%w: id longer than %d characters", ErrInvalidSecretID, MaxSecretIDLength)
	}
	if !secretIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidSecretID, id)
	}
	return nil
}
