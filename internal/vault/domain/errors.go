package domain

import (
	"github.com/allisson/keyvault/internal/errors"
)

// Vault-specific error definitions.
var (
	// ErrSecretNotFound indicates no record exists for the id.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrCorruptRecord indicates a stored record failed authentication on read.
	ErrCorruptRecord = errors.Wrap(errors.ErrAuthenticationFailure, "corrupt record")

	// ErrMalformedRecord indicates a stored document could not be decoded.
	ErrMalformedRecord = errors.Wrap(errors.ErrDecodeFailure, "malformed record")

	// ErrInvalidSecretID indicates an id that is empty, too long or contains
	// characters that are not allowed in a vault file name.
	ErrInvalidSecretID = errors.Wrap(errors.ErrInvalidInput, "invalid secret id")

	// ErrInvalidKind indicates an unknown secret kind.
	ErrInvalidKind = errors.Wrap(errors.ErrInvalidInput, "invalid secret kind")

	// ErrStorageUnavailable indicates the vault directory could not be prepared.
	ErrStorageUnavailable = errors.Wrap(errors.ErrInitialization, "vault storage unavailable")
)
