// Package usecase implements the vault store: encrypted-at-rest storage of small
// secret values, one record per caller-chosen id, sealed under the host master key.
package usecase

import (
	"context"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// RecordRepository defines the persistence operations the vault needs.
type RecordRepository interface {
	Save(ctx context.Context, rec *vaultDomain.SecretRecord) error
	Get(ctx context.Context, id string) (*vaultDomain.SecretRecord, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*vaultDomain.SecretRecord, error)
}

// VaultUseCase defines the vault store operations.
type VaultUseCase interface {
	// Store encrypts plaintext under a fresh nonce and writes a new record for id,
	// replacing any existing one. An empty kind is stored as KindCredential.
	Store(ctx context.Context, id string, plaintext []byte, kind vaultDomain.Kind) error

	// Retrieve returns the plaintext for id and updates its lastAccessedAt.
	// found is false, with a nil error, when no record exists.
	//
	// Security Note: callers MUST zero the returned value after use by calling
	// cryptoDomain.Zero(value).
	Retrieve(ctx context.Context, id string) (value []byte, found bool, err error)

	// Delete removes the record for id and reports whether one existed.
	Delete(ctx context.Context, id string) (bool, error)

	// ListKeys returns the metadata of every stored record, sorted by id.
	ListKeys(ctx context.Context) ([]vaultDomain.Metadata, error)

	// Rotate replaces the value of an existing record, incrementing its rotation
	// count. Returns ErrSecretNotFound when id does not exist.
	Rotate(ctx context.Context, id string, plaintext []byte) error
}
