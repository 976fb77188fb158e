package service

import (
	"crypto/sha512"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// masterKeySalt is fixed so the same host always derives the same key.
const masterKeySalt = "keyvault-master-key-salt"

// MasterKeyDeriver derives the vault master key with PBKDF2-HMAC-SHA512 over
// (host identity || application label).
type MasterKeyDeriver struct {
	identity   HostIdentity
	label      string
	iterations int
}

// NewMasterKeyDeriver creates a deriver. Iteration counts below MinKDFIterations are raised to it.
func NewMasterKeyDeriver(identity HostIdentity, label string, iterations int) *MasterKeyDeriver {
	if iterations < cryptoDomain.MinKDFIterations {
		iterations = cryptoDomain.MinKDFIterations
	}
	return &MasterKeyDeriver{
		identity:   identity,
		label:      label,
		iterations: iterations,
	}
}

// Derive returns a fresh 32-byte master key. Every failure wraps ErrInitialization.
func (d *MasterKeyDeriver) Derive() (*cryptoDomain.MasterKey, error) {
	id, err := d.identity.Identity()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cryptoDomain.ErrMasterKeyDerivation, err)
	}

	material := make([]byte, 0, len(id)+len(d.label))
	material = append(material, id...)
	material = append(material, d.label...)
	defer cryptoDomain.Zero(material)

	key := pbkdf2.Key(material, []byte(masterKeySalt), d.iterations, cryptoDomain.KeySize, sha512.New)
	if len(key) != cryptoDomain.KeySize {
		return nil, fmt.Errorf("%w: unexpected key length %d", cryptoDomain.ErrMasterKeyDerivation, len(key))
	}

	return &cryptoDomain.MasterKey{Key: key}, nil
}
