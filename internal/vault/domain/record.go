// Package domain defines the vault's records and metadata.
//
// A vault holds one SecretRecord per caller-chosen id. The ciphertext, nonce and
// authentication tag of a record are always written and read together; metadata
// is stored in the clear and never contains secret material.
package domain

import (
	"time"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// Kind classifies what a stored secret is used for.
type Kind string

const (
	// KindCredential is an API key, token or password. It is the default kind.
	KindCredential Kind = "credential"
	// KindEncryption is a symmetric or asymmetric encryption key.
	KindEncryption Kind = "encryption"
	// KindSigning is a signing key.
	KindSigning Kind = "signing"
)

// Kinds lists every valid Kind.
var Kinds = []Kind{KindCredential, KindEncryption, KindSigning}

// ParseKind converts s into a Kind. An empty string yields KindCredential.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindCredential, nil
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrInvalidKind
}

// Metadata describes a record without revealing its value.
type Metadata struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
	RotationCount  uint64    `json:"rotationCount"`
	Kind           Kind      `json:"kind"`
}

// SecretRecord is the persisted form of one secret.
type SecretRecord struct {
	Metadata   Metadata
	Algorithm  cryptoDomain.Algorithm
	Ciphertext []byte
	Nonce      []byte
	AuthTag    []byte
}
