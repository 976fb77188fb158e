// Package service provides the cryptographic primitives behind the vault: AEAD
// ciphers and the record codec, master key derivation from host identity, and the
// stateless asymmetric toolkit (RSA key pairs, hashing, tokens, password-based keys).
package service

import (
	"context"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext (tag appended) and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext (tag appended) using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)

	// NonceSize returns the nonce length in bytes.
	NonceSize() int

	// Overhead returns the authentication tag length in bytes.
	Overhead() int
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Sealed is the output of a codec encryption: the three values that must always be
// stored and read together.
type Sealed struct {
	Ciphertext []byte
	Nonce      []byte
	AuthTag    []byte
}

// Codec encrypts and decrypts vault payloads under a supplied key.
type Codec interface {
	// Encrypt seals plaintext with a fresh random nonce.
	Encrypt(plaintext, key []byte, alg cryptoDomain.Algorithm) (Sealed, error)

	// Decrypt verifies and opens a sealed payload. It never returns partial plaintext.
	Decrypt(sealed Sealed, key []byte, alg cryptoDomain.Algorithm) ([]byte, error)
}

// HostIdentity supplies stable, host-specific material for master key derivation.
type HostIdentity interface {
	Identity() ([]byte, error)
}

// MasterKeyProvider hands out the process-wide master key, deriving it on first use.
type MasterKeyProvider interface {
	MasterKey(ctx context.Context) (*cryptoDomain.MasterKey, error)
}

// AsymmetricService is the stateless toolkit for point-to-point confidentiality.
type AsymmetricService interface {
	GenerateKeyPair(ctx context.Context) (*cryptoDomain.KeyPair, error)
	Encrypt(plaintext []byte, publicKeyPEM string) (string, error)
	Decrypt(ciphertext string, privateKeyPEM string) ([]byte, error)
	Hash(data []byte) string
	GenerateSecureToken(length int) (string, error)
	DeriveKey(password, salt []byte) ([]byte, error)
}
