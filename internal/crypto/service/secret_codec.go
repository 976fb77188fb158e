package service

import (
	"fmt"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// VaultAAD is the associated data bound to every vault ciphertext. A ciphertext
// sealed by another application (or another context of this one) under the same
// key will not authenticate here.
const VaultAAD = "keyvault-vault"

// SecretCodec is the vault's symmetric cipher codec. It splits the AEAD tag from
// the ciphertext so the record stores ciphertext, nonce and tag as separate fields.
type SecretCodec struct {
	aeadManager AEADManager
	aad         []byte
}

// NewSecretCodec creates a codec bound to the VaultAAD label.
func NewSecretCodec(aeadManager AEADManager) *SecretCodec {
	return &SecretCodec{
		aeadManager: aeadManager,
		aad:         []byte(VaultAAD),
	}
}

// Encrypt seals plaintext under key using alg. A fresh random nonce is drawn on
// every call by the underlying AEAD.
func (s *SecretCodec) Encrypt(
	plaintext, key []byte,
	alg cryptoDomain.Algorithm,
) (Sealed, error) {
	aead, err := s.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return Sealed{}, err
	}

	out, nonce, err := aead.Encrypt(plaintext, s.aad)
	if err != nil {
		return Sealed{}, fmt.Errorf("failed to encrypt payload: %w", err)
	}

	split := len(out) - aead.Overhead()
	return Sealed{
		Ciphertext: out[:split:split],
		Nonce:      nonce,
		AuthTag:    out[split:],
	}, nil
}

// Decrypt verifies the tag and returns the plaintext.
//
// Returns ErrMalformedCiphertext when the nonce or tag has the wrong length and
// ErrDecryptionFailed when authentication fails.
func (s *SecretCodec) Decrypt(
	sealed Sealed,
	key []byte,
	alg cryptoDomain.Algorithm,
) ([]byte, error) {
	aead, err := s.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return nil, err
	}

	if len(sealed.Nonce) != aead.NonceSize() {
		return nil, fmt.Errorf(
			"%w: nonce must be %d bytes, got %d",
			cryptoDomain.ErrMalformedCiphertext,
			aead.NonceSize(),
			len(sealed.Nonce),
		)
	}
	if len(sealed.AuthTag) != aead.Overhead() {
		return nil, fmt.Errorf(
			"%w: auth tag must be %d bytes, got %d",
			cryptoDomain.ErrMalformedCiphertext,
			aead.Overhead(),
			len(sealed.AuthTag),
		)
	}

	combined := make([]byte, 0, len(sealed.Ciphertext)+len(sealed.AuthTag))
	combined = append(combined, sealed.Ciphertext...)
	combined = append(combined, sealed.AuthTag...)

	plaintext, err := aead.Decrypt(combined, sealed.Nonce, s.aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}

	return plaintext, nil
}
