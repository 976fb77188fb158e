package domain

import (
	"github.com/allisson/keyvault/internal/errors"
)

// Cryptographic operation error definitions.
//
// Each error wraps one of the standard kinds from internal/errors so callers at
// the boundary can classify failures with errors.Is.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a symmetric key is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates the AEAD tag did not verify.
	//
	// The cause (wrong key, tampered ciphertext, tampered nonce or tag) is
	// deliberately not distinguished.
	ErrDecryptionFailed = errors.Wrap(errors.ErrAuthenticationFailure, "decryption failed")

	// ErrMalformedCiphertext indicates a nonce or tag of the wrong length.
	ErrMalformedCiphertext = errors.Wrap(errors.ErrDecodeFailure, "malformed ciphertext")

	// ErrMasterKeyDerivation indicates the master key could not be derived.
	ErrMasterKeyDerivation = errors.Wrap(errors.ErrInitialization, "master key derivation failed")

	// ErrHostIdentityUnavailable indicates no host identity material could be read.
	ErrHostIdentityUnavailable = errors.Wrap(errors.ErrInitialization, "host identity unavailable")

	// ErrInvalidPublicKey indicates the public key PEM could not be parsed as RSA.
	ErrInvalidPublicKey = errors.Wrap(errors.ErrInvalidKey, "invalid public key")

	// ErrInvalidPrivateKey indicates the private key PEM could not be parsed as RSA.
	ErrInvalidPrivateKey = errors.Wrap(errors.ErrInvalidKey, "invalid private key")

	// ErrPlaintextTooLarge indicates the plaintext exceeds the RSA-OAEP capacity of the key.
	ErrPlaintextTooLarge = errors.Wrap(errors.ErrPlaintextTooLarge, "plaintext exceeds key capacity")

	// ErrInvalidCiphertextEncoding indicates the asymmetric ciphertext is not valid base64.
	ErrInvalidCiphertextEncoding = errors.Wrap(errors.ErrDecodeFailure, "invalid ciphertext encoding")

	// ErrAsymmetricDecryption indicates RSA-OAEP decryption failed.
	ErrAsymmetricDecryption = errors.Wrap(errors.ErrDecodeFailure, "asymmetric decryption failed")

	// ErrInvalidTokenLength indicates a secure token length outside 1..MaxTokenLength.
	ErrInvalidTokenLength = errors.Wrap(errors.ErrInvalidInput, "invalid token length")

	// ErrEmptyPassword indicates a key derivation request without a password.
	ErrEmptyPassword = errors.Wrap(errors.ErrInvalidInput, "password cannot be empty")
)
