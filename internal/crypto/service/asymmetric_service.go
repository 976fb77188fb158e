package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// RSAService implements AsymmetricService with RSA-2048 and OAEP/SHA-256.
// It holds no state and is independent of the vault master key.
type RSAService struct {
	bits          int
	kdfIterations int
}

// NewRSAService creates an RSAService. Iteration counts below MinKDFIterations are raised to it.
func NewRSAService(kdfIterations int) *RSAService {
	if kdfIterations < cryptoDomain.MinKDFIterations {
		kdfIterations = cryptoDomain.MinKDFIterations
	}
	return &RSAService{
		bits:          cryptoDomain.RSAKeyBits,
		kdfIterations: kdfIterations,
	}
}

// GenerateKeyPair creates a new RSA key pair encoded as SPKI / PKCS#8 PEM.
// Primitive failures are returned as-is and never retried.
func (s *RSAService) GenerateKeyPair(ctx context.Context) (*cryptoDomain.KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, s.bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	defer cryptoDomain.Zero(privDER)

	pubDER, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}

	return &cryptoDomain.KeyPair{
		PublicKey:  string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})),
		PrivateKey: string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})),
	}, nil
}

// MaxPlaintextSize returns the largest payload a single OAEP/SHA-256 block can carry for pub.
func MaxPlaintextSize(pub *rsa.PublicKey) int {
	return pub.Size() - 2*sha256.Size - 2
}

// Encrypt encrypts a small payload with RSA-OAEP and returns it base64 encoded.
//
// Returns ErrInvalidPublicKey for malformed PEM and ErrPlaintextTooLarge when the
// payload exceeds MaxPlaintextSize; the payload is never truncated.
func (s *RSAService) Encrypt(plaintext []byte, publicKeyPEM string) (string, error) {
	pub, err := parsePublicKey(publicKeyPEM)
	if err != nil {
		return "", err
	}

	if limit := MaxPlaintextSize(pub); len(plaintext) > limit {
		return "", fmt.Errorf(
			"%w: %d bytes exceeds %d byte limit",
			cryptoDomain.ErrPlaintextTooLarge,
			len(plaintext),
			limit,
		)
	}

	out, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, plaintext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt decodes and decrypts a base64 RSA-OAEP ciphertext.
//
// Returns ErrInvalidPrivateKey for malformed PEM, ErrInvalidCiphertextEncoding for
// bad base64 and ErrAsymmetricDecryption when the ciphertext does not decrypt.
func (s *RSAService) Decrypt(ciphertext string, privateKeyPEM string) ([]byte, error) {
	priv, err := parsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidCiphertextEncoding, err)
	}

	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrAsymmetricDecryption, err)
	}

	return plaintext, nil
}

// Hash returns the hex SHA-256 digest of data. It is a fingerprint, not a MAC.
func (s *RSAService) Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GenerateSecureToken returns 2*length hex characters of crypto/rand output.
func (s *RSAService) GenerateSecureToken(length int) (string, error) {
	if length <= 0 || length > cryptoDomain.MaxTokenLength {
		return "", fmt.Errorf(
			"%w: must be between 1 and %d, got %d",
			cryptoDomain.ErrInvalidTokenLength,
			cryptoDomain.MaxTokenLength,
			length,
		)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// DeriveKey derives a 32-byte key from password and salt with PBKDF2-HMAC-SHA512,
// using the same iteration floor as the master key.
func (s *RSAService) DeriveKey(password, salt []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, cryptoDomain.ErrEmptyPassword
	}
	return pbkdf2.Key(password, salt, s.kdfIterations, cryptoDomain.KeySize, sha512.New), nil
}

func parsePublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", cryptoDomain.ErrInvalidPublicKey)
	}

	switch block.Type {
	case "PUBLIC KEY":
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidPublicKey, err)
		}
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA public key", cryptoDomain.ErrInvalidPublicKey)
		}
		return pub, nil
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidPublicKey, err)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM type %q", cryptoDomain.ErrInvalidPublicKey, block.Type)
	}
}

func parsePrivateKey(privateKeyPEM string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", cryptoDomain.ErrInvalidPrivateKey)
	}

	switch block.Type {
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidPrivateKey, err)
		}
		priv, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA private key", cryptoDomain.ErrInvalidPrivateKey)
		}
		return priv, nil
	case "RSA PRIVATE KEY":
		priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidPrivateKey, err)
		}
		return priv, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM type %q", cryptoDomain.ErrInvalidPrivateKey, block.Type)
	}
}
