package domain

// MaxTokenLength is the largest number of random bytes GenerateSecureToken accepts.
const MaxTokenLength = 1024

// DefaultTokenLength is the number of random bytes used when no length is given.
const DefaultTokenLength = 32

// KeyPair is a PEM encoded RSA key pair returned to callers.
//
// PublicKey holds a "PUBLIC KEY" (SPKI) block and PrivateKey a "PRIVATE KEY"
// (PKCS#8) block. Key pairs are ephemeral and never persisted by the vault.
type KeyPair struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}
