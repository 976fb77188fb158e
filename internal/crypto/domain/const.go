package domain

// Algorithm represents the AEAD construction used to seal vault records.
//
// Both algorithms use a 256-bit key, a 12-byte random nonce and a 16-byte
// authentication tag, so records written under either one share the same
// on-disk shape. The algorithm is stored next to each record so changing the
// configured default never strands existing records.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM. Preferred on CPUs with AES-NI.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305. Preferred without AES hardware support.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// Fixed parameters shared by the vault codec and the key derivation routines.
const (
	// KeySize is the size in bytes of every symmetric key (master key and derived keys).
	KeySize = 32

	// TagSize is the AEAD authentication tag size in bytes.
	TagSize = 16

	// MinKDFIterations is the lowest PBKDF2 iteration count accepted for any derivation.
	MinKDFIterations = 100_000

	// RSAKeyBits is the modulus size of generated key pairs.
	RSAKeyBits = 2048
)

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
