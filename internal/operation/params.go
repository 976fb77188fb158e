package operation

import (
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	customValidation "github.com/allisson/keyvault/internal/validation"
)

// StoreKeyParams are the inputs of store-key.
type StoreKeyParams struct {
	ID   string `json:"id"`
	Data string `json:"data"`
	Kind string `json:"kind,omitempty"` // credential (default), encryption or signing
}

// Validate checks if the store-key parameters are valid.
func (p *StoreKeyParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required, customValidation.SecretID),
		validation.Field(&p.Kind, customValidation.SecretKind),
	)
}

// KeyIDParams are the inputs of retrieve-key and delete-key.
type KeyIDParams struct {
	ID string `json:"id"`
}

// Validate checks if the id is valid.
func (p *KeyIDParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required, customValidation.SecretID),
	)
}

// RotateKeyParams are the inputs of rotate-key.
type RotateKeyParams struct {
	ID      string `json:"id"`
	NewData string `json:"newData"`
}

// Validate checks if the rotate-key parameters are valid.
func (p *RotateKeyParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ID, validation.Required, customValidation.SecretID),
	)
}

// EncryptParams are the inputs of encrypt.
type EncryptParams struct {
	Data      string `json:"data"`
	PublicKey string `json:"publicKey"`
}

// Validate accepts any input. A missing or malformed key is reported by the
// asymmetric service as an invalid key.
func (p *EncryptParams) Validate() error {
	return nil
}

// DecryptParams are the inputs of decrypt.
type DecryptParams struct {
	EncryptedData string `json:"encryptedData"`
	PrivateKey    string `json:"privateKey"`
}

// Validate accepts any input. Key and ciphertext problems are reported by the
// asymmetric service as an invalid key or a decode failure.
func (p *DecryptParams) Validate() error {
	return nil
}

// HashParams are the inputs of hash.
type HashParams struct {
	Data string `json:"data"`
}

// Validate accepts any data, including the empty string.
func (p *HashParams) Validate() error {
	return nil
}

// GenerateTokenParams are the inputs of generate-token. A zero Length uses
// cryptoDomain.DefaultTokenLength.
type GenerateTokenParams struct {
	Length int `json:"length,omitempty"`
}

// Validate checks the token length bounds.
func (p *GenerateTokenParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Length, validation.Min(0), validation.Max(cryptoDomain.MaxTokenLength)),
	)
}

// DeriveKeyParams are the inputs of derive-key.
type DeriveKeyParams struct {
	Password string `json:"password"`
	Salt     string `json:"salt"`
}

// Validate checks if the derive-key parameters are valid.
func (p *DeriveKeyParams) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Password, validation.Required),
		validation.Field(&p.Salt, validation.Required),
	)
}
