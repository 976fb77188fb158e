// Package validation provides the validation rules shared by operation parameters.
package validation

import (
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/keyvault/internal/errors"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// SecretID validates a vault record id.
var SecretID = validation.NewStringRuleWithError(
	func(s string) bool {
		return vaultDomain.ValidateSecretID(s) == nil
	},
	validation.NewError(
		"validation_secret_id",
		"must be 1-128 characters of letters, digits, '.', '_', '@' or '-' and start with a letter or digit",
	),
)

// SecretKind validates an optional secret kind. Empty strings pass.
var SecretKind = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := vaultDomain.ParseKind(s)
		return err == nil
	},
	validation.NewError("validation_secret_kind", "must be one of credential, encryption, signing"),
)
