package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// vaultUseCase implements VaultUseCase.
//
// Operations on the same id are serialized by a keyed mutex; operations on
// different ids run in parallel. Reads never take a vault-wide lock because the
// repository replaces record files atomically.
type vaultUseCase struct {
	repo      RecordRepository
	codec     cryptoService.Codec
	keys      cryptoService.MasterKeyProvider
	algorithm cryptoDomain.Algorithm
	locks     *keyedMutex
	logger    *slog.Logger
	now       func() time.Time
}

// NewVaultUseCase creates the vault store. New records are sealed with algorithm;
// existing records are opened with the algorithm stored alongside them.
func NewVaultUseCase(
	repo RecordRepository,
	codec cryptoService.Codec,
	keys cryptoService.MasterKeyProvider,
	algorithm cryptoDomain.Algorithm,
	logger *slog.Logger,
) VaultUseCase {
	return &vaultUseCase{
		repo:      repo,
		codec:     codec,
		keys:      keys,
		algorithm: algorithm,
		locks:     newKeyedMutex(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Store seals plaintext and writes a fresh record for id.
func (v *vaultUseCase) Store(
	ctx context.Context,
	id string,
	plaintext []byte,
	kind vaultDomain.Kind,
) error {
	ctx = context.WithoutCancel(ctx)

	if err := vaultDomain.ValidateSecretID(id); err != nil {
		return err
	}
	kind, err := vaultDomain.ParseKind(string(kind))
	if err != nil {
		return err
	}

	masterKey, err := v.keys.MasterKey(ctx)
	if err != nil {
		return err
	}

	unlock := v.locks.Lock(id)
	defer unlock()

	sealed, err := v.codec.Encrypt(plaintext, masterKey.Key, v.algorithm)
	if err != nil {
		return err
	}

	now := v.now()
	rec := &vaultDomain.SecretRecord{
		Metadata: vaultDomain.Metadata{
			ID:             id,
			CreatedAt:      now,
			LastAccessedAt: now,
			RotationCount:  0,
			Kind:           kind,
		},
		Algorithm:  v.algorithm,
		Ciphertext: sealed.Ciphertext,
		Nonce:      sealed.Nonce,
		AuthTag:    sealed.AuthTag,
	}
	if err := v.repo.Save(ctx, rec); err != nil {
		return err
	}

	v.logger.InfoContext(ctx, "key stored", slog.String("key_id", id), slog.String("kind", string(kind)))
	return nil
}

// Retrieve opens the record for id and touches its lastAccessedAt.
func (v *vaultUseCase) Retrieve(ctx context.Context, id string) ([]byte, bool, error) {
	ctx = context.WithoutCancel(ctx)

	if err := vaultDomain.ValidateSecretID(id); err != nil {
		return nil, false, err
	}

	masterKey, err := v.keys.MasterKey(ctx)
	if err != nil {
		return nil, false, err
	}

	unlock := v.locks.Lock(id)
	defer unlock()

	rec, err := v.repo.Get(ctx, id)
	if errors.Is(err, vaultDomain.ErrSecretNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	plaintext, err := v.open(rec, masterKey)
	if err != nil {
		return nil, false, err
	}

	rec.Metadata.LastAccessedAt = v.now()
	if err := v.repo.Save(ctx, rec); err != nil {
		cryptoDomain.Zero(plaintext)
		return nil, false, err
	}

	return plaintext, true, nil
}

// Delete removes the record for id.
func (v *vaultUseCase) Delete(ctx context.Context, id string) (bool, error) {
	ctx = context.WithoutCancel(ctx)

	if err := vaultDomain.ValidateSecretID(id); err != nil {
		return false, err
	}

	unlock := v.locks.Lock(id)
	defer unlock()

	deleted, err := v.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		v.logger.InfoContext(ctx, "key deleted", slog.String("key_id", id))
	}
	return deleted, nil
}

// ListKeys returns the metadata of every record.
func (v *vaultUseCase) ListKeys(ctx context.Context) ([]vaultDomain.Metadata, error) {
	records, err := v.repo.List(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}

	keys := make([]vaultDomain.Metadata, 0, len(records))
	for _, rec := range records {
		keys = append(keys, rec.Metadata)
	}
	slices.SortFunc(keys, func(a, b vaultDomain.Metadata) int {
		return strings.Compare(a.ID, b.ID)
	})
	return keys, nil
}

// Rotate re-seals id with a new value under a fresh nonce.
func (v *vaultUseCase) Rotate(ctx context.Context, id string, plaintext []byte) error {
	ctx = context.WithoutCancel(ctx)

	if err := vaultDomain.ValidateSecretID(id); err != nil {
		return err
	}

	masterKey, err := v.keys.MasterKey(ctx)
	if err != nil {
		return err
	}

	unlock := v.locks.Lock(id)
	defer unlock()

	rec, err := v.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	sealed, err := v.codec.Encrypt(plaintext, masterKey.Key, v.algorithm)
	if err != nil {
		return err
	}

	rec.Algorithm = v.algorithm
	rec.Ciphertext = sealed.Ciphertext
	rec.Nonce = sealed.Nonce
	rec.AuthTag = sealed.AuthTag
	rec.Metadata.RotationCount++
	rec.Metadata.LastAccessedAt = v.now()

	if err := v.repo.Save(ctx, rec); err != nil {
		return err
	}

	v.logger.InfoContext(
		ctx,
		"key rotated",
		slog.String("key_id", id),
		slog.Uint64("rotation_count", rec.Metadata.RotationCount),
	)
	return nil
}

// open decrypts rec, reporting an authentication failure as ErrCorruptRecord.
func (v *vaultUseCase) open(rec *vaultDomain.SecretRecord, masterKey *cryptoDomain.MasterKey) ([]byte, error) {
	alg, err := cryptoDomain.ParseAlgorithm(string(rec.Algorithm))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: unknown algorithm %q", vaultDomain.ErrMalformedRecord, rec.Metadata.ID, rec.Algorithm)
	}

	plaintext, err := v.codec.Decrypt(cryptoService.Sealed{
		Ciphertext: rec.Ciphertext,
		Nonce:      rec.Nonce,
		AuthTag:    rec.AuthTag,
	}, masterKey.Key, alg)
	if errors.Is(err, cryptoDomain.ErrDecryptionFailed) {
		return nil, fmt.Errorf("%w: %s: %v", vaultDomain.ErrCorruptRecord, rec.Metadata.ID, err)
	}
	if errors.Is(err, cryptoDomain.ErrMalformedCiphertext) {
		return nil, fmt.Errorf("%w: %s: %v", vaultDomain.ErrMalformedRecord, rec.Metadata.ID, err)
	}
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}
