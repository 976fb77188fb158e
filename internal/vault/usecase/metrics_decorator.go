package usecase

import (
	"context"
	"time"

	"github.com/allisson/keyvault/internal/metrics"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

const metricsDomain = "vault"

// vaultUseCaseWithMetrics decorates VaultUseCase with metrics instrumentation.
type vaultUseCaseWithMetrics struct {
	next    VaultUseCase
	metrics metrics.BusinessMetrics
}

// NewVaultUseCaseWithMetrics wraps a VaultUseCase with metrics recording.
func NewVaultUseCaseWithMetrics(useCase VaultUseCase, m metrics.BusinessMetrics) VaultUseCase {
	return &vaultUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Store records metrics for key store operations.
func (v *vaultUseCaseWithMetrics) Store(
	ctx context.Context,
	id string,
	plaintext []byte,
	kind vaultDomain.Kind,
) error {
	start := time.Now()
	err := v.next.Store(ctx, id, plaintext, kind)
	metrics.Observe(ctx, v.metrics, metricsDomain, "key_store", start, err)
	return err
}

// Retrieve records metrics for key retrieval operations. A missing key counts as success.
func (v *vaultUseCaseWithMetrics) Retrieve(ctx context.Context, id string) ([]byte, bool, error) {
	start := time.Now()
	value, found, err := v.next.Retrieve(ctx, id)
	metrics.Observe(ctx, v.metrics, metricsDomain, "key_retrieve", start, err)
	return value, found, err
}

// Delete records metrics for key deletion operations.
func (v *vaultUseCaseWithMetrics) Delete(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	deleted, err := v.next.Delete(ctx, id)
	metrics.Observe(ctx, v.metrics, metricsDomain, "key_delete", start, err)
	return deleted, err
}

// ListKeys records metrics for key listing operations.
func (v *vaultUseCaseWithMetrics) ListKeys(ctx context.Context) ([]vaultDomain.Metadata, error) {
	start := time.Now()
	keys, err := v.next.ListKeys(ctx)
	metrics.Observe(ctx, v.metrics, metricsDomain, "key_list", start, err)
	return keys, err
}

// Rotate records metrics for key rotation operations.
func (v *vaultUseCaseWithMetrics) Rotate(ctx context.Context, id string, plaintext []byte) error {
	start := time.Now()
	err := v.next.Rotate(ctx, id, plaintext)
	metrics.Observe(ctx, v.metrics, metricsDomain, "key_rotate", start, err)
	return err
}
