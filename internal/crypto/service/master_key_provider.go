package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// ErrProviderClosed is returned by a LazyMasterKeyProvider after Close.
var ErrProviderClosed = apperrors.Wrap(apperrors.ErrInitialization, "master key provider closed")

// LazyMasterKeyProvider derives the master key once, on first request, and then
// serves the cached value. A derivation failure is remembered and returned to every
// later caller; it is never retried.
type LazyMasterKeyProvider struct {
	deriver *MasterKeyDeriver
	logger  *slog.Logger

	mu      sync.Mutex
	derived bool
	key     *cryptoDomain.MasterKey
	err     error
}

// NewLazyMasterKeyProvider creates a provider around deriver.
func NewLazyMasterKeyProvider(deriver *MasterKeyDeriver, logger *slog.Logger) *LazyMasterKeyProvider {
	return &LazyMasterKeyProvider{
		deriver: deriver,
		logger:  logger,
	}
}

// MasterKey returns the process-wide master key, deriving it under the provider lock
// if this is the first call.
func (p *LazyMasterKeyProvider) MasterKey(ctx context.Context) (*cryptoDomain.MasterKey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.derived {
		return p.key, p.err
	}

	start := time.Now()
	p.key, p.err = p.deriver.Derive()
	p.derived = true

	if p.err != nil {
		p.logger.ErrorContext(ctx, "master key derivation failed", slog.Any("error", p.err))
	} else {
		p.logger.DebugContext(ctx, "master key derived", slog.Duration("duration", time.Since(start)))
	}

	return p.key, p.err
}

// Close zeroes the cached key. Later calls fail with ErrProviderClosed.
func (p *LazyMasterKeyProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.key.Close()
	p.key = nil
	p.derived = true
	p.err = ErrProviderClosed
}
