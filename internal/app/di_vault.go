package app

import (
	"context"
	"fmt"
	"os"

	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/http"
	"github.com/allisson/keyvault/internal/vault/repository"
	vaultUsecase "github.com/allisson/keyvault/internal/vault/usecase"
)

// RecordRepository returns the file-backed record repository. Creating it prepares
// the vault directory and removes leftovers of interrupted writes.
func (c *Container) RecordRepository() (vaultUsecase.RecordRepository, error) {
	var err error
	c.recordRepositoryInit.Do(func() {
		c.recordRepository, err = c.initRecordRepository()
		c.setInitError("recordRepository", err)
	})
	if storedErr := c.initError("recordRepository"); storedErr != nil {
		return nil, storedErr
	}
	return c.recordRepository, nil
}

// VaultUseCase returns the vault use case, decorated with business metrics.
func (c *Container) VaultUseCase() (vaultUsecase.VaultUseCase, error) {
	var err error
	c.vaultUseCaseInit.Do(func() {
		c.vaultUseCase, err = c.initVaultUseCase()
		c.setInitError("vaultUseCase", err)
	})
	if storedErr := c.initError("vaultUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.vaultUseCase, nil
}

// ReadinessProbe reports ready once the master key is derived and the vault
// directory is present.
func (c *Container) ReadinessProbe() http.ReadinessProbe {
	return func(ctx context.Context) error {
		if _, err := c.MasterKeyProvider().MasterKey(ctx); err != nil {
			return err
		}
		info, err := os.Stat(c.config.VaultDataDir)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInitialization, err.Error())
		}
		if !info.IsDir() {
			return apperrors.Wrapf(apperrors.ErrInitialization, "%s is not a directory", c.config.VaultDataDir)
		}
		return nil
	}
}

// initRecordRepository creates the repository over the configured vault directory.
func (c *Container) initRecordRepository() (vaultUsecase.RecordRepository, error) {
	repo, err := repository.NewFileRecordRepository(c.config.VaultDataDir, c.config.VaultListConcurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault directory: %w", err)
	}
	return repo, nil
}

// initVaultUseCase creates the vault use case with all its dependencies.
func (c *Container) initVaultUseCase() (vaultUsecase.VaultUseCase, error) {
	repo, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for vault use case: %w", err)
	}

	algorithm, err := c.config.CipherAlgorithm()
	if err != nil {
		return nil, fmt.Errorf("failed to parse cipher algorithm for vault use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for vault use case: %w", err)
	}

	useCase := vaultUsecase.NewVaultUseCase(
		repo,
		c.SecretCodec(),
		c.MasterKeyProvider(),
		algorithm,
		c.Logger(),
	)

	return vaultUsecase.NewVaultUseCaseWithMetrics(useCase, businessMetrics), nil
}
