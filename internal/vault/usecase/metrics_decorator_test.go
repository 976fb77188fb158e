package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/keyvault/internal/metrics"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

// mockVaultUseCase is a mock implementation of VaultUseCase for testing.
type mockVaultUseCase struct {
	mock.Mock
}

func (m *mockVaultUseCase) Store(ctx context.Context, id string, plaintext []byte, kind vaultDomain.Kind) error {
	return m.Called(ctx, id, plaintext, kind).Error(0)
}

func (m *mockVaultUseCase) Retrieve(ctx context.Context, id string) ([]byte, bool, error) {
	args := m.Called(ctx, id)
	value, _ := args.Get(0).([]byte)
	return value, args.Bool(1), args.Error(2)
}

func (m *mockVaultUseCase) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockVaultUseCase) ListKeys(ctx context.Context) ([]vaultDomain.Metadata, error) {
	args := m.Called(ctx)
	keys, _ := args.Get(0).([]vaultDomain.Metadata)
	return keys, args.Error(1)
}

func (m *mockVaultUseCase) Rotate(ctx context.Context, id string, plaintext []byte) error {
	return m.Called(ctx, id, plaintext).Error(0)
}

var _ VaultUseCase = (*mockVaultUseCase)(nil)

func expectMetrics(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "vault", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "vault", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

func TestNewVaultUseCaseWithMetrics(t *testing.T) {
	decorator := NewVaultUseCaseWithMetrics(&mockVaultUseCase{}, &mockBusinessMetrics{})
	assert.NotNil(t, decorator)
	assert.Implements(t, (*VaultUseCase)(nil), decorator)
}

func TestMetricsDecorator_Store(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		uc := &mockVaultUseCase{}
		m := &mockBusinessMetrics{}
		uc.On("Store", ctx, "claude-prod", []byte("v"), vaultDomain.KindCredential).Return(nil).Once()
		expectMetrics(m, ctx, "key_store", "success")

		err := NewVaultUseCaseWithMetrics(uc, m).Store(ctx, "claude-prod", []byte("v"), vaultDomain.KindCredential)
		require.NoError(t, err)
		uc.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		uc := &mockVaultUseCase{}
		m := &mockBusinessMetrics{}
		uc.On("Store", ctx, "bad id", []byte("v"), vaultDomain.Kind("")).
			Return(vaultDomain.ErrInvalidSecretID).
			Once()
		expectMetrics(m, ctx, "key_store", "error")

		err := NewVaultUseCaseWithMetrics(uc, m).Store(ctx, "bad id", []byte("v"), "")
		assert.ErrorIs(t, err, vaultDomain.ErrInvalidSecretID)
		m.AssertExpectations(t)
	})
}

func TestMetricsDecorator_Retrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_NotFoundIsSuccess", func(t *testing.T) {
		uc := &mockVaultUseCase{}
		m := &mockBusinessMetrics{}
		uc.On("Retrieve", ctx, "missing").Return(nil, false, nil).Once()
		expectMetrics(m, ctx, "key_retrieve", "success")

		value, found, err := NewVaultUseCaseWithMetrics(uc, m).Retrieve(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, value)
		m.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		uc := &mockVaultUseCase{}
		m := &mockBusinessMetrics{}
		uc.On("Retrieve", ctx, "a").Return(nil, false, vaultDomain.ErrCorruptRecord).Once()
		expectMetrics(m, ctx, "key_retrieve", "error")

		_, _, err := NewVaultUseCaseWithMetrics(uc, m).Retrieve(ctx, "a")
		assert.ErrorIs(t, err, vaultDomain.ErrCorruptRecord)
		m.AssertExpectations(t)
	})
}

func TestMetricsDecorator_Delete(t *testing.T) {
	ctx := context.Background()
	uc := &mockVaultUseCase{}
	m := &mockBusinessMetrics{}
	uc.On("Delete", ctx, "a").Return(true, nil).Once()
	expectMetrics(m, ctx, "key_delete", "success")

	deleted, err := NewVaultUseCaseWithMetrics(uc, m).Delete(ctx, "a")
	require.NoError(t, err)
	assert.True(t, deleted)
	m.AssertExpectations(t)
}

func TestMetricsDecorator_ListKeys(t *testing.T) {
	ctx := context.Background()
	uc := &mockVaultUseCase{}
	m := &mockBusinessMetrics{}
	keys := []vaultDomain.Metadata{{ID: "a"}, {ID: "b"}}
	uc.On("ListKeys", ctx).Return(keys, nil).Once()
	expectMetrics(m, ctx, "key_list", "success")

	got, err := NewVaultUseCaseWithMetrics(uc, m).ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, keys, got)
	m.AssertExpectations(t)
}

func TestMetricsDecorator_Rotate(t *testing.T) {
	ctx := context.Background()
	uc := &mockVaultUseCase{}
	m := &mockBusinessMetrics{}
	uc.On("Rotate", ctx, "a", []byte("new")).Return(errors.New("disk full")).Once()
	expectMetrics(m, ctx, "key_rotate", "error")

	err := NewVaultUseCaseWithMetrics(uc, m).Rotate(ctx, "a", []byte("new"))
	assert.EqualError(t, err, "disk full")
	m.AssertExpectations(t)
}
