package operation

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
	"github.com/allisson/keyvault/internal/metrics"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
	"github.com/allisson/keyvault/internal/vault/repository"
	vaultUsecase "github.com/allisson/keyvault/internal/vault/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixedKeyProvider struct{}

func (fixedKeyProvider) MasterKey(ctx context.Context) (*cryptoDomain.MasterKey, error) {
	return &cryptoDomain.MasterKey{Key: make([]byte, cryptoDomain.KeySize)}, nil
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	repo, err := repository.NewFileRecordRepository(filepath.Join(t.TempDir(), "vault"), 2)
	require.NoError(t, err)

	codec := cryptoService.NewSecretCodec(cryptoService.NewAEADManager())
	vault := vaultUsecase.NewVaultUseCase(repo, codec, fixedKeyProvider{}, cryptoDomain.AESGCM, discardLogger())
	return NewDispatcher(vault, cryptoService.NewRSAService(0), metrics.NewNoOpBusinessMetrics(), discardLogger())
}

func params(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestDispatcher_Operations(t *testing.T) {
	d := newTestDispatcher(t)
	assert.Equal(t, []string{
		OpDecrypt, OpDeleteKey, OpDeriveKey, OpEncrypt, OpGenerateKeyPair, OpGenerateToken,
		OpHash, OpListKeys, OpRetrieveKey, OpRotateKey, OpStoreKey,
	}, d.Operations())
	assert.True(t, d.Has(OpStoreKey))
	assert.False(t, d.Has("format-disk"))
}

func TestDispatcher_VaultExample(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(t)

	r := d.Dispatch(ctx, OpStoreKey, params(t, map[string]string{"id": "claude-prod", "data": "sk-test-123"}))
	require.True(t, r.Success(), r.Err())

	r = d.Dispatch(ctx, OpRetrieveKey, params(t, map[string]string{"id": "claude-prod"}))
	require.True(t, r.Success())
	assert.Equal(t, "sk-test-123", r.Payload()["key"])

	r = d.Dispatch(ctx, OpRotateKey, params(t, map[string]string{"id": "claude-prod", "newData": "sk-test-456"}))
	require.True(t, r.Success(), r.Err())

	r = d.Dispatch(ctx, OpRetrieveKey, params(t, map[string]string{"id": "claude-prod"}))
	assert.Equal(t, "sk-test-456", r.Payload()["key"])

	r = d.Dispatch(ctx, OpListKeys, nil)
	require.True(t, r.Success())
	keys := r.Payload()["keys"].([]vaultDomain.Metadata)
	require.Len(t, keys, 1)
	assert.Equal(t, uint64(1), keys[0].RotationCount)
	assert.Equal(t, vaultDomain.KindCredential, keys[0].Kind)

	r = d.Dispatch(ctx, OpDeleteKey, params(t, map[string]string{"id": "claude-prod"}))
	assert.True(t, r.Success())

	r = d.Dispatch(ctx, OpDeleteKey, params(t, map[string]string{"id": "claude-prod"}))
	assert.False(t, r.Success())
	assert.NoError(t, r.Err())

	r = d.Dispatch(ctx, OpRetrieveKey, params(t, map[string]string{"id": "claude-prod"}))
	require.True(t, r.Success())
	data, err := json.Marshal(r.Envelope())
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"key":null}`, string(data))
}

func TestDispatcher_VaultFailures(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(t)

	tests := []struct {
		name   string
		op     string
		params json.RawMessage
		kind   Kind
	}{
		{"rotate absent", OpRotateKey, json.RawMessage(`{"id":"nope","newData":"x"}`), KindNotFound},
		{"store missing id", OpStoreKey, json.RawMessage(`{"data":"x"}`), KindInvalidInput},
		{"store traversal id", OpStoreKey, json.RawMessage(`{"id":"../x","data":"x"}`), KindInvalidInput},
		{"store bad kind", OpStoreKey, json.RawMessage(`{"id":"a","data":"x","kind":"claude-api"}`), KindInvalidInput},
		{"retrieve malformed params", OpRetrieveKey, json.RawMessage(`{"id":`), KindInvalidInput},
		{"retrieve wrong param type", OpRetrieveKey, json.RawMessage(`{"id":42}`), KindInvalidInput},
		{"unknown operation", "drop-table", nil, KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := d.Dispatch(ctx, tt.op, tt.params)
			assert.False(t, r.Success())
			assert.Equal(t, tt.kind, r.Kind(), r.Err())
			assert.NotEmpty(t, r.Envelope().Error)
		})
	}
}

func TestDispatcher_StoreKind(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(t)

	r := d.Dispatch(ctx, OpStoreKey, json.RawMessage(`{"id":"signer","data":"k","kind":"signing"}`))
	require.True(t, r.Success(), r.Err())

	keys := d.Dispatch(ctx, OpListKeys, json.RawMessage(`null`)).Payload()["keys"].([]vaultDomain.Metadata)
	require.Len(t, keys, 1)
	assert.Equal(t, vaultDomain.KindSigning, keys[0].Kind)
}

func TestDispatcher_AsymmetricRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(t)

	r := d.Dispatch(ctx, OpGenerateKeyPair, nil)
	require.True(t, r.Success(), r.Err())
	keyPair := r.Payload()["keyPair"].(*cryptoDomain.KeyPair)
	assert.Contains(t, keyPair.PublicKey, "BEGIN PUBLIC KEY")
	assert.Contains(t, keyPair.PrivateKey, "BEGIN PRIVATE KEY")

	r = d.Dispatch(ctx, OpEncrypt, params(t, map[string]string{"data": "session-token", "publicKey": keyPair.PublicKey}))
	require.True(t, r.Success(), r.Err())
	encrypted := r.Payload()["encrypted"].(string)

	r = d.Dispatch(ctx, OpDecrypt, params(t, map[string]string{"encryptedData": encrypted, "privateKey": keyPair.PrivateKey}))
	require.True(t, r.Success(), r.Err())
	assert.Equal(t, "session-token", r.Payload()["decrypted"])

	t.Run("oversized plaintext", func(t *testing.T) {
		r := d.Dispatch(ctx, OpEncrypt, params(t, map[string]string{
			"data":      strings.Repeat("x", 191),
			"publicKey": keyPair.PublicKey,
		}))
		assert.Equal(t, KindPlaintextTooLarge, r.Kind())
	})

	t.Run("malformed public key", func(t *testing.T) {
		r := d.Dispatch(ctx, OpEncrypt, params(t, map[string]string{"data": "x", "publicKey": "garbage"}))
		assert.Equal(t, KindInvalidKey, r.Kind())
	})

	t.Run("missing private key", func(t *testing.T) {
		r := d.Dispatch(ctx, OpDecrypt, params(t, map[string]string{"encryptedData": encrypted}))
		assert.Equal(t, KindInvalidKey, r.Kind())
	})

	t.Run("malformed ciphertext", func(t *testing.T) {
		r := d.Dispatch(ctx, OpDecrypt, params(t, map[string]string{
			"encryptedData": "***",
			"privateKey":    keyPair.PrivateKey,
		}))
		assert.Equal(t, KindDecodeFailure, r.Kind())
	})
}

func TestDispatcher_Toolkit(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(t)

	t.Run("hash", func(t *testing.T) {
		r := d.Dispatch(ctx, OpHash, json.RawMessage(`{"data":"abc"}`))
		require.True(t, r.Success())
		assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", r.Payload()["hash"])
	})

	t.Run("generate token default length", func(t *testing.T) {
		r := d.Dispatch(ctx, OpGenerateToken, nil)
		require.True(t, r.Success())
		assert.Len(t, r.Payload()["token"], 2*cryptoDomain.DefaultTokenLength)
	})

	t.Run("generate token explicit length", func(t *testing.T) {
		r := d.Dispatch(ctx, OpGenerateToken, json.RawMessage(`{"length":8}`))
		require.True(t, r.Success())
		assert.Len(t, r.Payload()["token"], 16)
	})

	t.Run("generate token out of range", func(t *testing.T) {
		r := d.Dispatch(ctx, OpGenerateToken, json.RawMessage(`{"length":4096}`))
		assert.Equal(t, KindInvalidInput, r.Kind())

		r = d.Dispatch(ctx, OpGenerateToken, json.RawMessage(`{"length":-1}`))
		assert.Equal(t, KindInvalidInput, r.Kind())
	})

	t.Run("derive key", func(t *testing.T) {
		p := json.RawMessage(`{"password":"correct horse","salt":"battery staple"}`)
		r1 := d.Dispatch(ctx, OpDeriveKey, p)
		require.True(t, r1.Success(), r1.Err())
		r2 := d.Dispatch(ctx, OpDeriveKey, p)
		assert.Equal(t, r1.Payload()["key"], r2.Payload()["key"])
		assert.Len(t, r1.Payload()["key"], 2*cryptoDomain.KeySize)

		r := d.Dispatch(ctx, OpDeriveKey, json.RawMessage(`{"salt":"s"}`))
		assert.Equal(t, KindInvalidInput, r.Kind())
	})
}

// panickingVault is a VaultUseCase whose every method panics.
type panickingVault struct {
	vaultUsecase.VaultUseCase
}

func (panickingVault) ListKeys(ctx context.Context) ([]vaultDomain.Metadata, error) {
	panic("boom")
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	d := NewDispatcher(panickingVault{}, cryptoService.NewRSAService(0), metrics.NewNoOpBusinessMetrics(), discardLogger())

	r := d.Dispatch(context.Background(), OpListKeys, nil)
	assert.False(t, r.Success())
	assert.Equal(t, KindInternal, r.Kind())
	assert.Contains(t, r.Envelope().Error, "boom")
}

// recordingMetrics captures operation counts as "domain/operation/status".
type recordingMetrics struct {
	mu         sync.Mutex
	operations []string
}

func (r *recordingMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations = append(r.operations, domain+"/"+operation+"/"+status)
}

func (r *recordingMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

var _ metrics.BusinessMetrics = (*recordingMetrics)(nil)

func TestDispatcher_CryptoMetrics(t *testing.T) {
	ctx := context.Background()
	m := &recordingMetrics{}
	d := newTestDispatcher(t)
	d.metrics = m

	d.Dispatch(ctx, OpHash, json.RawMessage(`{"data":"x"}`))
	d.Dispatch(ctx, OpEncrypt, json.RawMessage(`{"data":"x","publicKey":"nope"}`))
	d.Dispatch(ctx, OpListKeys, nil)

	assert.Equal(t, []string{"crypto/hash/success", "crypto/encrypt/error"}, m.operations)
}

func TestDispatcher_Submit(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(t)

	results := make([]<-chan Result, 0, 10)
	for i := range 10 {
		id := "async-" + string(rune('a'+i))
		results = append(results, d.Submit(ctx, OpStoreKey, params(t, map[string]string{"id": id, "data": id})))
	}
	for _, ch := range results {
		r, ok := <-ch
		require.True(t, ok)
		assert.True(t, r.Success(), r.Err())
		_, open := <-ch
		assert.False(t, open)
	}
	d.Wait()

	keys := d.Dispatch(ctx, OpListKeys, nil).Payload()["keys"].([]vaultDomain.Metadata)
	assert.Len(t, keys, 10)

	t.Run("canceled context still completes", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		ch := d.Submit(cctx, OpStoreKey, params(t, map[string]string{"id": "late", "data": "v"}))
		cancel()
		r := <-ch
		assert.True(t, r.Success(), r.Err())
	})
}
