package operation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	cryptoService "github.com/allisson/keyvault/internal/crypto/service"
	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/metrics"
	customValidation "github.com/allisson/keyvault/internal/validation"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
	vaultUsecase "github.com/allisson/keyvault/internal/vault/usecase"
)

// Operation names.
const (
	OpStoreKey        = "store-key"
	OpRetrieveKey     = "retrieve-key"
	OpDeleteKey       = "delete-key"
	OpListKeys        = "list-keys"
	OpRotateKey       = "rotate-key"
	OpGenerateKeyPair = "generate-key-pair"
	OpEncrypt         = "encrypt"
	OpDecrypt         = "decrypt"
	OpHash            = "hash"
	OpGenerateToken   = "generate-token"
	OpDeriveKey       = "derive-key"
)

// ErrUnknownOperation is returned for an operation name with no handler.
var ErrUnknownOperation = apperrors.Wrap(apperrors.ErrNotFound, "unknown operation")

// ErrMalformedParams is returned when the parameters are not a JSON object.
var ErrMalformedParams = apperrors.Wrap(apperrors.ErrInvalidInput, "malformed parameters")

const cryptoMetricsDomain = "crypto"

type handlerFunc func(ctx context.Context, params json.RawMessage) Result

type handler struct {
	fn handlerFunc
	// metricsDomain is empty for vault operations, which are measured by the
	// vault use case decorator.
	metricsDomain string
}

// Dispatcher routes named operations to the vault and the asymmetric toolkit.
// It is safe for concurrent use.
type Dispatcher struct {
	vault    vaultUsecase.VaultUseCase
	crypto   cryptoService.AsymmetricService
	metrics  metrics.BusinessMetrics
	logger   *slog.Logger
	handlers map[string]handler

	inflight sync.WaitGroup
}

// NewDispatcher creates a Dispatcher serving every operation.
func NewDispatcher(
	vault vaultUsecase.VaultUseCase,
	crypto cryptoService.AsymmetricService,
	m metrics.BusinessMetrics,
	logger *slog.Logger,
) *Dispatcher {
	d := &Dispatcher{
		vault:   vault,
		crypto:  crypto,
		metrics: m,
		logger:  logger,
	}
	d.handlers = map[string]handler{
		OpStoreKey:        {fn: d.storeKey},
		OpRetrieveKey:     {fn: d.retrieveKey},
		OpDeleteKey:       {fn: d.deleteKey},
		OpListKeys:        {fn: d.listKeys},
		OpRotateKey:       {fn: d.rotateKey},
		OpGenerateKeyPair: {fn: d.generateKeyPair, metricsDomain: cryptoMetricsDomain},
		OpEncrypt:         {fn: d.encrypt, metricsDomain: cryptoMetricsDomain},
		OpDecrypt:         {fn: d.decrypt, metricsDomain: cryptoMetricsDomain},
		OpHash:            {fn: d.hash, metricsDomain: cryptoMetricsDomain},
		OpGenerateToken:   {fn: d.generateToken, metricsDomain: cryptoMetricsDomain},
		OpDeriveKey:       {fn: d.deriveKey, metricsDomain: cryptoMetricsDomain},
	}
	return d
}

// Operations returns the sorted names of every supported operation.
func (d *Dispatcher) Operations() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Has reports whether name is a supported operation.
func (d *Dispatcher) Has(name string) bool {
	_, ok := d.handlers[name]
	return ok
}

// Dispatch runs the named operation to completion and returns its Result.
// Cancelling ctx after the call has started does not interrupt the operation.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, params json.RawMessage) (result Result) {
	ctx = context.WithoutCancel(ctx)
	operationID := uuid.Must(uuid.NewV7()).String()
	start := time.Now()

	h, ok := d.handlers[name]
	if !ok {
		result = Fail(fmt.Errorf("%w: %q", ErrUnknownOperation, name))
		d.logResult(ctx, name, operationID, start, result)
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result = Fail(fmt.Errorf("operation %s panicked: %v", name, r))
		}
		if h.metricsDomain != "" {
			metrics.Observe(ctx, d.metrics, h.metricsDomain, name, start, result.Err())
		}
		d.logResult(ctx, name, operationID, start, result)
	}()

	return h.fn(ctx, params)
}

// Submit runs the named operation on its own goroutine. The returned channel
// receives exactly one Result and is then closed.
func (d *Dispatcher) Submit(ctx context.Context, name string, params json.RawMessage) <-chan Result {
	out := make(chan Result, 1)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		out <- d.Dispatch(ctx, name, params)
		close(out)
	}()
	return out
}

// Wait blocks until every submitted operation has completed.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

func (d *Dispatcher) logResult(ctx context.Context, name, operationID string, start time.Time, result Result) {
	attrs := []any{
		slog.String("operation", name),
		slog.String("operation_id", operationID),
		slog.Duration("duration", time.Since(start)),
	}

	err := result.Err()
	if err == nil {
		d.logger.DebugContext(ctx, "operation completed", attrs...)
		return
	}

	kind := KindOf(err)
	attrs = append(attrs, slog.String("error_kind", string(kind)), slog.Any("error", err))
	switch kind {
	case KindInternal, KindInitializationFailure:
		d.logger.ErrorContext(ctx, "operation failed", attrs...)
	default:
		d.logger.WarnContext(ctx, "operation failed", attrs...)
	}
}

type validatable interface {
	Validate() error
}

// decodeParams unmarshals raw into dst and validates it. Missing or null
// parameters leave dst at its zero value.
func decodeParams(raw json.RawMessage, dst validatable) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, dst); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedParams, err)
		}
	}
	return customValidation.WrapValidationError(dst.Validate())
}

func (d *Dispatcher) storeKey(ctx context.Context, raw json.RawMessage) Result {
	var p StoreKeyParams
	if err := decodeParams(raw, &p); err != nil {
		return Fail(err)
	}
	if err := d.vault.Store(ctx, p.ID, []byte(p.Data), vaultDomain.Kind(p.Kind)); err != nil {
		return Fail(err)
	}
	return Ok(nil)
}

func (d *Dispatcher) retrieveKey(ctx context.Context, raw json.RawMessage) Result {
	var p KeyIDParams
	if err := decodeParams(raw, &p); err != nil {
		return Fail(err)
	}

	value, found, err := d.vault.Retrieve(ctx, p.ID)
	if err != nil {
		return Fail(err)
	}
	if !found {
		return Ok(Payload{"key": nil})
	}

	key := string(value)
	cryptoDomain.Zero(value)
	return Ok(Payload{"key": key})
}

func (d *Dispatcher) deleteKey(ctx context.Context, raw json.RawMessage) Result {
	var p KeyIDParams
	if err := decodeParams(raw, &p); err != nil {
		return Fail(err)
	}

	deleted, err := d.vault.Delete(ctx, p.ID)
	if err != nil {
		return Fail(err)
	}
	return Outcome(deleted)
}

func (d *Dispatcher) listKeys(ctx context.Context, _ json.RawMessage) Result {
	keys, err := d.vault.ListKeys(ctx)
	if err != nil {
		return Fail(err)
	}
	return Ok(Payload{"keys": keys})
}

func (d *Dispatcher) rotateKey(ctx context.Context, raw json.RawMessage) Result {
	var p RotateKeyParams
	if err := decodeParams(raw, &p); err != nil {
		return Fail(err)
	}
	if err := d.vault.Rotate(ctx, p.ID, []byte(p.NewData)); err != nil {
		return Fail(err)
	}
	return Ok(nil)
}

func (d *Dispatcher) generateKeyPair(ctx context.Context, _ json.RawMessage) Result {
	keyPair, err := d.crypto.GenerateKeyPair(ctx)
	if err != nil {
		return Fail(err)
	}
	return Ok(Payload{"keyPair": keyPair})
}

func (d *Dispatcher) encrypt(ctx context.Context, raw json.RawMessage) Result {
	var p EncryptParams
	if err := decodeParams(raw, &p); err != nil {
		return Fail(err)
	}

	encrypted, err := d.crypto.Encrypt([]byte(p.Data), p.PublicKey)
	if err != nil {
		return Fail(err)
	}
	return Ok(Payload{"encrypted": encrypted})
}

func (d *Dispatcher) decrypt(ctx context.Context, raw json.RawMessage) Result {
	var p DecryptParams
	if err := decodeParams(raw, &p); err != nil {
		return Fail(err)
	}

	plaintext, err := d.crypto.Decrypt(p.EncryptedData, p.PrivateKey)
	if err != nil {
		return Fail(err)
	}
	decrypted := string(plaintext)
	cryptoDomain.Zero(plaintext)
	return Ok(Payload{"decrypted": decrypted})
}

func (d *Dispatcher) hash(ctx context.Context, raw json.RawMessage) Result {
	var p HashParams
	if err := decodeParams(raw, &p); err != nil {
		return Fail(err)
	}
	return Ok(Payload{"hash": d.crypto.Hash([]byte(p.Data))})
}

func (d *Dispatcher) generateToken(ctx context.Context, raw json.RawMessage) Result {
	var p GenerateTokenParams
	if err := decodeParams(raw, &p); err != nil {
		return Fail(err)
	}

	length := p.Length
	if length == 0 {
		length = cryptoDomain.DefaultTokenLength
	}

	token, err := d.crypto.GenerateSecureToken(length)
	if err != nil {
		return Fail(err)
	}
	return Ok(Payload{"token": token})
}

func (d *Dispatcher) deriveKey(ctx context.Context, raw json.RawMessage) Result {
	var p DeriveKeyParams
	if err := decodeParams(raw, &p); err != nil {
		return Fail(err)
	}

	key, err := d.crypto.DeriveKey([]byte(p.Password), []byte(p.Salt))
	if err != nil {
		return Fail(err)
	}
	encoded := fmt.Sprintf("%x", key)
	cryptoDomain.Zero(key)
	return Ok(Payload{"key": encoded})
}
