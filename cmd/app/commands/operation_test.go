package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/keyvault/internal/errors"
	"github.com/allisson/keyvault/internal/operation"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, name string, params json.RawMessage) operation.Result {
	args := m.Called(ctx, name, params)
	return args.Get(0).(operation.Result)
}

func TestRunOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		dispatcher := &MockDispatcher{}
		dispatcher.On("Dispatch", ctx, operation.OpRetrieveKey, json.RawMessage(`{"id":"claude-prod"}`)).
			Return(operation.Ok(operation.Payload{"key": "sk-test-123"}))

		var out bytes.Buffer
		err := RunOperation(ctx, dispatcher, &out, operation.OpRetrieveKey, operation.KeyIDParams{ID: "claude-prod"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"key":"sk-test-123"}`, out.String())
		dispatcher.AssertExpectations(t)
	})

	t.Run("nil-params", func(t *testing.T) {
		dispatcher := &MockDispatcher{}
		dispatcher.On("Dispatch", ctx, operation.OpListKeys, json.RawMessage(nil)).
			Return(operation.Ok(operation.Payload{"keys": []string{}}))

		var out bytes.Buffer
		require.NoError(t, RunOperation(ctx, dispatcher, &out, operation.OpListKeys, nil))
		assert.JSONEq(t, `{"success":true,"keys":[]}`, out.String())
	})

	t.Run("failure", func(t *testing.T) {
		dispatcher := &MockDispatcher{}
		dispatcher.On("Dispatch", ctx, operation.OpRotateKey, mock.Anything).
			Return(operation.Fail(apperrors.Wrap(apperrors.ErrNotFound, "secret missing")))

		var out bytes.Buffer
		err := RunOperation(ctx, dispatcher, &out, operation.OpRotateKey,
			operation.RotateKeyParams{ID: "missing", NewData: "x"})
		require.Error(t, err)

		var opErr *OperationError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, operation.KindNotFound, opErr.Kind)
		assert.Equal(t, ExitNotFound, ExitCode(err))
		assert.JSONEq(t, `{"success":false,"error":"secret missing: not found"}`, out.String())
	})

	t.Run("unsuccessful-outcome", func(t *testing.T) {
		dispatcher := &MockDispatcher{}
		dispatcher.On("Dispatch", ctx, operation.OpDeleteKey, mock.Anything).Return(operation.Outcome(false))

		var out bytes.Buffer
		err := RunOperation(ctx, dispatcher, &out, operation.OpDeleteKey, operation.KeyIDParams{ID: "gone"})
		require.Error(t, err)
		assert.Equal(t, ExitNotFound, ExitCode(err))
		assert.JSONEq(t, `{"success":false}`, out.String())
	})

	t.Run("invalid-raw-params", func(t *testing.T) {
		dispatcher := &MockDispatcher{}

		var out bytes.Buffer
		err := RunOperation(ctx, dispatcher, &out, operation.OpStoreKey, json.RawMessage(`{"id":`))
		require.Error(t, err)
		assert.Equal(t, ExitInvalidInput, ExitCode(err))
		assert.Contains(t, out.String(), `"success": false`)
		dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain error", errors.New("boom"), ExitFailure},
		{"invalid input", &OperationError{Kind: operation.KindInvalidInput}, ExitInvalidInput},
		{"authentication", &OperationError{Kind: operation.KindAuthenticationFailure}, ExitIntegrity},
		{"decode", &OperationError{Kind: operation.KindDecodeFailure}, ExitIntegrity},
		{"invalid key", &OperationError{Kind: operation.KindInvalidKey}, ExitInvalidKey},
		{"too large", &OperationError{Kind: operation.KindPlaintextTooLarge}, ExitInvalidKey},
		{"initialization", &OperationError{Kind: operation.KindInitializationFailure}, ExitInitialization},
		{"internal", &OperationError{Kind: operation.KindInternal}, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestOperationError_Error(t *testing.T) {
	assert.Equal(t, "delete-key: unsuccessful", (&OperationError{Operation: "delete-key"}).Error())
	assert.Equal(t,
		"rotate-key: NotFound: secret missing",
		(&OperationError{Operation: "rotate-key", Kind: operation.KindNotFound, Message: "secret missing"}).Error(),
	)
}
