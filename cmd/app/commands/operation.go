package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/allisson/keyvault/internal/operation"
)

// OperationDispatcher runs named operations.
type OperationDispatcher interface {
	Dispatch(ctx context.Context, name string, params json.RawMessage) operation.Result
}

// OperationError reports an operation whose envelope had success false. Its
// envelope has already been written.
type OperationError struct {
	Operation string
	Kind      operation.Kind
	Message   string
}

func (e *OperationError) Error() string {
	if e.Kind == operation.KindNone {
		return fmt.Sprintf("%s: unsuccessful", e.Operation)
	}
	return fmt.Sprintf("%s: %s: %s", e.Operation, e.Kind, e.Message)
}

// Exit codes by failure kind. An unsuccessful result without an error, such as
// deleting an absent id, exits like NotFound.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitInvalidInput   = 2
	ExitNotFound       = 3
	ExitIntegrity      = 4
	ExitInvalidKey     = 5
	ExitInitialization = 6
)

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var opErr *OperationError
	if !errors.As(err, &opErr) {
		return ExitFailure
	}

	switch opErr.Kind {
	case operation.KindNone, operation.KindNotFound:
		return ExitNotFound
	case operation.KindInvalidInput:
		return ExitInvalidInput
	case operation.KindAuthenticationFailure, operation.KindDecodeFailure:
		return ExitIntegrity
	case operation.KindInvalidKey, operation.KindPlaintextTooLarge:
		return ExitInvalidKey
	case operation.KindInitializationFailure:
		return ExitInitialization
	default:
		return ExitFailure
	}
}

// RunOperation dispatches name with params encoded as JSON and writes the envelope
// to out. A nil params value is sent as no parameters.
func RunOperation(
	ctx context.Context,
	dispatcher OperationDispatcher,
	out io.Writer,
	name string,
	params any,
) error {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return WriteResult(out, name, operation.Fail(fmt.Errorf("%w: %v", operation.ErrMalformedParams, err)))
		}
		raw = data
	}

	return WriteResult(out, name, dispatcher.Dispatch(ctx, name, raw))
}

// WriteResult prints the envelope of result as indented JSON. It returns an
// *OperationError when the result is unsuccessful.
func WriteResult(out io.Writer, name string, result operation.Result) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result.Envelope()); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if result.Success() {
		return nil
	}

	opErr := &OperationError{Operation: name, Kind: result.Kind()}
	if err := result.Err(); err != nil {
		opErr.Message = err.Error()
	}
	return opErr
}
