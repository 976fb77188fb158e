// Package operation is the request/response boundary of the vault and crypto
// toolkit. Every named operation runs through a Dispatcher and produces a Result,
// which converts to the wire Envelope {success, <payload>, error}. No failure
// escapes the boundary as a panic or a bare error.
package operation

import (
	apperrors "github.com/allisson/keyvault/internal/errors"
)

// Kind classifies a failed operation.
type Kind string

const (
	KindNone                  Kind = ""
	KindNotFound              Kind = "NotFound"
	KindAuthenticationFailure Kind = "AuthenticationFailure"
	KindDecodeFailure         Kind = "DecodeFailure"
	KindInvalidKey            Kind = "InvalidKey"
	KindPlaintextTooLarge     Kind = "PlaintextTooLarge"
	KindInitializationFailure Kind = "InitializationFailure"
	KindInvalidInput          Kind = "InvalidInput"
	KindInternal              Kind = "Internal"
)

// kindTable is checked in order; the first sentinel found in the chain wins.
var kindTable = []struct {
	target error
	kind   Kind
}{
	{apperrors.ErrAuthenticationFailure, KindAuthenticationFailure},
	{apperrors.ErrDecodeFailure, KindDecodeFailure},
	{apperrors.ErrInvalidKey, KindInvalidKey},
	{apperrors.ErrPlaintextTooLarge, KindPlaintextTooLarge},
	{apperrors.ErrNotFound, KindNotFound},
	{apperrors.ErrInitialization, KindInitializationFailure},
	{apperrors.ErrInvalidInput, KindInvalidInput},
}

// KindOf maps err to its Kind. Errors outside the domain taxonomy are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, entry := range kindTable {
		if apperrors.Is(err, entry.target) {
			return entry.kind
		}
	}
	return KindInternal
}

// Payload holds the named success fields of a Result.
type Payload map[string]any

// Result is the outcome of one operation: either Ok with a payload, or Err with a
// kind and message. delete-key folds its boolean into success, see Outcome.
type Result struct {
	ok      bool
	payload Payload
	err     error
}

// Ok returns a successful Result.
func Ok(payload Payload) Result {
	return Result{ok: true, payload: payload}
}

// Outcome returns a Result whose success flag is ok without being an error.
func Outcome(ok bool) Result {
	return Result{ok: ok}
}

// Fail returns a failed Result. A nil err is reported as an internal failure.
func Fail(err error) Result {
	if err == nil {
		err = apperrors.New("operation failed without an error")
	}
	return Result{err: err}
}

// Success reports whether the operation succeeded.
func (r Result) Success() bool {
	return r.ok
}

// Payload returns the success payload, which may be nil.
func (r Result) Payload() Payload {
	return r.payload
}

// Err returns the failure, or nil.
func (r Result) Err() error {
	return r.err
}

// Kind returns the failure kind, or KindNone.
func (r Result) Kind() Kind {
	return KindOf(r.err)
}

// Envelope converts the Result to its wire form.
func (r Result) Envelope() Envelope {
	env := Envelope{Success: r.ok, Payload: r.payload}
	if r.err != nil {
		env.Success = false
		env.Error = r.err.Error()
	}
	return env
}
