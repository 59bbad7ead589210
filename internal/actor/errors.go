package actor

import (
	"errors"
	"fmt"
)

// ErrNoComputation is returned by Start when the actor was constructed
// without a computation; spec §4.4 classifies this as a usage error,
// surfaced synchronously.
var ErrNoComputation = errors.New("ractor: Start requires a computation")

// ErrDisposed is returned by any operation attempted against a disposed
// actor.
var ErrDisposed = errors.New("ractor: actor is disposed")

// ErrTimeout is returned by PostAndReply when the wait for a result
// exceeds the caller's timeout.
var ErrTimeout = errors.New("ractor: timed out waiting for result")

// ComputationError wraps a failure returned by the user-supplied
// computation. It is never propagated to the dispatcher loop, which keeps
// running after recording it; it is only surfaced to a local-bypass
// PostAndReply caller (spec §4.5 path A). On the remote path a failure is
// recorded in the errors list and nothing is written to the results hash,
// so the remote caller receives ErrTimeout once its timeout elapses.
type ComputationError struct {
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("ractor: computation failed: %v", e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}
