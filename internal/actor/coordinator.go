package actor

import (
	"context"
	"errors"
	"time"
)

// PostAndReply implements both execution paths of spec §4.5: a local
// bypass when the actor is Running in this process, and a remote
// store-mediated path otherwise. On the remote path, timeout bounds the
// total wait for a result, not any individual signal wait. The local
// bypass runs the computation inline and does not apply timeout; only
// ctx can cut it short.
func (a *Actor[M, R]) PostAndReply(ctx context.Context, msg M,
	highPriority bool, timeout time.Duration) (R, error) {

	var zero R

	if a.State() == StateDisposed {
		return zero, ErrDisposed
	}

	if a.State() == StateRunning {
		return a.postAndReplyLocal(ctx, msg)
	}

	return a.postAndReplyRemote(ctx, msg, highPriority, timeout)
}

// postAndReplyLocal executes the computation directly on the caller's
// goroutine (spec §4.5 path A): it records the envelope in pipeline for
// crash recovery, runs the computation, fans out to children, deletes the
// pipeline entry, and returns the result directly. It never touches the
// results hash or the dispatcher's inbox.
func (a *Actor[M, R]) postAndReplyLocal(ctx context.Context, msg M) (R, error) {
	var zero R

	payload, err := a.codec.Encode(msg)
	if err != nil {
		return zero, err
	}

	env := WireEnvelope{Payload: payload}

	pipelineID, err := a.mailbox.RecordInFlight(ctx, env)
	if err != nil {
		return zero, err
	}

	computeCtx, cancel := mergeContexts(a.rootCtx, ctx)
	defer cancel()

	result := a.computation(computeCtx, msg)

	out, err := result.Unpack()
	if err != nil {
		a.routeError(pipelineID, env, err)
		return zero, &ComputationError{Err: err}
	}

	a.fanOut(a.rootCtx, out)

	if delErr := a.mailbox.DeletePipelineEntry(a.rootCtx, pipelineID); delErr != nil {
		log.ErrorS(a.rootCtx, "failed to delete local-bypass pipeline entry",
			delErr, "actor_id", a.id, "pipeline_id", pipelineID)
	}

	return out, nil
}

// postAndReplyRemote pushes the message with a fresh correlation id,
// notifies the channel, then polls results[cid], waiting on
// result-arrived between reads, until the total timeout elapses (spec
// §4.5 path B).
func (a *Actor[M, R]) postAndReplyRemote(ctx context.Context, msg M,
	highPriority bool, timeout time.Duration) (R, error) {

	var zero R

	correlationID := NewID()

	payload, err := a.codec.Encode(msg)
	if err != nil {
		return zero, err
	}

	if err := a.mailbox.Push(ctx, payload, correlationID, highPriority); err != nil {
		return zero, err
	}

	deadline := time.Now().Add(timeout)

	for {
		raw, found, err := a.mailbox.ReadResult(ctx, correlationID, a.retainResults)
		if err != nil {
			return zero, err
		}
		if found {
			var out R
			if err := a.codec.Decode(raw, &out); err != nil {
				return zero, err
			}
			return out, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return zero, ErrTimeout
		}

		waitCtx, cancel := context.WithTimeout(ctx, remaining)
		waitErr := a.wakeup.WaitResult(waitCtx)
		cancel()

		if waitErr != nil {
			if errors.Is(waitErr, context.DeadlineExceeded) {
				return zero, ErrTimeout
			}
			return zero, waitErr
		}
	}
}
