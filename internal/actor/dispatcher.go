package actor

import "context"

// runDispatchLoop is the per-actor long-running task of spec §4.4. It
// claims without holding a semaphore permit (an idle actor blocked on
// message-arrived holds no permit), then acquires one permit per claimed
// message immediately before spawning its computation, resolving Open
// Question 6: the permit is released from inside the spawned goroutine
// once that computation's commit/error-routing completes, not merely once
// it starts.
func (a *Actor[M, R]) runDispatchLoop() {
	for {
		pipelineID, env, ok, err := a.mailbox.Claim(a.loopCtx)
		if err != nil {
			log.ErrorS(a.loopCtx, "mailbox claim failed, stopping dispatcher",
				err, "actor_id", a.id)
			return
		}

		if !ok {
			if waitErr := a.wakeup.WaitMessage(a.loopCtx); waitErr != nil {
				return
			}
			continue
		}

		if err := a.sem.Acquire(a.loopCtx, 1); err != nil {
			// Loop is being cancelled. The envelope is already
			// recorded in pipeline; it will be picked up by
			// recovery when a new Actor with this identity starts.
			return
		}

		go a.executeClaimed(pipelineID, env)
	}
}

// recover re-dispatches every envelope left in the pipeline hash from a
// prior crash (spec §4.2 Recovery), each as a freshly claimed envelope.
func (a *Actor[M, R]) recover(ctx context.Context) {
	entries, err := a.mailbox.Recover(ctx)
	if err != nil {
		log.ErrorS(ctx, "pipeline recovery scan failed", err, "actor_id", a.id)
		return
	}

	for pipelineID, env := range entries {
		log.InfoS(ctx, "recovering in-flight envelope", "actor_id", a.id,
			"pipeline_id", pipelineID)

		if err := a.sem.Acquire(ctx, 1); err != nil {
			return
		}

		go a.executeClaimed(pipelineID, env)
	}
}

// executeClaimed runs the computation for a claimed (or recovered)
// envelope and commits or records its outcome, releasing its semaphore
// permit only once that is done.
func (a *Actor[M, R]) executeClaimed(pipelineID string, env WireEnvelope) {
	defer a.sem.Release(1)

	var msg M
	if err := a.codec.Decode(env.Payload, &msg); err != nil {
		a.routeError(pipelineID, env, err)
		return
	}

	result := a.computation(a.rootCtx, msg)

	out, err := result.Unpack()
	if err != nil {
		a.routeError(pipelineID, env, err)
		return
	}

	a.commit(pipelineID, env, out)
}

// commit fans the output to linked children, then deletes the pipeline
// entry and, for a non-empty correlation id, writes the result and
// publishes it (spec §4.2 "Commit").
func (a *Actor[M, R]) commit(pipelineID string, env WireEnvelope, out R) {
	ctx := a.rootCtx

	a.fanOut(ctx, out)

	var outputPayload []byte
	if env.CorrelationID != "" {
		encoded, err := a.codec.Encode(out)
		if err != nil {
			log.ErrorS(ctx, "failed to encode result payload", err,
				"actor_id", a.id, "correlation_id", env.CorrelationID)
		} else {
			outputPayload = encoded
		}
	}

	if err := a.mailbox.Commit(ctx, pipelineID, env, outputPayload); err != nil {
		log.ErrorS(ctx, "mailbox commit failed", err, "actor_id", a.id,
			"pipeline_id", pipelineID)
	}
}

// fanOut posts out to every currently linked child, under a snapshot of
// the children map so dispatch never holds the lock during network I/O.
func (a *Actor[M, R]) fanOut(ctx context.Context, out R) {
	a.mu.RLock()
	children := make([]Ref, 0, len(a.children))
	for _, child := range a.children {
		children = append(children, child)
	}
	a.mu.RUnlock()

	for _, child := range children {
		if err := child.Post(ctx, out, false); err != nil {
			log.WarnS(ctx, "fan-out post failed", err,
				"actor_id", a.id, "child_id", child.ID())
		}
	}
}

// routeError records a computation failure to the errors list and deletes
// the pipeline entry (both via Mailbox.RecordError) so a deterministically
// failing message is not retried forever, then forwards it to the bound
// error handler, if any (spec §4.2, resolving Open Question 2).
func (a *Actor[M, R]) routeError(pipelineID string, env WireEnvelope, cause error) {
	ctx := a.rootCtx

	errEnv := ErrorEnvelope{
		ActorID: a.id,
		Payload: env.Payload,
		Err:     cause.Error(),
	}

	if err := a.mailbox.RecordError(ctx, pipelineID, errEnv); err != nil {
		log.ErrorS(ctx, "failed to record computation error", err,
			"actor_id", a.id, "pipeline_id", pipelineID)
	}

	handler := a.ErrorHandler()
	if handler == nil {
		return
	}

	if err := handler.Post(ctx, errEnv, false); err != nil {
		log.WarnS(ctx, "failed to forward error to handler", err,
			"actor_id", a.id, "handler_id", handler.ID())
	}
}
