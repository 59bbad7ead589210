package actor

import (
	"context"

	"github.com/dariolabs/ractor/internal/codec"
	"github.com/dariolabs/ractor/internal/store"
)

// Mailbox implements the durable intake/commit/ack protocol of spec §4.2
// over a store.Adapter. It knows nothing of an actor's concrete message
// types: every payload it handles has already been encoded to bytes by the
// owning actor's Codec, so Mailbox itself only ever encodes/decodes the
// WireEnvelope/ErrorEnvelope wrapper shapes.
type Mailbox struct {
	adapter store.Adapter
	codec   codec.Codec
	keys    Keys
}

// NewMailbox builds a Mailbox over the given store and codec for the named
// actor's key prefix.
func NewMailbox(adapter store.Adapter, c codec.Codec, keys Keys) *Mailbox {
	return &Mailbox{adapter: adapter, codec: c, keys: keys}
}

// Push places an already-encoded payload into the inbox and publishes a
// notification. highPriority selects head-push (claimed next); normal
// priority pushes to the tail (spec §4.1's resolved FIFO convention, see
// SPEC_FULL.md §9 Q1).
func (m *Mailbox) Push(ctx context.Context, payload []byte, correlationID string,
	highPriority bool) error {

	env := WireEnvelope{Payload: payload, CorrelationID: correlationID}

	data, err := m.codec.Encode(env)
	if err != nil {
		return err
	}

	if highPriority {
		if err := m.adapter.ListPushHead(ctx, m.keys.Inbox, data); err != nil {
			return err
		}
	} else if err := m.adapter.ListPushTail(ctx, m.keys.Inbox, data); err != nil {
		return err
	}

	return m.adapter.Publish(ctx, m.keys.Channel, "")
}

// Claim atomically moves the oldest envelope from inbox to pipeline (spec
// §4.2/§6), returning ok=false if the inbox was empty.
func (m *Mailbox) Claim(ctx context.Context) (pipelineID string,
	env WireEnvelope, ok bool, err error) {

	pipelineID = NewID()

	raw, err := m.adapter.Eval(
		ctx, store.ClaimScript,
		[]string{m.keys.Inbox, m.keys.Pipeline},
		pipelineID,
	)
	if err != nil {
		return "", WireEnvelope{}, false, err
	}
	if raw == nil {
		return "", WireEnvelope{}, false, nil
	}

	if err := m.codec.Decode(raw, &env); err != nil {
		return "", WireEnvelope{}, false, err
	}

	return pipelineID, env, true, nil
}

// RecordInFlight records env in the pipeline hash directly, without
// popping from the inbox. Used by the local-bypass PostAndReply path
// (spec §4.5 path A), which never touches the inbox list.
func (m *Mailbox) RecordInFlight(ctx context.Context,
	env WireEnvelope) (string, error) {

	pipelineID := NewID()

	data, err := m.codec.Encode(env)
	if err != nil {
		return "", err
	}

	if err := m.adapter.HashSet(
		ctx, m.keys.Pipeline, pipelineID, data, store.OverwriteAlways,
	); err != nil {
		return "", err
	}

	return pipelineID, nil
}

// DeletePipelineEntry removes a pipeline entry without recording a result
// or error, used once the local-bypass path has fanned out and returned
// its result directly to the caller.
func (m *Mailbox) DeletePipelineEntry(ctx context.Context, pipelineID string) error {
	return m.adapter.HashDelete(ctx, m.keys.Pipeline, pipelineID)
}

// Commit deletes the pipeline entry and, if the envelope carries a
// correlation id, writes the result and publishes it (spec §4.2 "Commit",
// steps 2-3; fan-out to children is step 1 and is the caller's
// responsibility, since it requires the actor's typed Ref children).
func (m *Mailbox) Commit(ctx context.Context, pipelineID string,
	env WireEnvelope, outputPayload []byte) error {

	if err := m.adapter.HashDelete(ctx, m.keys.Pipeline, pipelineID); err != nil {
		return err
	}

	if env.CorrelationID == "" {
		return nil
	}

	if err := m.adapter.HashSet(
		ctx, m.keys.Results, env.CorrelationID, outputPayload,
		store.OverwriteAlways,
	); err != nil {
		return err
	}

	return m.adapter.Publish(ctx, m.keys.Channel, env.CorrelationID)
}

// RecordError appends errEnv to the errors list and deletes the pipeline
// entry, preventing infinite re-execution of a deterministically failing
// message (spec §4.2, resolving Open Question 2).
func (m *Mailbox) RecordError(ctx context.Context, pipelineID string,
	errEnv ErrorEnvelope) error {

	data, err := m.codec.Encode(errEnv)
	if err != nil {
		return err
	}

	if err := m.adapter.ListPushTail(ctx, m.keys.Errors, data); err != nil {
		return err
	}

	return m.adapter.HashDelete(ctx, m.keys.Pipeline, pipelineID)
}

// ReadResult reads results[cid]. If found and retain is false, the entry
// is deleted (read-once semantics), resolving Open Question 4's toggle.
func (m *Mailbox) ReadResult(ctx context.Context, correlationID string,
	retain bool) ([]byte, bool, error) {

	raw, err := m.adapter.HashGet(ctx, m.keys.Results, correlationID)
	if err != nil {
		return nil, false, err
	}
	if raw == nil {
		return nil, false, nil
	}

	if !retain {
		if err := m.adapter.HashDelete(ctx, m.keys.Results, correlationID); err != nil {
			log.WarnS(ctx, "failed to delete read result", err,
				"correlation_id", correlationID)
		}
	}

	return raw, true, nil
}

// Recover scans the pipeline hash and returns every in-flight envelope, for
// re-execution on actor Start (spec §4.2 "Recovery", resolving Open
// Question 3).
func (m *Mailbox) Recover(ctx context.Context) (map[string]WireEnvelope, error) {
	raw, err := m.adapter.HashScan(ctx, m.keys.Pipeline)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]WireEnvelope, len(raw))
	for pipelineID, data := range raw {
		var env WireEnvelope
		if err := m.codec.Decode(data, &env); err != nil {
			log.WarnS(ctx, "skipping unrecoverable pipeline entry",
				err, "pipeline_id", pipelineID)
			continue
		}
		entries[pipelineID] = env
	}

	return entries, nil
}

// QueueLength returns the inbox's current length.
func (m *Mailbox) QueueLength(ctx context.Context) (int, error) {
	return m.adapter.ListLength(ctx, m.keys.Inbox)
}
