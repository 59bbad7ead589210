package actor

import (
	"context"
	"testing"

	"github.com/dariolabs/ractor/internal/codec"
	"github.com/dariolabs/ractor/internal/store"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestMailboxClaimInvariants exercises spec §8's quantified invariants
// directly against the mailbox, independent of the dispatcher: every
// pushed envelope is claimed exactly once, and normal-priority claims
// preserve FIFO order among themselves.
func TestMailboxClaimInvariants(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		adapter := store.NewMemoryAdapter()
		mb := NewMailbox(adapter, codec.NewMsgpackCodec(), NewKeys("prop"))

		ctx := context.Background()

		n := rapid.IntRange(0, 50).Draw(t, "n")

		var pushed []string
		for i := 0; i < n; i++ {
			v := rapid.String().Draw(t, "value")
			require.NoError(t, mb.Push(ctx, []byte(v), "", false))
			pushed = append(pushed, v)
		}

		var claimed []string
		seenPipelineIDs := make(map[string]bool)
		for {
			pipelineID, env, ok, err := mb.Claim(ctx)
			require.NoError(t, err)
			if !ok {
				break
			}

			require.False(t, seenPipelineIDs[pipelineID],
				"pipeline id must be unique per claim")
			seenPipelineIDs[pipelineID] = true

			claimed = append(claimed, string(env.Payload))
		}

		require.Equal(t, pushed, claimed,
			"every pushed envelope must be claimed exactly once, in FIFO order")

		length, err := mb.QueueLength(ctx)
		require.NoError(t, err)
		require.Zero(t, length)
	})
}

// TestMailboxHighPriorityClaimsFirst covers spec §8's priority boundary
// behavior at the mailbox level: a high-priority push is claimed before
// any previously pushed normal-priority envelope.
func TestMailboxHighPriorityClaimsFirst(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		adapter := store.NewMemoryAdapter()
		mb := NewMailbox(adapter, codec.NewMsgpackCodec(), NewKeys("prio"))
		ctx := context.Background()

		normalCount := rapid.IntRange(1, 10).Draw(t, "normalCount")
		for i := 0; i < normalCount; i++ {
			require.NoError(t, mb.Push(ctx, []byte("normal"), "", false))
		}

		require.NoError(t, mb.Push(ctx, []byte("priority"), "", true))

		_, env, ok, err := mb.Claim(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "priority", string(env.Payload))
	})
}

// TestMailboxResultLaterWriteWins covers spec §4.4's tie-break for a
// reused correlation id: committing twice with different outputs for the
// same cid leaves the second (later) write in results[cid]. It also checks
// that a non-retaining read deletes the entry once consumed.
func TestMailboxResultLaterWriteWins(t *testing.T) {
	t.Parallel()

	adapter := store.NewMemoryAdapter()
	mb := NewMailbox(adapter, codec.NewMsgpackCodec(), NewKeys("result"))
	ctx := context.Background()

	cid := NewID()
	env := WireEnvelope{CorrelationID: cid}

	require.NoError(t, mb.Commit(ctx, "pid-1", env, []byte("first")))
	raw, found, err := mb.ReadResult(ctx, cid, true)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "first", string(raw))

	require.NoError(t, mb.Commit(ctx, "pid-2", env, []byte("second")))
	raw, found, err = mb.ReadResult(ctx, cid, false)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "second", string(raw))

	_, found, err = mb.ReadResult(ctx, cid, false)
	require.NoError(t, err)
	require.False(t, found, "read-once semantics delete the entry once consumed")
}
