package actor

import (
	"context"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"

	"github.com/dariolabs/ractor/internal/store"
)

// TestStartWithoutComputationIsUsageError covers spec §4.4: Start without
// a computation is a usage error, surfaced synchronously.
func TestStartWithoutComputationIsUsageError(t *testing.T) {
	t.Parallel()

	a := New(Config[string, string]{
		ID:    "no-comp",
		Store: store.NewMemoryAdapter(),
	})
	defer a.Dispose()

	err := a.Start()
	require.ErrorIs(t, err, ErrNoComputation)
	require.Equal(t, StateCreated, a.State())
}

// TestDisposedActorRejectsOperations covers spec §7's usage-error
// taxonomy entry for operations on a disposed actor.
func TestDisposedActorRejectsOperations(t *testing.T) {
	t.Parallel()

	a := New(newTestConfig("disposable", store.NewMemoryAdapter(),
		func(_ context.Context, msg string) fn.Result[string] {
			return fn.Ok(msg)
		}))

	require.NoError(t, a.Start())
	a.Dispose()

	require.Equal(t, StateDisposed, a.State())

	_, err := a.PostAndReply(context.Background(), "x", false, time.Second)
	require.ErrorIs(t, err, ErrDisposed)

	err = a.Start()
	require.ErrorIs(t, err, ErrDisposed)
}

// TestStopDoesNotInterruptInFlightComputation covers spec §5: in-flight
// computations run to completion past Stop.
func TestStopDoesNotInterruptInFlightComputation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	finished := make(chan struct{})

	a := New(newTestConfig("slow-stop", store.NewMemoryAdapter(),
		func(_ context.Context, msg string) fn.Result[string] {
			close(started)
			time.Sleep(50 * time.Millisecond)
			close(finished)
			return fn.Ok(msg)
		}))
	defer a.Dispose()

	require.NoError(t, a.Start())
	require.NoError(t, a.PostTyped(context.Background(), "go", false))

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("computation never started")
	}

	a.Stop()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Stop interrupted an in-flight computation")
	}
}

// TestLinkReturnsParentForChaining covers spec §4.6: Link returns the
// parent to support chaining.
func TestLinkReturnsParentForChaining(t *testing.T) {
	t.Parallel()

	adapter := store.NewMemoryAdapter()
	child := New(newTestConfig("child", adapter,
		func(_ context.Context, msg int) fn.Result[int] {
			return fn.Ok(msg)
		}))
	parent := New(newTestConfig("parent", adapter,
		func(_ context.Context, msg int) fn.Result[int] {
			return fn.Ok(msg)
		}))

	require.Same(t, parent, parent.Link(child))
	require.Equal(t, []string{"child"}, parent.Children())

	parent.UnLink("child")
	require.Empty(t, parent.Children())
}
