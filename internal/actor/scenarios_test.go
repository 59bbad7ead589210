package actor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dariolabs/ractor/internal/codec"
	"github.com/dariolabs/ractor/internal/store"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

func newTestConfig[M any, R any](id string, adapter store.Adapter,
	comp Computation[M, R]) Config[M, R] {

	return Config[M, R]{
		ID:          id,
		Store:       adapter,
		Codec:       codec.NewMsgpackCodec(),
		Semaphore:   NewSemaphore(64),
		Computation: comp,
	}
}

// TestEchoRoundTrip covers spec §8 scenario 1: a running echo actor's
// PostAndReply returns the original value by equality.
func TestEchoRoundTrip(t *testing.T) {
	t.Parallel()

	adapter := store.NewMemoryAdapter()
	echo := New(newTestConfig("echo", adapter,
		func(_ context.Context, msg int) fn.Result[int] {
			return fn.Ok(msg)
		}))

	require.NoError(t, echo.Start())
	defer echo.Dispose()

	out, err := echo.PostAndReply(context.Background(), 42, false, time.Second)
	require.NoError(t, err)
	require.Equal(t, 42, out)

	n, err := echo.QueueLength(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

// TestPipelineFanOut covers spec §8 scenario 2: double.Link(inc), posting
// 3 to double eventually produces 7 on inc's capturing child.
func TestPipelineFanOut(t *testing.T) {
	t.Parallel()

	adapter := store.NewMemoryAdapter()

	var mu sync.Mutex
	var captured []int

	capture := New(newTestConfig("capture", adapter,
		func(_ context.Context, msg int) fn.Result[int] {
			mu.Lock()
			captured = append(captured, msg)
			mu.Unlock()
			return fn.Ok(msg)
		}))

	inc := New(newTestConfig("inc", adapter,
		func(_ context.Context, msg int) fn.Result[int] {
			return fn.Ok(msg + 1)
		}))
	inc.Link(capture)

	double := New(newTestConfig("double", adapter,
		func(_ context.Context, msg int) fn.Result[int] {
			return fn.Ok(msg * 2)
		}))
	double.Link(inc)

	require.NoError(t, capture.Start())
	require.NoError(t, inc.Start())
	require.NoError(t, double.Start())
	defer capture.Dispose()
	defer inc.Dispose()
	defer double.Dispose()

	require.NoError(t, double.PostTyped(context.Background(), 3, false))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(captured) == 1 && captured[0] == 7
	}, time.Second, 5*time.Millisecond)
}

// TestErrorRouting covers spec §8 scenario 3: a computation that always
// fails records an error envelope and forwards it to the bound handler.
func TestErrorRouting(t *testing.T) {
	t.Parallel()

	adapter := store.NewMemoryAdapter()

	var mu sync.Mutex
	var received []ErrorEnvelope

	sink := New(newTestConfig("sink", adapter,
		func(_ context.Context, msg ErrorEnvelope) fn.Result[any] {
			mu.Lock()
			received = append(received, msg)
			mu.Unlock()
			return fn.Ok[any](nil)
		}))
	require.NoError(t, sink.Start())
	defer sink.Dispose()

	boom := New(newTestConfig("boom", adapter,
		func(_ context.Context, msg string) fn.Result[string] {
			return fn.Err[string](fmt.Errorf("boom always fails"))
		}))
	boom.SetErrorHandler(sink)
	require.NoError(t, boom.Start())
	defer boom.Dispose()

	require.NoError(t, boom.PostTyped(context.Background(), "hi", false))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 5*time.Millisecond)

	require.Equal(t, "boom", received[0].ActorID)

	errorsKey := NewKeys("boom").Errors
	require.Eventually(t, func() bool {
		return len(adapter.PeekList(errorsKey)) == 1
	}, time.Second, 5*time.Millisecond)
}

// TestTimeout covers spec §8 scenario 4: PostAndReply against an actor
// with nothing claiming its inbox raises a timeout.
func TestTimeout(t *testing.T) {
	t.Parallel()

	adapter := store.NewMemoryAdapter()
	slow := New(newTestConfig("slow", adapter,
		func(_ context.Context, msg string) fn.Result[string] {
			time.Sleep(time.Second)
			return fn.Ok(msg)
		}))
	// Deliberately not started: the remote path's result can never
	// arrive because nothing is claiming the inbox.
	defer slow.Dispose()

	_, err := slow.PostAndReply(context.Background(), "x", false,
		10*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
}

// TestTimeoutZeroNoRunningActor covers spec §8's boundary behavior:
// timeout 0 with no running actor raises timeout immediately.
func TestTimeoutZeroNoRunningActor(t *testing.T) {
	t.Parallel()

	adapter := store.NewMemoryAdapter()
	q := New(newTestConfig("q-zero", adapter,
		func(_ context.Context, msg string) fn.Result[string] {
			return fn.Ok(msg)
		}))
	defer q.Dispose()

	_, err := q.PostAndReply(context.Background(), "x", false, 0)
	require.ErrorIs(t, err, ErrTimeout)
}

// TestPriorityJump covers spec §8 scenario 5: a high-priority post made
// after a normal one, on a not-yet-started actor, is claimed first once
// the actor starts. The actor gets a single-permit semaphore so claimed
// messages execute one at a time, in claim order.
func TestPriorityJump(t *testing.T) {
	t.Parallel()

	adapter := store.NewMemoryAdapter()

	var mu sync.Mutex
	var order []string

	cfg := newTestConfig("q", adapter,
		func(_ context.Context, msg string) fn.Result[string] {
			mu.Lock()
			order = append(order, msg)
			mu.Unlock()
			return fn.Ok(msg)
		})
	cfg.Semaphore = NewSemaphore(1)
	q := New(cfg)
	defer q.Dispose()

	require.NoError(t, q.PostTyped(context.Background(), "A", false))
	require.NoError(t, q.PostTyped(context.Background(), "B", true))

	require.NoError(t, q.Start())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, time.Second, 5*time.Millisecond)

	require.Equal(t, []string{"B", "A"}, order)
}

// TestCrashRecovery covers spec §8 scenario 6: an envelope inserted
// directly into pipeline (simulating a crash mid-process) is executed
// when the actor starts, and the pipeline entry is deleted afterward.
func TestCrashRecovery(t *testing.T) {
	t.Parallel()

	adapter := store.NewMemoryAdapter()
	keys := NewKeys("recovered")
	c := codec.NewMsgpackCodec()

	payload, err := c.Encode("leftover")
	require.NoError(t, err)

	env := WireEnvelope{Payload: payload}
	envBytes, err := c.Encode(env)
	require.NoError(t, err)

	require.NoError(t, adapter.HashSet(context.Background(), keys.Pipeline,
		"leftover-pipeline-id", envBytes, store.OverwriteAlways))

	processed := make(chan string, 1)
	recovered := New(newTestConfig("recovered", adapter,
		func(_ context.Context, msg string) fn.Result[string] {
			processed <- msg
			return fn.Ok(msg)
		}))
	defer recovered.Dispose()

	require.NoError(t, recovered.Start())

	select {
	case msg := <-processed:
		require.Equal(t, "leftover", msg)
	case <-time.After(time.Second):
		t.Fatal("recovery did not re-execute the leftover pipeline entry")
	}

	require.Eventually(t, func() bool {
		scan, err := adapter.HashScan(context.Background(), keys.Pipeline)
		return err == nil && len(scan) == 0
	}, time.Second, 5*time.Millisecond)
}
