package actor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dariolabs/ractor/internal/codec"
	"github.com/dariolabs/ractor/internal/store"
	"github.com/lightningnetwork/lnd/fn/v2"
	"golang.org/x/sync/semaphore"
)

// State is an actor's lifecycle state (spec §4.4): Created -> Running ->
// Stopped -> Disposed.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopped
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Ref is the type-erased reference used for cross-actor linking and error
// routing: a parent only needs to Post into a child, and an actor only
// needs to Post into its bound error handler, neither of which requires
// knowing the target's concrete message type at compile time. This mirrors
// spec §9's note that cross-process links are addressed by identity plus a
// Post handle, not a strongly-typed reference.
type Ref interface {
	ID() string
	Post(ctx context.Context, payload any, highPriority bool) error
}

// Computation is a user-supplied transform from an actor's input message
// to its output, expressed as an fn.Result so failure is represented the
// same way the teacher's ActorBehavior represents it.
type Computation[M any, R any] func(ctx context.Context, msg M) fn.Result[R]

// Config configures a new Actor.
type Config[M any, R any] struct {
	// ID is the actor's stable identity string.
	ID string

	// Store is the shared Store Adapter; required.
	Store store.Adapter

	// Codec encodes/decodes M and R payloads for the store. Defaults to
	// codec.NewMsgpackCodec() if nil.
	Codec codec.Codec

	// Semaphore bounds concurrently executing computations across the
	// process. Defaults to DefaultSemaphore() if nil.
	Semaphore *semaphore.Weighted

	// Computation is the actor's behavior. Required for Start (spec
	// §4.4's usage-error rule).
	Computation Computation[M, R]

	// RetainResults, if true, leaves results[cid] in place after a
	// PostAndReply reader consumes it, rather than deleting it
	// (resolves spec §9 Open Question 4).
	RetainResults bool
}

// Actor is the facade: lifecycle, child-link registry, and error-handler
// binding over a Mailbox and Dispatcher (spec §4.6).
type Actor[M any, R any] struct {
	id            string
	adapter       store.Adapter
	codec         codec.Codec
	sem           *semaphore.Weighted
	computation   Computation[M, R]
	retainResults bool

	keys    Keys
	mailbox *Mailbox
	wakeup  *WakeupBus

	mu           sync.RWMutex
	children     map[string]Ref
	errorHandler Ref

	state atomic.Int32

	// rootCtx/rootCancel governs the actor's full lifetime, cancelled
	// only by Dispose. Computations run against rootCtx so Stop does
	// not forcibly interrupt in-flight work (spec §5).
	rootCtx    context.Context
	rootCancel context.CancelFunc

	// loopCtx/loopCancel governs only the dispatcher's claim loop,
	// cancelled by Stop.
	loopCtx    context.Context
	loopCancel context.CancelFunc

	dispatcherDone chan struct{}

	startOnce   sync.Once
	stopOnce    sync.Once
	disposeOnce sync.Once
}

// New constructs an actor in the Created state. It subscribes to the
// notification channel immediately, per spec §4.6 ("Subscribe to the
// notification channel at construction").
func New[M any, R any](cfg Config[M, R]) *Actor[M, R] {
	c := cfg.Codec
	if c == nil {
		c = codec.NewMsgpackCodec()
	}

	sem := cfg.Semaphore
	if sem == nil {
		sem = DefaultSemaphore()
	}

	keys := NewKeys(cfg.ID)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	loopCtx, loopCancel := context.WithCancel(rootCtx)

	a := &Actor[M, R]{
		id:             cfg.ID,
		adapter:        cfg.Store,
		codec:          c,
		sem:            sem,
		computation:    cfg.Computation,
		retainResults:  cfg.RetainResults,
		keys:           keys,
		mailbox:        NewMailbox(cfg.Store, c, keys),
		wakeup:         NewWakeupBus(),
		children:       make(map[string]Ref),
		rootCtx:        rootCtx,
		rootCancel:     rootCancel,
		loopCtx:        loopCtx,
		loopCancel:     loopCancel,
		dispatcherDone: make(chan struct{}),
	}
	a.state.Store(int32(StateCreated))

	if err := cfg.Store.Subscribe(rootCtx, keys.Channel, a.wakeup.OnNotification); err != nil {
		log.ErrorS(rootCtx, "failed to subscribe actor channel", err,
			"actor_id", cfg.ID)
	}

	return a
}

// ID returns the actor's identity string.
func (a *Actor[M, R]) ID() string { return a.id }

// State returns the actor's current lifecycle state.
func (a *Actor[M, R]) State() State { return State(a.state.Load()) }

// QueueLength returns the current length of the inbox list.
func (a *Actor[M, R]) QueueLength(ctx context.Context) (int, error) {
	return a.mailbox.QueueLength(ctx)
}

// Children returns the identities of currently linked children.
func (a *Actor[M, R]) Children() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]string, 0, len(a.children))
	for id := range a.children {
		ids = append(ids, id)
	}
	return ids
}

// Link registers child so the dispatcher fans results out to it on
// commit. Link returns the parent to support chaining, per spec §4.6.
func (a *Actor[M, R]) Link(child Ref) *Actor[M, R] {
	a.mu.Lock()
	a.children[child.ID()] = child
	a.mu.Unlock()

	return a
}

// UnLink removes a previously linked child by identity.
func (a *Actor[M, R]) UnLink(childID string) {
	a.mu.Lock()
	delete(a.children, childID)
	a.mu.Unlock()
}

// SetErrorHandler binds an actor (of input type ErrorEnvelope) to receive
// this actor's computation failures.
func (a *Actor[M, R]) SetErrorHandler(handler Ref) {
	a.mu.Lock()
	a.errorHandler = handler
	a.mu.Unlock()
}

// ErrorHandler returns the currently bound error-handler reference, or nil.
func (a *Actor[M, R]) ErrorHandler() Ref {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.errorHandler
}

// Start requires a computation and transitions Created -> Running,
// scanning the pipeline for crash recovery before entering the dispatcher
// loop (spec §4.2 Recovery, §4.4). Start takes effect only once per Actor:
// any later call, including one after Stop or after the dispatcher loop has
// exited on a store failure, is a no-op that neither changes the state nor
// restarts the loop.
func (a *Actor[M, R]) Start() error {
	if a.computation == nil {
		return ErrNoComputation
	}
	if a.State() == StateDisposed {
		return ErrDisposed
	}

	a.startOnce.Do(func() {
		a.state.Store(int32(StateRunning))

		go func() {
			defer close(a.dispatcherDone)

			a.recover(a.rootCtx)
			a.runDispatchLoop()
		}()
	})

	return nil
}

// Stop cancels the dispatcher's claim loop but does not drain the inbox,
// and does not interrupt in-flight computations (spec §4.6).
func (a *Actor[M, R]) Stop() {
	a.stopOnce.Do(func() {
		a.loopCancel()
		a.state.CompareAndSwap(int32(StateRunning), int32(StateStopped))
	})
}

// Dispose stops the actor, then cancels its root context (ending any
// still-running computations' ability to observe further work) and
// transitions to Disposed. It does not touch the process-wide semaphore
// (spec §9, Open Question 5).
func (a *Actor[M, R]) Dispose() {
	a.Stop()

	a.disposeOnce.Do(func() {
		a.rootCancel()
		a.state.Store(int32(StateDisposed))
	})
}

// Post is the fire-and-forget, type-erased entry point used by Ref.Post
// (child fan-out, error-handler delivery). payload must be assignable to
// M.
func (a *Actor[M, R]) Post(ctx context.Context, payload any,
	highPriority bool) error {

	msg, ok := payload.(M)
	if !ok {
		return fmt.Errorf("ractor: %s: payload type mismatch: got %T",
			a.id, payload)
	}

	return a.PostTyped(ctx, msg, highPriority)
}

// PostTyped is the statically-typed form of Post, for callers that hold a
// concrete *Actor[M, R] rather than a type-erased Ref.
func (a *Actor[M, R]) PostTyped(ctx context.Context, msg M,
	highPriority bool) error {

	if a.State() == StateDisposed {
		return ErrDisposed
	}

	payload, err := a.codec.Encode(msg)
	if err != nil {
		return err
	}

	return a.mailbox.Push(ctx, payload, "", highPriority)
}
