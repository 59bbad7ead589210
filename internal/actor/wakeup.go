package actor

import "context"

// WakeupBus holds the two per-actor edge-triggered signals fed from the
// channel subscription (spec §4.3): message-arrived and result-arrived.
// Both are hints, not delivery — waiters must always re-check the store
// after waking.
type WakeupBus struct {
	messageArrived chan struct{}
	resultArrived  chan struct{}
}

// NewWakeupBus creates an armed-empty wakeup bus.
func NewWakeupBus() *WakeupBus {
	return &WakeupBus{
		messageArrived: make(chan struct{}, 1),
		resultArrived:  make(chan struct{}, 1),
	}
}

// OnNotification demultiplexes a channel payload per spec §4.3/§6: an
// empty string sets message-arrived, any non-empty payload (the
// correlation id, though its contents are never trusted) sets
// result-arrived.
func (w *WakeupBus) OnNotification(payload string) {
	if payload == "" {
		setSignal(w.messageArrived)
		return
	}
	setSignal(w.resultArrived)
}

// WaitMessage blocks until message-arrived fires or ctx is cancelled.
func (w *WakeupBus) WaitMessage(ctx context.Context) error {
	return wait(ctx, w.messageArrived)
}

// WaitResult blocks until result-arrived fires or ctx is cancelled.
func (w *WakeupBus) WaitResult(ctx context.Context) error {
	return wait(ctx, w.resultArrived)
}

func setSignal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func wait(ctx context.Context, ch chan struct{}) error {
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
