package actor

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultSemaphoreCapacity is the process-wide bound on concurrently
// executing computations across all actors, per spec §5.
const DefaultSemaphoreCapacity = 256

var (
	defaultSemOnce sync.Once
	defaultSem     *semaphore.Weighted
	defaultSemCap  int64 = DefaultSemaphoreCapacity
)

// SetDefaultSemaphoreCapacity overrides the capacity DefaultSemaphore uses
// when it is first constructed. It has no effect once DefaultSemaphore has
// already been called, since that construction is a one-time, process-wide
// singleton; callers (e.g. cmd/ractord reading its -semaphore-capacity
// flag) must set this before the first actor.New call whose Config leaves
// Semaphore nil, since New itself calls DefaultSemaphore.
func SetDefaultSemaphoreCapacity(capacity int64) {
	defaultSemCap = capacity
}

// DefaultSemaphore returns the process-wide semaphore, lazily constructed
// once at the capacity last set via SetDefaultSemaphoreCapacity (or
// DefaultSemaphoreCapacity if never set). It is a shared, non-owned
// resource: no actor's Dispose releases or replaces it (spec §9, Open
// Question 5).
func DefaultSemaphore() *semaphore.Weighted {
	defaultSemOnce.Do(func() {
		defaultSem = semaphore.NewWeighted(defaultSemCap)
	})
	return defaultSem
}

// NewSemaphore constructs an independent semaphore of the given capacity,
// for callers that want a bound other than the process-wide default (e.g.
// an isolated test or a sub-pool of actors).
func NewSemaphore(capacity int64) *semaphore.Weighted {
	return semaphore.NewWeighted(capacity)
}
