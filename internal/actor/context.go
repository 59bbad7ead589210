package actor

import "context"

// mergeContexts returns a context that cancels when either ctx1 or ctx2
// cancels, preserving the earlier of the two deadlines. Used to let a
// local-bypass PostAndReply computation (spec §4.5 path A) respect both
// the caller's deadline and the actor's own lifecycle.
func mergeContexts(
	ctx1, ctx2 context.Context,
) (context.Context, context.CancelFunc) {

	deadline1, hasDeadline1 := ctx1.Deadline()
	deadline2, hasDeadline2 := ctx2.Deadline()

	base := ctx1
	if hasDeadline2 && (!hasDeadline1 || deadline2.Before(deadline1)) {
		base = ctx2
	}

	merged, cancel := context.WithCancel(base)

	go func() {
		select {
		case <-ctx1.Done():
			cancel()
		case <-ctx2.Done():
			cancel()
		case <-merged.Done():
		}
	}()

	return merged, cancel
}
