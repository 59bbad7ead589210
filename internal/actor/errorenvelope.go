package actor

// ErrorEnvelope is appended to an actor's errors list on any computation
// failure, and is the message type accepted by an error-handler actor
// (spec §3, "Error envelope"). Payload carries the original input's
// already-encoded bytes, so an error-handler actor bound across different
// producer message types still has a single, uniform input shape.
type ErrorEnvelope struct {
	ActorID string
	Payload []byte
	Err     string
}
