package actor

// WireEnvelope is the on-the-wire shape of a message envelope (spec §3):
// an opaque, already-encoded payload plus an optional correlation id. An
// empty CorrelationID means fire-and-forget; a non-empty one means the
// producer awaits a reply keyed by it.
//
// Payload is encoded independently of WireEnvelope itself (the actor's own
// Codec encodes the typed message into Payload before the envelope as a
// whole is encoded for storage), so the mailbox never needs to know the
// concrete message type M of the actor it serves.
type WireEnvelope struct {
	Payload       []byte
	CorrelationID string
}
