// Package codec serializes the values the actor core places in the store.
// Serialization format is explicitly an external collaborator of the core
// (spec Non-goals); this package exists so the core depends only on the
// Codec interface, never on a specific wire format.
package codec

// Codec encodes and decodes Go values to and from the byte strings the
// Store Adapter's lists and hashes hold.
type Codec interface {
	// Encode serializes v into its wire representation.
	Encode(v any) ([]byte, error)

	// Decode deserializes data into v, which must be a pointer.
	Decode(data []byte, v any) error
}
