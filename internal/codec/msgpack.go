package codec

import "github.com/vmihailenco/msgpack/v5"

// MsgpackCodec is the default Codec, backed by msgpack's compact
// self-describing binary format.
type MsgpackCodec struct{}

// NewMsgpackCodec returns the default codec.
func NewMsgpackCodec() MsgpackCodec { return MsgpackCodec{} }

func (MsgpackCodec) Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackCodec) Decode(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
