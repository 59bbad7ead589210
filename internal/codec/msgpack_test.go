package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMsgpackCodecRoundTrip(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string
		Age  int
	}

	c := NewMsgpackCodec()

	in := payload{Name: "ada", Age: 30}
	data, err := c.Encode(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, c.Decode(data, &out))
	require.Equal(t, in, out)
}
