package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := []Record{
		Set{Key: "k", Value: []byte("v")},
		Set{Key: "", Value: []byte("v")},
		Remove{Key: "k"},
		Set{Key: "utf8-key-日本語", Value: []byte("utf8-value-日本語")},
	}

	for _, rec := range cases {
		encoded := rec.Encode()
		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, rec, decoded)
	}
}

func TestDecodeTombstone(t *testing.T) {
	rec := Remove{Key: "gone"}
	decoded, err := Decode(rec.Encode())
	require.NoError(t, err)

	remove, ok := decoded.(Remove)
	require.True(t, ok)
	assert.Equal(t, "gone", remove.Key)
}

func TestDecodeShortInput(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecodeLengthMismatch(t *testing.T) {
	buf := Set{Key: "k", Value: []byte("v")}.Encode()
	_, err := Decode(buf[:len(buf)-1])
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecodeInvalidUTF8Key(t *testing.T) {
	buf := Set{Key: "k", Value: []byte("v")}.Encode()
	// Corrupt the key byte (offset 16) with an invalid UTF-8 lead byte.
	buf[16] = 0xff
	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLen(t *testing.T) {
	assert.Equal(t, int64(16+3+5), Len(3, 5))
}
