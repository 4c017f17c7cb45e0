package protocol

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	codec := ArrayCodec{}

	cases := []Request{
		SetRequest{Key: []byte("k"), Value: []byte("v")},
		GetRequest{Key: []byte("k")},
		RemoveRequest{Key: []byte("k")},
		SetRequest{Key: []byte("big"), Value: bytes.Repeat([]byte("x"), 8192)},
	}

	for _, req := range cases {
		encoded, err := codec.EncodeRequest(req)
		require.NoError(t, err)

		decoded, err := codec.DecodeRequest(bytes.NewReader(encoded))
		require.NoError(t, err)
		assert.Equal(t, req, decoded)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	codec := ArrayCodec{}

	cases := []Response{
		OKResponse{},
		ValueResponse{Value: []byte("v")},
		NotFoundResponse{},
		ErrorResponse{Message: "boom"},
	}

	for _, resp := range cases {
		encoded, err := codec.EncodeResponse(resp)
		require.NoError(t, err)

		decoded, err := codec.DecodeResponse(bytes.NewReader(encoded))
		require.NoError(t, err)
		assert.Equal(t, resp, decoded)
	}
}

func TestDecodeRequestRejectsMalformedArity(t *testing.T) {
	codec := ArrayCodec{}

	buf := encodeArray([][]byte{[]byte("SET"), []byte("onlykey")})
	_, err := codec.DecodeRequest(bytes.NewReader(buf))
	assert.Error(t, err)
}

func TestDecodeRequestRejectsUnknownCommand(t *testing.T) {
	codec := ArrayCodec{}

	buf := encodeArray([][]byte{[]byte("NOPE"), []byte("k")})
	_, err := codec.DecodeRequest(bytes.NewReader(buf))
	assert.Error(t, err)
}

func TestDecodeDoesNotTruncateLargeValue(t *testing.T) {
	codec := ArrayCodec{}

	large := bytes.Repeat([]byte("y"), 64*1024)
	encoded, err := codec.EncodeRequest(SetRequest{Key: []byte("k"), Value: large})
	require.NoError(t, err)

	// Decode using a small bufio.Reader buffer to prove frame reads are not
	// bounded by the reader's internal buffer size.
	decoded, err := codec.DecodeRequest(bufio.NewReaderSize(bytes.NewReader(encoded), 16))
	require.NoError(t, err)

	set, ok := decoded.(SetRequest)
	require.True(t, ok)
	assert.Len(t, set.Value, len(large))
	assert.True(t, bytes.Equal(set.Value, large))
}

func TestWireFormatMatchesGrammar(t *testing.T) {
	buf := encodeArray([][]byte{[]byte("GET"), []byte("k")})
	assert.True(t, strings.HasPrefix(string(buf), "*2\r\n$3\r\nGET\r\n$1\r\nk\r\n"))
}
