package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamnilotpal/ignite-kv/internal/protocol"
	"github.com/iamnilotpal/ignite-kv/internal/store"
	"github.com/iamnilotpal/ignite-kv/internal/workerpool"
	"github.com/iamnilotpal/ignite-kv/pkg/logger"
	"github.com/iamnilotpal/ignite-kv/pkg/options"
)

func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	dir := t.TempDir()
	opts := options.NewDefaultOptions()
	opts.DataDir = dir

	st, err := store.Open(context.Background(), dir, &opts, logger.NewTest())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	pool := workerpool.NewQueued(2, 4)
	t.Cleanup(pool.Close)

	srv := New("127.0.0.1:0", st, pool, logger.NewTest())
	go func() { _ = srv.Run(context.Background()) }()
	t.Cleanup(srv.Shutdown)

	return srv, srv.BoundAddr()
}

func doRequest(t *testing.T, addr string, req protocol.Request) protocol.Response {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	codec := protocol.ArrayCodec{}
	encoded, err := codec.EncodeRequest(req)
	require.NoError(t, err)

	_, err = conn.Write(encoded)
	require.NoError(t, err)

	resp, err := codec.DecodeResponse(bufio.NewReader(conn))
	require.NoError(t, err)
	return resp
}

func TestServerSetGetRemove(t *testing.T) {
	_, addr := startTestServer(t)

	resp := doRequest(t, addr, protocol.SetRequest{Key: []byte("k"), Value: []byte("v")})
	assert.Equal(t, protocol.OKResponse{}, resp)

	resp = doRequest(t, addr, protocol.GetRequest{Key: []byte("k")})
	assert.Equal(t, protocol.ValueResponse{Value: []byte("v")}, resp)

	resp = doRequest(t, addr, protocol.RemoveRequest{Key: []byte("k")})
	assert.Equal(t, protocol.OKResponse{}, resp)

	resp = doRequest(t, addr, protocol.GetRequest{Key: []byte("k")})
	assert.Equal(t, protocol.NotFoundResponse{}, resp)
}

func TestServerRemoveMissingKeyReturnsNotFound(t *testing.T) {
	_, addr := startTestServer(t)

	resp := doRequest(t, addr, protocol.RemoveRequest{Key: []byte("nope")})
	assert.Equal(t, protocol.NotFoundResponse{}, resp)
}

func TestServerShutdownStopsAcceptLoop(t *testing.T) {
	srv, addr := startTestServer(t)

	resp := doRequest(t, addr, protocol.SetRequest{Key: []byte("a"), Value: []byte("1")})
	assert.Equal(t, protocol.OKResponse{}, resp)

	srv.Shutdown()

	_, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
	assert.Error(t, err)
}
