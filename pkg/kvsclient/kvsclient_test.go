package kvsclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamnilotpal/ignite-kv/internal/protocol"
	"github.com/iamnilotpal/ignite-kv/internal/server"
	"github.com/iamnilotpal/ignite-kv/internal/store"
	"github.com/iamnilotpal/ignite-kv/internal/workerpool"
	"github.com/iamnilotpal/ignite-kv/pkg/logger"
	"github.com/iamnilotpal/ignite-kv/pkg/options"
)

func TestConnectRejectsEmptyAddr(t *testing.T) {
	_, err := Connect("")
	assert.Error(t, err)
}

func TestClientRoundTripsThroughServer(t *testing.T) {
	// Direct integration exercise of the client over a real listening
	// server, rather than against server internals.
	dir := t.TempDir()
	opts := options.NewDefaultOptions()
	opts.DataDir = dir

	st, err := store.Open(context.Background(), dir, &opts, logger.NewTest())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	pool := workerpool.NewQueued(2, 4)
	t.Cleanup(pool.Close)

	srv := server.New("127.0.0.1:0", st, pool, logger.NewTest())
	go func() { _ = srv.Run(context.Background()) }()
	t.Cleanup(srv.Shutdown)

	client, err := Connect(srv.BoundAddr())
	require.NoError(t, err)

	resp, err := client.Set(context.Background(), []byte("k"), []byte("v"))
	require.NoError(t, err)
	assert.Equal(t, protocol.OKResponse{}, resp)

	resp, err = client.Get(context.Background(), []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, protocol.ValueResponse{Value: []byte("v")}, resp)

	resp, err = client.Remove(context.Background(), []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, protocol.OKResponse{}, resp)
}
