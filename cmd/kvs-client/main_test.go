package main

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamnilotpal/ignite-kv/internal/server"
	"github.com/iamnilotpal/ignite-kv/internal/store"
	"github.com/iamnilotpal/ignite-kv/internal/workerpool"
	"github.com/iamnilotpal/ignite-kv/pkg/logger"
	"github.com/iamnilotpal/ignite-kv/pkg/options"
)

func startTestServer(t *testing.T) string {
	t.Helper()

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

	return srv.BoundAddr()
}

// captureStdout redirects os.Stdout for the duration of fn and returns
// whatever it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	return string(buf[:n])
}

// TestClientSetGetRemove walks spec.md §8 scenario 5 end to end against a
// live server: set, get (hit), rm, get (miss), rm (already missing).
func TestClientSetGetRemove(t *testing.T) {
	addr := startTestServer(t)

	code := run([]string{"set", "foo", "bar", "--addr=" + addr})
	assert.Equal(t, 0, code)

	var out string
	code = 0
	out = captureStdout(t, func() { code = run([]string{"get", "foo", "--addr=" + addr}) })
	assert.Equal(t, 0, code)
	assert.Equal(t, "bar\n", out)

	code = run([]string{"rm", "foo", "--addr=" + addr})
	assert.Equal(t, 0, code)

	out = captureStdout(t, func() { code = run([]string{"get", "foo", "--addr=" + addr}) })
	assert.Equal(t, 0, code)
	assert.Equal(t, "Key not found\n", out)

	code = run([]string{"rm", "foo", "--addr=" + addr})
	assert.Equal(t, 1, code)
}

func TestClientUnknownCommand(t *testing.T) {
	assert.Equal(t, 1, run([]string{"bogus"}))
}

func TestClientSetWrongArgCount(t *testing.T) {
	assert.Equal(t, 1, run([]string{"set", "onlykey"}))
}
