package ignite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamnilotpal/ignite-kv/pkg/options"
)

func TestInstanceSetGetDeleteWithDefaultEngine(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	inst, err := NewInstance(ctx, "ignite-test", options.WithDataDir(dir))
	require.NoError(t, err)
	t.Cleanup(func() { inst.Close(ctx) })

	require.NoError(t, inst.Set(ctx, "k", []byte("v")))

	value, found, err := inst.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), value)

	require.NoError(t, inst.Delete(ctx, "k"))

	_, found, err = inst.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInstanceWithMemoryEngine(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	inst, err := NewInstance(ctx, "ignite-test", options.WithDataDir(dir), func(o *options.Options) {
		o.Engine = options.EngineMemory
	})
	require.NoError(t, err)
	t.Cleanup(func() { inst.Close(ctx) })

	require.NoError(t, inst.Set(ctx, "k", []byte("v")))

	value, found, err := inst.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), value)
}

// TestInstanceRejectsSwitchedEngine walks spec.md §8 scenario 6 at the
// embeddable-library level: a data directory opened with one engine kind
// refuses to reopen under another, regardless of which backend is asked
// for second.
func TestInstanceRejectsSwitchedEngine(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	inst, err := NewInstance(ctx, "ignite-test", options.WithDataDir(dir), func(o *options.Options) {
		o.Engine = options.EngineKV
	})
	require.NoError(t, err)
	require.NoError(t, inst.Close(ctx))

	_, err = NewInstance(ctx, "ignite-test", options.WithDataDir(dir), func(o *options.Options) {
		o.Engine = options.EngineBolt
	})
	assert.Error(t, err)

	_, err = NewInstance(ctx, "ignite-test", options.WithDataDir(dir), func(o *options.Options) {
		o.Engine = options.EngineMemory
	})
	assert.Error(t, err)
}

func TestInstanceWithBoltEngine(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	inst, err := NewInstance(ctx, "ignite-test", options.WithDataDir(dir), func(o *options.Options) {
		o.Engine = options.EngineBolt
	})
	require.NoError(t, err)
	t.Cleanup(func() { inst.Close(ctx) })

	require.NoError(t, inst.Set(ctx, "k", []byte("v")))

	value, found, err := inst.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), value)
}
