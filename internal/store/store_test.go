package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamnilotpal/ignite-kv/pkg/logger"
	"github.com/iamnilotpal/ignite-kv/pkg/options"
)

func newTestOptions(dir string) *options.Options {
	opts := options.NewDefaultOptions()
	opts.DataDir = dir
	return &opts
}

func TestSetGetRemove(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(context.Background(), dir, newTestOptions(dir), logger.NewTest())
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set("a", []byte("1")))

	value, found, err := s.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("1"), value)

	require.NoError(t, s.Remove("a"))
	_, found, err = s.Get("a")
	require.NoError(t, err)
	assert.False(t, found)

	err = s.Remove("a")
	assert.Error(t, err)
}

func TestSetRejectsEmptyValue(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(context.Background(), dir, newTestOptions(dir), logger.NewTest())
	require.NoError(t, err)
	defer s.Close()

	err = s.Set("a", nil)
	assert.Error(t, err)
}

func TestRecoveryPreservesLastWriteWins(t *testing.T) {
	dir := t.TempDir()
	opts := newTestOptions(dir)

	s, err := Open(context.Background(), dir, opts, logger.NewTest())
	require.NoError(t, err)

	require.NoError(t, s.Set("a", []byte("1")))
	require.NoError(t, s.Set("b", []byte("2")))
	require.NoError(t, s.Set("a", []byte("3")))
	require.NoError(t, s.Remove("b"))
	require.NoError(t, s.Close())

	reopened, err := Open(context.Background(), dir, opts, logger.NewTest())
	require.NoError(t, err)
	defer reopened.Close()

	value, found, err := reopened.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("3"), value)

	_, found, err = reopened.Get("b")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRolloverOnSegmentSizeLimit(t *testing.T) {
	dir := t.TempDir()
	opts := newTestOptions(dir)
	opts.SegmentOptions.MaxBytes = options.MinSegmentBytes
	opts.SegmentOptions.CompactionThresholdBytes = options.MaxSegmentBytesCeiling // avoid triggering compaction

	s, err := Open(context.Background(), dir, opts, logger.NewTest())
	require.NoError(t, err)
	defer s.Close()

	big := make([]byte, 256*1024)
	for i := 0; i < 8; i++ {
		require.NoError(t, s.Set("k", big))
	}

	s.segMu.RLock()
	numSegments := len(s.segments)
	s.segMu.RUnlock()
	assert.Greater(t, numSegments, 1)
}

func TestCompactionReclaimsStaleBytes(t *testing.T) {
	dir := t.TempDir()
	opts := newTestOptions(dir)
	opts.SegmentOptions.CompactionThresholdBytes = 1024

	s, err := Open(context.Background(), dir, opts, logger.NewTest())
	require.NoError(t, err)
	defer s.Close()

	value := make([]byte, 200)
	for i := 0; i < 20; i++ {
		require.NoError(t, s.Set("k", value))
	}

	assert.Equal(t, int64(0), s.StaleBytes())

	got, found, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, value, got)
}

func TestCompactionIdempotentWhenRunTwice(t *testing.T) {
	dir := t.TempDir()
	opts := newTestOptions(dir)
	opts.SegmentOptions.CompactionThresholdBytes = 1

	s, err := Open(context.Background(), dir, opts, logger.NewTest())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("a", []byte("1")))
	require.NoError(t, s.compactLocked())

	liveBefore := s.LiveBytes()
	keysBefore := s.idx.Len()

	require.NoError(t, s.compactLocked())

	assert.Equal(t, liveBefore, s.LiveBytes())
	assert.Equal(t, keysBefore, s.idx.Len())
	assert.Equal(t, int64(0), s.StaleBytes())

	value, found, err := s.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("1"), value)
}

// TestConcurrentDisjointSetsAllReadable issues N concurrent SETs to
// distinct keys and checks every one is readable once all writers return,
// per spec.md §8's concurrency property for disjoint-key writers.
func TestConcurrentDisjointSetsAllReadable(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(context.Background(), dir, newTestOptions(dir), logger.NewTest())
	require.NoError(t, err)
	defer s.Close()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			assert.NoError(t, s.Set(key, []byte(fmt.Sprintf("value-%d", i))))
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key-%d", i)
		value, found, err := s.Get(key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte(fmt.Sprintf("value-%d", i)), value)
	}
}

// TestConcurrentSameKeySetsConverge writes the same key concurrently from
// many goroutines and checks the final value is one of the written values
// and stays consistent across repeated reads.
func TestConcurrentSameKeySetsConverge(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(context.Background(), dir, newTestOptions(dir), logger.NewTest())
	require.NoError(t, err)
	defer s.Close()

	const n = 50
	written := make(map[string]bool, n)
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			v := fmt.Sprintf("value-%d", i)
			require.NoError(t, s.Set("shared", []byte(v)))
			mu.Lock()
			written[v] = true
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	first, found, err := s.Get("shared")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, written[string(first)])

	for i := 0; i < 5; i++ {
		again, found, err := s.Get("shared")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, first, again)
	}
}

func TestWrongEngineFailsOpen(t *testing.T) {
	dir := t.TempDir()
	opts := newTestOptions(dir)
	opts.Engine = options.EngineKV

	s, err := Open(context.Background(), dir, opts, logger.NewTest())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	opts.Engine = options.EngineBolt
	_, err = Open(context.Background(), dir, opts, logger.NewTest())
	assert.Error(t, err)
}
