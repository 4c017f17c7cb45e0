// Package index provides the in-memory hash table implementation for the
// ignite key-value store. This package embodies the core Bitcask
// architectural principle: maintain all keys in memory with minimal
// metadata while storing actual values on disk for optimal memory
// utilization.
//
// The index enables O(1) key lookups through an in-memory hash table while
// keeping storage overhead minimal. This allows the system to handle
// datasets significantly larger than available RAM while maintaining
// excellent read performance characteristics.
package index

import (
	"context"
	stdErrors "errors"

	"github.com/iamnilotpal/ignite-kv/pkg/errors"

	"github.com/iamnilotpal/ignite-kv/internal/segment"
)

var ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")

// New creates and initializes a new Index instance configured according to
// the provided parameters. The returned Index is immediately ready for
// concurrent use and includes optimizations like pre-allocated map capacity.
func New(ctx context.Context, config *Config) (*Index, error) {
	if config == nil || config.DataDir == "" || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		log:     config.Logger,
		dataDir: config.DataDir,
		pointer: make(map[string]segment.Pos, 2046),
	}, nil
}

// Get returns the position of key, if present.
func (idx *Index) Get(key string) (segment.Pos, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	pos, ok := idx.pointer[key]
	return pos, ok
}

// Set records key's position, overwriting any previous one, and returns
// the position it replaced.
func (idx *Index) Set(key string, pos segment.Pos) (segment.Pos, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	prev, had := idx.pointer[key]
	idx.pointer[key] = pos
	return prev, had
}

// Delete removes key from the index and returns the position it had, if
// any.
func (idx *Index) Delete(key string) (segment.Pos, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	prev, had := idx.pointer[key]
	if had {
		delete(idx.pointer, key)
	}
	return prev, had
}

// Len returns the number of live keys currently tracked.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.pointer)
}

// Range calls fn for every (key, pos) pair currently in the index, in
// unspecified order, stopping early if fn returns false. Range holds the
// read lock for its entire traversal, so fn must not call back into the
// index.
func (idx *Index) Range(fn func(key string, pos segment.Pos) bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for k, p := range idx.pointer {
		if !fn(k, p) {
			return
		}
	}
}

// ApplySet implements segment.IndexSink, letting Segment.Scan rebuild the
// index directly from a log replay during recovery.
func (idx *Index) ApplySet(key string, pos segment.Pos) {
	idx.Set(key, pos)
}

// ApplyRemove implements segment.IndexSink.
func (idx *Index) ApplyRemove(key string) {
	idx.Delete(key)
}

// Close gracefully shuts down the Index, cleaning up resources and
// ensuring that the index cannot be used after closure.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("closing index")

	idx.mu.Lock()
	defer idx.mu.Unlock()

	clear(idx.pointer)
	idx.pointer = nil

	idx.log.Infow("index closed")
	return nil
}
