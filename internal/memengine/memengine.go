// Package memengine is a volatile, in-memory alternate backend for the
// internal/engine.Engine contract: no log, no recovery, no segments — a
// plain map guarded by a mutex. It exists to prove the server and its
// wire protocol are parametric over storage engines (spec.md §9), and is
// grounded in original_source/src/storage/kvmemory.rs, whose KvMemory
// wraps a single Mutex<HashMap<String, String>>.
package memengine

import (
	"sync"
	"sync/atomic"

	"github.com/iamnilotpal/ignite-kv/internal/engine"
	kerrors "github.com/iamnilotpal/ignite-kv/pkg/errors"
)

// Store is a map-backed Engine. The zero value is not usable; call New.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed atomic.Bool
}

var _ engine.Engine = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get returns the value for key, or (nil, false, nil) on a miss.
func (s *Store) Get(key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, errClosed
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set writes key=value, overwriting any previous value.
func (s *Store) Set(key string, value []byte) error {
	if s.closed.Load() {
		return errClosed
	}
	if len(value) == 0 {
		return kerrors.NewValidationError(nil, kerrors.ErrorCodeInvalidInput, "value must not be empty").
			WithField("value").WithRule("required")
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = stored
	return nil
}

// Remove deletes key, returning an IndexError if it is not present.
func (s *Store) Remove(key string) error {
	if s.closed.Load() {
		return errClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return kerrors.NewKeyNotFoundError(key)
	}
	delete(s.data, key)
	return nil
}

// Close releases the map. Further operations return errClosed.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return errClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

var errClosed = kerrors.NewStorageError(nil, kerrors.ErrorCodeIO, "operation failed: cannot access closed engine")
