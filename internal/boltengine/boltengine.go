// Package boltengine is an embedded-tree-backed alternate engine for the
// internal/engine.Engine contract, wrapping go.etcd.io/bbolt's single-file
// B+tree. It stands in for the spec's "embedded tree-based store" option
// (original_source/src/storage/kvsled.rs's role, renamed off the abandoned
// sled crate onto bbolt, the Go ecosystem's nearest equivalent).
package boltengine

import (
	"path/filepath"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/iamnilotpal/ignite-kv/internal/engine"
	kerrors "github.com/iamnilotpal/ignite-kv/pkg/errors"
)

var bucketName = []byte("ignite")

// Store wraps a single bbolt database file holding one bucket.
type Store struct {
	db     *bolt.DB
	closed atomic.Bool
}

var _ engine.Engine = (*Store)(nil)

// Open creates or opens the bbolt file at <dir>/bolt.db and ensures its
// single bucket exists.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, "bolt.db")

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "failed to open bolt database").
			WithPath(path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "failed to create bolt bucket").
			WithPath(path)
	}

	return &Store{db: db}, nil
}

// Get returns the value for key, or (nil, false, nil) on a miss.
func (s *Store) Get(key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, errClosed
	}

	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			value = make([]byte, len(v))
			copy(value, v)
		}
		return nil
	})
	if err != nil {
		return nil, false, kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "bolt read failed")
	}
	if value == nil {
		return nil, false, nil
	}
	return value, true, nil
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

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
	if err != nil {
		return kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "bolt write failed")
	}
	return nil
}

// Remove deletes key, returning an IndexError if it is not present.
func (s *Store) Remove(key string) error {
	if s.closed.Load() {
		return errClosed
	}

	missing := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get([]byte(key)) == nil {
			missing = true
			return nil
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "bolt delete failed")
	}
	if missing {
		return kerrors.NewKeyNotFoundError(key)
	}
	return nil
}

// Close releases the underlying bbolt file handle.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return errClosed
	}
	if err := s.db.Close(); err != nil {
		return kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "failed to close bolt database")
	}
	return nil
}

var errClosed = kerrors.NewStorageError(nil, kerrors.ErrorCodeIO, "operation failed: cannot access closed engine")
