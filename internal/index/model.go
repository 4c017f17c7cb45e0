package index

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/iamnilotpal/ignite-kv/internal/segment"
)

// Index is the in-memory hash table mapping keys to their on-disk
// location. It embodies the core Bitcask principle: every key lives in
// memory, but only a fixed-size position — not the value itself — so the
// store can hold a dataset far larger than RAM.
//
// Unlike the original RecordPointer this replaces, Pos carries no
// Timestamp or Key: last-write-wins is decided by log order (later segment,
// or later offset within the same segment), never wall-clock time, and the
// key is already the map key so storing it again would be pure redundancy.
type Index struct {
	dataDir string
	log     *zap.SugaredLogger

	mu      sync.RWMutex
	pointer map[string]segment.Pos

	closed atomic.Bool
}

// Config encapsulates the parameters required to initialize an Index.
type Config struct {
	DataDir string
	Logger  *zap.SugaredLogger
}
