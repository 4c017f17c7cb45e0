// Package options provides data structures and functions for configuring
// the ignite key/value store. It defines the parameters that control
// storage behavior (segment size, compaction threshold), the engine kind,
// and the server/client front-ends built on top of the store.
package options

import "strings"

// segmentOptions defines configurable parameters for the append-only log
// segments that back the store.
type segmentOptions struct {
	// MaxBytes is the soft cap after which the active segment is rolled
	// over to a new file.
	//
	// Default: 4 MiB
	MaxBytes int64 `json:"maxSegmentBytes"`

	// CompactionThresholdBytes is the total-log-size trigger above which
	// compaction runs (live_bytes + stale_bytes).
	//
	// Default: 1 MiB
	CompactionThresholdBytes int64 `json:"compactionThresholdBytes"`
}

// EngineKind names a pluggable storage engine.
type EngineKind string

const (
	EngineKV     EngineKind = "kvs"
	EngineBolt   EngineKind = "sled"
	EngineMemory EngineKind = "memory"
)

// Options defines the configuration parameters for an ignite instance,
// covering storage, server, and client concerns.
type Options struct {
	// DataDir is the base path where the engine marker and segment files
	// are stored.
	//
	// Default: "/var/lib/ignitedb"
	DataDir string `json:"dataDir"`

	// Engine selects which storage engine implementation to run.
	//
	// Default: EngineKV
	Engine EngineKind `json:"engine"`

	// Addr is the TCP address the server binds to, or the client connects
	// to.
	//
	// Default: "127.0.0.1:4000"
	Addr string `json:"addr"`

	// PoolSize is the number of workers the server's worker pool runs.
	//
	// Default: 4
	PoolSize int `json:"poolSize"`

	// SegmentOptions configures segment size and compaction behavior.
	SegmentOptions *segmentOptions `json:"segmentOptions"`
}

// OptionFunc is a function type that modifies an Options value.
type OptionFunc func(*Options)

// WithDefaultOptions resets every field on o to its default value.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		*o = opts
	}
}

// WithDataDir sets the primary data directory.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithEngine selects the storage engine implementation.
func WithEngine(engine EngineKind) OptionFunc {
	return func(o *Options) {
		switch engine {
		case EngineKV, EngineBolt, EngineMemory:
			o.Engine = engine
		}
	}
}

// WithAddr sets the server bind address or client target address.
func WithAddr(addr string) OptionFunc {
	return func(o *Options) {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			o.Addr = addr
		}
	}
}

// WithPoolSize sets the number of workers in the server's worker pool.
func WithPoolSize(size int) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.PoolSize = size
		}
	}
}

// WithMaxSegmentBytes sets the soft cap on active segment size before
// rollover. Values outside [MinSegmentBytes, MaxSegmentBytesCeiling] are
// ignored.
func WithMaxSegmentBytes(size int64) OptionFunc {
	return func(o *Options) {
		if size >= MinSegmentBytes && size <= MaxSegmentBytesCeiling {
			o.SegmentOptions.MaxBytes = size
		}
	}
}

// WithCompactionThreshold sets the total-log-size trigger above which
// compaction runs. This is the one knob tests are expected to dial down
// explicitly (e.g. to exercise compaction without writing megabytes of
// data); production code should leave it at the default.
func WithCompactionThreshold(size int64) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.SegmentOptions.CompactionThresholdBytes = size
		}
	}
}
