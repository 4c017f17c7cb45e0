package options

const (
	// DefaultDataDir is the base directory used when no other directory is
	// specified during initialization.
	DefaultDataDir = "/var/lib/ignitedb"

	// DefaultAddr is the TCP address the server binds to and the client
	// connects to when none is given.
	DefaultAddr = "127.0.0.1:4000"

	// DefaultPoolSize is the number of workers the server's worker pool
	// runs by default.
	DefaultPoolSize = 4

	// MinSegmentBytes is the smallest accepted value for MaxSegmentBytes
	// (1 MiB) — below this, rollover would thrash on ordinary workloads.
	MinSegmentBytes int64 = 1 * 1024 * 1024

	// MaxSegmentBytesCeiling is the largest accepted value for
	// MaxSegmentBytes (1 GiB).
	MaxSegmentBytesCeiling int64 = 1 * 1024 * 1024 * 1024

	// DefaultMaxSegmentBytes is the soft cap on active segment size before
	// rollover (4 MiB), per the store's default.
	DefaultMaxSegmentBytes int64 = 4 * 1024 * 1024

	// DefaultCompactionThresholdBytes is the total-log-size trigger above
	// which compaction runs (1 MiB).
	DefaultCompactionThresholdBytes int64 = 1 * 1024 * 1024

	// DefaultEngine is the storage engine used when none is specified.
	DefaultEngine = EngineKV
)

// NewDefaultOptions returns a fresh Options value with every field set to
// its default. Each call allocates its own SegmentOptions so that callers
// mutating one Options value via an OptionFunc never affect another.
func NewDefaultOptions() Options {
	return Options{
		DataDir:  DefaultDataDir,
		Engine:   DefaultEngine,
		Addr:     DefaultAddr,
		PoolSize: DefaultPoolSize,
		SegmentOptions: &segmentOptions{
			MaxBytes:                 DefaultMaxSegmentBytes,
			CompactionThresholdBytes: DefaultCompactionThresholdBytes,
		},
	}
}
