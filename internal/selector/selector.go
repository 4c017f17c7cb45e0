// Package selector validates that a data directory is being opened by the
// same storage engine that created it (spec.md §4.4.3, §8 scenario 6). It
// does not pick or open an engine; callers dispatch on the `--engine` flag.
package selector

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iamnilotpal/ignite-kv/pkg/filesys"
	"github.com/iamnilotpal/ignite-kv/pkg/options"

	kerrors "github.com/iamnilotpal/ignite-kv/pkg/errors"
)

// markerFileName is the name of the engine marker file written to the root
// of every data directory.
const markerFileName = "engine"

// Validate reads dir's engine marker file and compares it against want. If
// the marker is absent — a fresh data directory — it is created recording
// want. If present and different, Validate returns an *errors.EngineError
// wrapping the mismatch; callers (cmd/kvs-server) must treat this as fatal.
func Validate(dir string, want options.EngineKind) error {
	path := filepath.Join(dir, markerFileName)

	exists, err := filesys.Exists(path)
	if err != nil {
		return kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "failed to check engine marker file").
			WithPath(path)
	}

	if !exists {
		if err := filesys.WriteFile(path, 0644, []byte(strings.TrimSpace(string(want)))); err != nil {
			return kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "failed to write engine marker file").
				WithPath(path)
		}
		return nil
	}

	raw, err := filesys.ReadFile(path)
	if err != nil {
		return kerrors.NewStorageError(err, kerrors.ErrorCodeIO, "failed to read engine marker file").
			WithPath(path)
	}

	got := options.EngineKind(strings.TrimSpace(string(raw)))
	if got != want {
		return kerrors.NewWrongEngineError(dir, string(want), string(got))
	}

	return nil
}

// Recorded returns the engine kind recorded in dir's marker file, if any.
func Recorded(dir string) (options.EngineKind, bool, error) {
	path := filepath.Join(dir, markerFileName)

	exists, err := filesys.Exists(path)
	if err != nil {
		return "", false, fmt.Errorf("selector: checking marker file: %w", err)
	}
	if !exists {
		return "", false, nil
	}

	raw, err := filesys.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("selector: reading marker file: %w", err)
	}

	return options.EngineKind(strings.TrimSpace(string(raw))), true, nil
}
