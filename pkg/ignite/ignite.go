// Package ignite is the embeddable, in-process entry point to the
// key/value store: open a data directory, get back an Instance backed by
// whichever engine pkg/options.Options names, and call Set/Get/Delete
// directly — no TCP hop. cmd/kvs-server wraps the same dispatch to put an
// Instance's engine behind internal/server instead.
package ignite

import (
	"context"

	"go.uber.org/zap"

	"github.com/iamnilotpal/ignite-kv/internal/boltengine"
	"github.com/iamnilotpal/ignite-kv/internal/engine"
	"github.com/iamnilotpal/ignite-kv/internal/memengine"
	"github.com/iamnilotpal/ignite-kv/internal/selector"
	"github.com/iamnilotpal/ignite-kv/internal/store"
	kerrors "github.com/iamnilotpal/ignite-kv/pkg/errors"
	"github.com/iamnilotpal/ignite-kv/pkg/filesys"
	"github.com/iamnilotpal/ignite-kv/pkg/logger"
	"github.com/iamnilotpal/ignite-kv/pkg/options"
)

// Instance is a handle to an open key/value store, backed by whichever
// engine.Engine implementation its Options selected.
type Instance struct {
	engine  engine.Engine
	options *options.Options
}

// NewInstance opens an Instance for service, applying opts over the
// library defaults. The engine backend (segmented-log, memory, or bolt)
// is chosen by the resulting Options.Engine.
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	log := logger.New(service)

	defaultOpts := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	eng, err := open(ctx, &defaultOpts, log)
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &defaultOpts}, nil
}

// open dispatches to the engine.Engine backend named by opts.Engine. It
// is deliberately small and duplicated rather than shared with
// cmd/kvs-server's factory, since internal/engine cannot import
// internal/store without creating an import cycle (store asserts it
// satisfies engine.Engine).
func open(ctx context.Context, opts *options.Options, log *zap.SugaredLogger) (engine.Engine, error) {
	// store.Open validates the marker itself; memengine/boltengine have no
	// recovery step, so the marker check happens here instead, ahead of
	// dispatch (spec.md §4.4.3).
	switch opts.Engine {
	case options.EngineMemory, options.EngineBolt:
		if err := filesys.CreateDir(opts.DataDir, 0755, true); err != nil {
			return nil, kerrors.ClassifyDirectoryCreationError(err, opts.DataDir)
		}
		if err := selector.Validate(opts.DataDir, opts.Engine); err != nil {
			return nil, err
		}
	}

	switch opts.Engine {
	case options.EngineMemory:
		return memengine.New(), nil
	case options.EngineBolt:
		return boltengine.Open(opts.DataDir)
	case options.EngineKV, "":
		return store.Open(ctx, opts.DataDir, opts, log)
	default:
		return nil, kerrors.NewValidationError(nil, kerrors.ErrorCodeInvalidInput, "unknown engine kind").
			WithField("engine").WithProvided(opts.Engine)
	}
}

// Set stores key=value, durably for the segmented-log and bolt engines,
// in-process-only for the memory engine.
func (i *Instance) Set(ctx context.Context, key string, value []byte) error {
	return i.engine.Set(key, value)
}

// Get retrieves the value for key. found is false on a miss, not an error.
func (i *Instance) Get(ctx context.Context, key string) (value []byte, found bool, err error) {
	return i.engine.Get(key)
}

// Delete removes key. It returns an error if key is not present.
func (i *Instance) Delete(ctx context.Context, key string) error {
	return i.engine.Remove(key)
}

// Close releases the underlying engine's resources.
func (i *Instance) Close(ctx context.Context) error {
	return i.engine.Close()
}
