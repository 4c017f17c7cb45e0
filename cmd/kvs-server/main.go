// Command kvs-server runs the TCP front-end over a selectable storage
// engine (spec.md §6, grounded in original_source/src/bin/kvs-server.rs's
// --addr/--engine shape, translated from clap to pflag, and in
// calvinalkan-agent-task/cmd/tk/main.go's thin os.Exit(code) + signal.Notify
// wiring pattern).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/iamnilotpal/ignite-kv/internal/boltengine"
	"github.com/iamnilotpal/ignite-kv/internal/engine"
	"github.com/iamnilotpal/ignite-kv/internal/memengine"
	"github.com/iamnilotpal/ignite-kv/internal/selector"
	"github.com/iamnilotpal/ignite-kv/internal/server"
	"github.com/iamnilotpal/ignite-kv/internal/store"
	"github.com/iamnilotpal/ignite-kv/internal/workerpool"
	kerrors "github.com/iamnilotpal/ignite-kv/pkg/errors"
	"github.com/iamnilotpal/ignite-kv/pkg/filesys"
	"github.com/iamnilotpal/ignite-kv/pkg/logger"
	"github.com/iamnilotpal/ignite-kv/pkg/options"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("kvs-server", flag.ContinueOnError)
	addr := fs.String("addr", options.DefaultAddr, "address to bind (IP:PORT)")
	engineName := fs.String("engine", string(options.DefaultEngine), "storage engine: kvs|sled|memory")
	dataDir := fs.String("data-dir", options.DefaultDataDir, "directory holding the engine marker and segments")
	poolSize := fs.Int("pool-size", options.DefaultPoolSize, "worker pool size")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return 2
	}

	log := logger.New("kvs-server")
	defer log.Sync()

	opts := options.NewDefaultOptions()
	opts.Addr = *addr
	opts.Engine = options.EngineKind(*engineName)
	opts.DataDir = *dataDir
	opts.PoolSize = *poolSize

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := openEngine(ctx, &opts, log)
	if err != nil {
		log.Errorw("failed to open engine", "error", err)
		return 1
	}
	defer eng.Close()

	log.Infow("kvs-server starting", "addr", opts.Addr, "engine", opts.Engine, "dataDir", opts.DataDir)

	pool := workerpool.NewQueued(opts.PoolSize, opts.PoolSize*4)
	defer pool.Close()

	srv := server.New(opts.Addr, eng, pool, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Infow("shutdown signal received")
		srv.Shutdown()
	}()

	if err := srv.Run(ctx); err != nil {
		log.Errorw("server exited with error", "error", err)
		return 1
	}

	return 0
}

// openEngine is the small factory spec.md §9 calls for: it picks the
// backend named by opts.Engine, writing/validating the engine marker via
// internal/selector (inside store.Open) for the segmented-log engine.
// Duplicated from pkg/ignite's identical switch rather than shared, since
// internal/engine cannot import internal/store without an import cycle.
func openEngine(ctx context.Context, opts *options.Options, log *zap.SugaredLogger) (engine.Engine, error) {
	// store.Open validates the marker itself as part of recovery; memengine
	// and boltengine have no recovery step of their own, so the marker
	// check (spec.md §4.4.3, §8 scenario 6) is done here instead, ahead of
	// dispatch, so a --engine switch is refused regardless of which
	// backend answers.
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
			WithField("engine").WithProvided(fmt.Sprint(opts.Engine))
	}
}
