// Package logger builds the structured loggers used throughout ignite. It
// wraps go.uber.org/zap with a single constructor so every component gets a
// consistently configured *zap.SugaredLogger tagged with the service that
// created it.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-configured, stderr-writing SugaredLogger for the
// named service. All server and client components log to stderr so stdout
// stays free for the client CLI's command output (spec.md §6).
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build()
	if err != nil {
		// zap's production config is validated at compile time by its own
		// test suite; a build failure here means stderr itself is
		// unusable, so fall back to a no-op logger rather than panicking.
		return zap.NewNop().Sugar().Named(service)
	}

	return log.Sugar().Named(service)
}

// NewTest builds a logger suitable for tests: human-readable console output
// at debug level.
func NewTest() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return log.Sugar()
}
