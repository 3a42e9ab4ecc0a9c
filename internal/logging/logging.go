// Package logging builds the zap logger shared by the CLI and its workers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options control New.
type Options struct {
	Verbose bool     // debug level instead of warn
	Paths   []string // output paths, default stderr
}

// New builds a production logger. Only warnings and errors are written unless
// Verbose is set.
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if len(opts.Paths) > 0 {
		cfg.OutputPaths = opts.Paths
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("misterlister"), nil
}
