package cli

import (
	"fmt"

	"go.uber.org/zap"
)

// newLogger builds the process logger. Without a file it writes JSON to
// stderr at warn level, or debug with verbose. With a file every level down
// to info (debug with verbose) goes there instead, which keeps the terminal
// UI clean.
func newLogger(verbose bool, file string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.DisableStacktrace = true

	switch {
	case verbose:
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case file == "":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	if file != "" {
		cfg.OutputPaths = []string{file}
		cfg.ErrorOutputPaths = []string{file}
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}
