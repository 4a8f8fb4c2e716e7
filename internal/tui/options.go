package tui

import (
	"context"

	"github.com/pablasso/ticksel/internal/config"
	"github.com/pablasso/ticksel/internal/report"
	"github.com/pablasso/ticksel/internal/sequencer"
	"go.uber.org/zap"
)

// Runner performs one run of the configured tasks, reporting progress to
// events and the final message to notifier.
type Runner func(ctx context.Context, events sequencer.Events, notifier report.Notifier) report.Summary

// Options configures TUI startup behavior.
type Options struct {
	Config *config.Config
	Runner Runner
	// Target names the page in the header, e.g. a URL or file path.
	Target string
	Logger *zap.Logger
	// Ready is called with the bridge once the program exists, so other
	// trigger sources can be attached.
	Ready func(b *Bridge)
}
