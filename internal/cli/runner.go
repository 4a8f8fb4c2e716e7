package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pablasso/ticksel/internal/config"
	"github.com/pablasso/ticksel/internal/display"
	"github.com/pablasso/ticksel/internal/dom"
	"github.com/pablasso/ticksel/internal/report"
	"github.com/pablasso/ticksel/internal/runlog"
	"github.com/pablasso/ticksel/internal/sequencer"
	"github.com/pablasso/ticksel/internal/trigger"
	"github.com/pablasso/ticksel/internal/tui"
	"go.uber.org/zap"
)

// runner executes the configured task list against one page and reports
// the outcome.
type runner struct {
	cfg       *config.Config
	page      dom.Page
	logger    *zap.Logger
	sinks     []report.EventSink
	notifiers []report.Notifier
}

func newRunner(cfg *config.Config, t *target, logger *zap.Logger) *runner {
	r := &runner{cfg: cfg, page: t.page, logger: logger}
	if t.notifier != nil {
		r.notifiers = append(r.notifiers, t.notifier)
	}
	if eventsPath != "" {
		r.sinks = append(r.sinks, runlog.NewFileSink(eventsPath))
	}
	return r
}

func (r *runner) execute(ctx context.Context, events sequencer.Events) report.Summary {
	return sequencer.New(r.page, r.cfg).
		WithEvents(events).
		WithLogger(r.logger).
		Run(ctx, r.cfg.Tasks)
}

// deliver hands the summary to every notifier and sink. A cancelled run
// is still reported.
func (r *runner) deliver(ctx context.Context, s report.Summary, extra ...report.Notifier) {
	rep := report.New().
		WithDismissAfter(r.cfg.NotifyFor).
		WithLogger(r.logger)
	for _, n := range r.notifiers {
		rep.WithNotifier(n)
	}
	for _, n := range extra {
		rep.WithNotifier(n)
	}
	for _, sink := range r.sinks {
		rep.WithSink(sink)
	}
	if err := rep.Report(context.WithoutCancel(ctx), s); err != nil {
		r.logger.Warn("Failed to deliver report", zap.Error(err))
	}
}

// forTUI adapts the runner to the terminal UI, which supplies its own
// event listener and toast.
func (r *runner) forTUI() tui.Runner {
	return func(ctx context.Context, events sequencer.Events, notifier report.Notifier) report.Summary {
		s := r.execute(ctx, events)
		r.deliver(ctx, s, notifier)
		return s
	}
}

// runInTerminal runs once with a live status line when out is a terminal,
// then prints the summary box and every failure.
func runInTerminal(ctx context.Context, out io.Writer, r *runner) report.Summary {
	var events sequencer.Events
	var d *display.Display
	if isTerminal(out) {
		d = display.New(out)
		events = display.NewListener(d, r.cfg.Labels.Section, r.cfg.Labels.Category)
		d.Start()
	}

	s := r.execute(ctx, events)
	if d != nil {
		d.Stop()
	}

	r.deliver(ctx, s, report.NewTerminalNotifier(out).Persistent())
	for _, f := range s.Failures() {
		fmt.Fprintf(out, "  ✗ %s: %v\n", f.Task.Label(r.cfg.Labels.Section, r.cfg.Labels.Category), f.Err)
	}
	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// lockTasks keeps another ticksel process off the same config until the
// returned release is called.
func lockTasks(path string, logger *zap.Logger) (release func(), err error) {
	lock := trigger.NewFileLock(trigger.LockPathFor(path))
	if err := lock.Acquire(); err != nil {
		return nil, err
	}
	return func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release lock", zap.String("path", lock.Path()), zap.Error(err))
		}
	}, nil
}
