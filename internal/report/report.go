// Package report folds task outcomes into a run summary and delivers it.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pablasso/ticksel/internal/runlog"
	"github.com/pablasso/ticksel/internal/task"
	"go.uber.org/zap"
)

// Result is the outcome of one task.
type Result struct {
	Task             task.Task
	SectionFound     bool
	CategorySet      bool
	QuantitySet      bool
	CategoryStrategy string
	QuantityStrategy string
	Err              error
	Duration         time.Duration
}

// Succeeded reports whether every phase of the task went through.
func (r Result) Succeeded() bool {
	return r.SectionFound && r.CategorySet && r.QuantitySet && r.Err == nil
}

// Summary is the outcome of a run.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
	Results   []Result
	Events    []runlog.Event
}

// Summarize counts results into a Summary.
func Summarize(runID string, results []Result, events []runlog.Event) Summary {
	s := Summary{
		RunID:   runID,
		Total:   len(results),
		Results: results,
		Events:  events,
	}
	for _, r := range results {
		s.Duration += r.Duration
		if r.Succeeded() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// Message is the user-facing completion line.
func (s Summary) Message() string {
	return fmt.Sprintf("Selection complete! %d selected, %d failed.", s.Succeeded, s.Failed)
}

// Failures returns the results that did not succeed, in task order.
func (s Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.Succeeded() {
			out = append(out, r)
		}
	}
	return out
}

// Notifier shows a transient message for about d.
type Notifier interface {
	Notify(ctx context.Context, message string, d time.Duration) error
}

// EventSink receives the run's event stream.
type EventSink interface {
	Write(events []runlog.Event) error
}

// Reporter delivers a summary to notifiers and event sinks.
type Reporter struct {
	notifiers    []Notifier
	sinks        []EventSink
	dismissAfter time.Duration
	logger       *zap.Logger
}

// New creates a Reporter with no outputs.
func New() *Reporter {
	return &Reporter{
		dismissAfter: 4 * time.Second,
		logger:       zap.NewNop(),
	}
}

// WithNotifier adds a notifier.
func (r *Reporter) WithNotifier(n Notifier) *Reporter {
	r.notifiers = append(r.notifiers, n)
	return r
}

// WithSink adds an event sink.
func (r *Reporter) WithSink(s EventSink) *Reporter {
	r.sinks = append(r.sinks, s)
	return r
}

// WithDismissAfter sets how long notifications stay up.
func (r *Reporter) WithDismissAfter(d time.Duration) *Reporter {
	r.dismissAfter = d
	return r
}

// WithLogger sets the logger.
func (r *Reporter) WithLogger(logger *zap.Logger) *Reporter {
	r.logger = logger
	return r
}

// Report writes the events to every sink, then shows the summary message on
// every notifier. All outputs are attempted; their errors are joined.
func (r *Reporter) Report(ctx context.Context, s Summary) error {
	var errs []error

	for _, sink := range r.sinks {
		if err := sink.Write(s.Events); err != nil {
			r.logger.Warn("failed to write run events", zap.Error(err))
			errs = append(errs, fmt.Errorf("write events: %w", err))
		}
	}

	msg := s.Message()
	r.logger.Info(msg,
		zap.String("run_id", s.RunID),
		zap.Int("selected", s.Succeeded),
		zap.Int("failed", s.Failed),
	)
	for _, n := range r.notifiers {
		if err := n.Notify(ctx, msg, r.dismissAfter); err != nil {
			r.logger.Warn("failed to show notification", zap.Error(err))
			errs = append(errs, fmt.Errorf("notify: %w", err))
		}
	}

	return errors.Join(errs...)
}
