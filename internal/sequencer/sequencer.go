// Package sequencer runs a task list against a page, one task at a time.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pablasso/ticksel/internal/config"
	"github.com/pablasso/ticksel/internal/dom"
	"github.com/pablasso/ticksel/internal/expand"
	"github.com/pablasso/ticksel/internal/locate"
	"github.com/pablasso/ticksel/internal/report"
	"github.com/pablasso/ticksel/internal/runlog"
	"github.com/pablasso/ticksel/internal/stepper"
	"github.com/pablasso/ticksel/internal/task"
	"github.com/pablasso/ticksel/internal/util"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Sequencer drives locate, expand, select and step for each task in order.
// A failing task is recorded and the run moves on; Run always returns a
// summary covering every task.
type Sequencer struct {
	page     dom.Page
	timing   config.Timing
	locator  *locate.Locator
	expander *expand.Expander
	stepper  *stepper.Stepper
	events   Events
	logger   *zap.Logger
	now      func() time.Time
	runID    string
}

// New creates a Sequencer for page using the labels and timing in cfg.
func New(page dom.Page, cfg *config.Config) *Sequencer {
	tm := cfg.Timing
	labels := locate.Labels{
		Section:       cfg.Labels.Section,
		SectionAbbrev: cfg.Labels.SectionAbbrev,
		Category:      cfg.Labels.Category,
		Exclude:       cfg.Labels.Exclude,
	}
	return &Sequencer{
		page:    page,
		timing:  tm,
		locator: locate.New(labels).WithDepths(tm.SectionDepth, tm.AncestorDepth),
		expander: expand.New(cfg.Labels.Disclosure).
			WithCategoryWord(cfg.Labels.Category).
			WithSettle(tm.ActionDelay),
		stepper: stepper.New().
			WithPacing(tm.ClickDelay, tm.DecrementDelay, tm.DecrementAttempts).
			WithSettle(tm.CategorySettle),
		events: noEvents{},
		logger: zap.NewNop(),
		now:    time.Now,
	}
}

// WithEvents sets the callback receiver.
func (s *Sequencer) WithEvents(e Events) *Sequencer {
	if e == nil {
		e = noEvents{}
	}
	s.events = e
	return s
}

// WithLogger sets the logger for the sequencer and its components.
func (s *Sequencer) WithLogger(logger *zap.Logger) *Sequencer {
	s.logger = logger
	s.expander.WithLogger(logger)
	s.stepper.WithLogger(logger)
	return s
}

// WithClock sets the time source (useful for testing).
func (s *Sequencer) WithClock(now func() time.Time) *Sequencer {
	s.now = now
	return s
}

// WithRunID fixes the run ID instead of generating one.
func (s *Sequencer) WithRunID(id string) *Sequencer {
	s.runID = id
	return s
}

// Run processes every task in list order and returns the summary.
func (s *Sequencer) Run(ctx context.Context, tasks []task.Task) report.Summary {
	runID := s.runID
	if runID == "" {
		runID = util.NewRunID()
	}
	log := runlog.New(runID).WithClock(s.now).WithLogger(s.logger)

	start := s.now()
	log.RunStarted(len(tasks))
	s.emit("run_start", func() { s.events.OnRunStart(runID, len(tasks)) })

	results := make([]report.Result, 0, len(tasks))
	for i, t := range tasks {
		if i > 0 {
			// Gap between tasks; a cancelled context surfaces in the next task.
			_ = s.page.Settle(ctx, s.timing.ActionDelay)
		}

		s.emit("task_start", func() { s.events.OnTaskStart(i+1, len(tasks), t) })
		log.Record(runlog.EventTaskStarted, t.ID, map[string]interface{}{
			"section":  t.Section,
			"category": t.Category,
			"quantity": t.Quantity,
		})

		r := s.runTask(ctx, log, t)
		results = append(results, r)

		if r.Succeeded() {
			log.Record(runlog.EventTaskCompleted, t.ID, map[string]interface{}{
				"category_strategy": r.CategoryStrategy,
				"quantity_strategy": r.QuantityStrategy,
				"duration_ms":       r.Duration.Milliseconds(),
			})
			s.emit("task_complete", func() { s.events.OnTaskComplete(r) })
			continue
		}

		phase := PhaseSection
		var te *TaskError
		if errors.As(r.Err, &te) {
			phase = te.Phase
		}
		log.TaskFailed(t.ID, string(phase), r.Err)
		s.emit("task_failed", func() { s.events.OnTaskFailed(r) })
	}

	summary := report.Summarize(runID, results, nil)
	summary.Duration = s.now().Sub(start)
	log.RunCompleted(summary.Succeeded, summary.Failed, summary.Duration)
	summary.Events = log.Events()

	s.emit("run_complete", func() { s.events.OnRunComplete(summary) })
	return summary
}

// emit calls a listener. A panicking listener is logged and the run goes
// on with the outcome unchanged.
func (s *Sequencer) emit(event string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("event listener panicked", zap.String("event", event), zap.Any("panic", p))
		}
	}()
	fn()
}

// runTask executes the phases of one task. Panics are converted into a
// task failure for the phase that was running.
func (s *Sequencer) runTask(ctx context.Context, log *runlog.Log, t task.Task) (r report.Result) {
	r.Task = t
	phase := PhaseSection
	start := s.now()

	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("task panicked", zap.String("task_id", t.ID), zap.String("phase", string(phase)), zap.Any("panic", p))
			log.Record(runlog.EventTaskPanic, t.ID, map[string]interface{}{
				"phase": string(phase),
				"panic": fmt.Sprint(p),
			})
			r.Err = taskErr(ErrActionFailed, phase, t.ID, fmt.Errorf("panic: %v", p))
		}
		r.Duration = s.now().Sub(start)
	}()

	enter := func(p Phase) {
		phase = p
		s.emit("phase", func() { s.events.OnPhase(t, p) })
	}

	// Section.
	enter(PhaseSection)
	snap, err := s.page.Snapshot(ctx)
	if err != nil {
		r.Err = taskErr(ErrActionFailed, phase, t.ID, err)
		return r
	}
	section, ok := s.locator.FindSection(snap, t.Section)
	if !ok {
		log.Record(runlog.EventSectionMissing, t.ID, map[string]interface{}{"section": t.Section})
		r.Err = taskErr(ErrNotFound, phase, t.ID, fmt.Errorf("section %d", t.Section))
		return r
	}
	r.SectionFound = true
	log.Record(runlog.EventSectionFound, t.ID, map[string]interface{}{"path": section.Path})

	// Expand. Failing to expand is not fatal: the controls may already be
	// rendered, and polling decides.
	enter(PhaseExpand)
	expanded, err := s.expander.Expand(ctx, s.page, section)
	if err != nil {
		s.logger.Warn("failed to expand section", zap.String("task_id", t.ID), zap.Error(err))
	}
	if expanded || err != nil {
		data := map[string]interface{}{"expanded": expanded}
		if err != nil {
			data["error"] = err.Error()
		}
		log.Record(runlog.EventExpanded, t.ID, data)
	}

	// Category.
	enter(PhaseCategory)
	strategy, err := s.selectCategory(ctx, log, t)
	if err != nil {
		r.Err = err
		return r
	}
	r.CategorySet = true
	r.CategoryStrategy = strategy
	if err := s.page.Settle(ctx, s.timing.CategorySettle); err != nil {
		r.Err = taskErr(ErrActionFailed, phase, t.ID, err)
		return r
	}

	// Quantity.
	enter(PhaseQuantity)
	scope, err := s.quantityScope(ctx, t)
	if err != nil {
		r.Err = taskErr(ErrActionFailed, phase, t.ID, err)
		return r
	}
	used, err := s.stepper.SetQuantity(ctx, s.page, scope, t.Quantity)
	if err != nil {
		log.Record(runlog.EventQuantityFailed, t.ID, map[string]interface{}{
			"scope": scope.Path,
			"error": err.Error(),
		})
		r.Err = taskErr(ErrActionFailed, phase, t.ID, err)
		return r
	}
	r.QuantitySet = true
	r.QuantityStrategy = used
	log.Record(runlog.EventQuantitySet, t.ID, map[string]interface{}{
		"strategy": used,
		"quantity": t.Quantity,
	})
	return r
}

// selectCategory polls for the category control and clicks it. Every
// attempt searches a fresh snapshot. A stale handle or a failed snapshot
// costs an attempt, nothing more.
func (s *Sequencer) selectCategory(ctx context.Context, log *runlog.Log, t task.Task) (string, error) {
	attempts := s.timing.PollAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := s.page.Settle(ctx, s.timing.PollInterval); err != nil {
				return "", taskErr(ErrActionFailed, PhaseCategory, t.ID, err)
			}
		}

		snap, err := s.page.Snapshot(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", taskErr(ErrActionFailed, PhaseCategory, t.ID, err)
			}
			log.Record(runlog.EventCategoryAttempt, t.ID, map[string]interface{}{"attempt": attempt, "error": err.Error()})
			continue
		}

		h, strategy, ok := s.locator.FindCategoryIn(snap, t.Section, t.Category)
		if !ok {
			log.Record(runlog.EventCategoryAttempt, t.ID, map[string]interface{}{"attempt": attempt})
			continue
		}

		if err := s.page.Click(ctx, h); err != nil {
			if errors.Is(err, dom.ErrStale) {
				log.Record(runlog.EventCategoryAttempt, t.ID, map[string]interface{}{"attempt": attempt, "error": err.Error()})
				continue
			}
			return "", taskErr(ErrActionFailed, PhaseCategory, t.ID, err)
		}

		log.Record(runlog.EventCategorySelected, t.ID, map[string]interface{}{
			"attempt":  attempt,
			"strategy": strategy,
			"path":     h.Path,
		})
		return strategy, nil
	}

	log.Record(runlog.EventCategoryTimeout, t.ID, map[string]interface{}{"attempts": attempts})
	return "", taskErr(ErrTimeout, PhaseCategory, t.ID, fmt.Errorf("category %d after %d attempts", t.Category, attempts))
}

// quantityScope re-acquires, from a fresh snapshot, the smallest container
// of the selected category that holds a quantity control. It falls back to
// the section and then to the whole document.
func (s *Sequencer) quantityScope(ctx context.Context, t task.Task) (dom.Handle, error) {
	snap, err := s.page.Snapshot(ctx)
	if err != nil {
		return dom.Handle{}, err
	}

	section, hasSection := s.locator.FindSection(snap, t.Section)
	if ctrl, _, ok := s.locator.FindCategoryIn(snap, t.Section, t.Category); ok {
		scope := dom.Closest(ctrl.Node, s.locator.AncestorDepth(), func(n *html.Node) bool {
			if hasSection && !dom.Contains(section.Node, n) {
				return false
			}
			return s.stepper.HasControl(n)
		})
		if scope != nil {
			return dom.HandleFor(scope), nil
		}
	}
	if hasSection {
		return section, nil
	}
	return dom.HandleFor(documentElement(snap)), nil
}

func documentElement(root *html.Node) *html.Node {
	if root.Type == html.DocumentNode {
		for c := root.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				return c
			}
		}
	}
	return root
}
