package sequencer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pablasso/ticksel/internal/config"
	"github.com/pablasso/ticksel/internal/dom"
	"github.com/pablasso/ticksel/internal/dom/memdom"
	"github.com/pablasso/ticksel/internal/report"
	"github.com/pablasso/ticksel/internal/runlog"
	"github.com/pablasso/ticksel/internal/stepper"
	"github.com/pablasso/ticksel/internal/task"
	"golang.org/x/net/html"
)

// sectionsPage renders n sections with three categories each. Every
// category row has its own increase button.
func sectionsPage(n int) string {
	var b strings.Builder
	b.WriteString("<html><body><h1>Fixtures</h1>")
	for s := 1; s <= n; s++ {
		fmt.Fprintf(&b, `<div class="match-card"><h2>Match %d</h2>`, s)
		for c := 1; c <= 3; c++ {
			fmt.Fprintf(&b, `<div class="row"><button>Category %d</button><button aria-label="Increase quantity">+</button><span>0</span></div>`, c)
		}
		b.WriteString("</div>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

// plusPath is the increase button of a category row in sectionsPage.
func plusPath(section, category int) string {
	return fmt.Sprintf("/html[1]/body[1]/div[%d]/div[%d]/button[2]", section, category)
}

func categoryPath(section, category int) string {
	return fmt.Sprintf("/html[1]/body[1]/div[%d]/div[%d]/button[1]", section, category)
}

func load(t *testing.T, src string) *memdom.Page {
	t.Helper()
	page, err := memdom.ParseString(src)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return page
}

func fakeClock() func() time.Time {
	now := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
}

func newSequencer(page dom.Page, cfg *config.Config) *Sequencer {
	return New(page, cfg).WithClock(fakeClock()).WithRunID("run-test")
}

func tasks(specs ...[3]int) []task.Task {
	out := make([]task.Task, len(specs))
	for i, s := range specs {
		out[i] = task.Task{ID: fmt.Sprintf("t%02d", i+1), Section: s[0], Category: s[1], Quantity: s[2]}
	}
	return out
}

func TestRun_AllTasksSucceed(t *testing.T) {
	page := load(t, sectionsPage(5))
	list := tasks([3]int{1, 2, 2}, [3]int{3, 2, 3}, [3]int{5, 1, 1})

	summary := newSequencer(page, config.Default()).Run(context.Background(), list)

	if summary.Total != 3 || summary.Succeeded != 3 || summary.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", summary.Failures())
	}
	for _, r := range summary.Results {
		if r.CategoryStrategy != "exact-text" || r.QuantityStrategy != "aria-increase" {
			t.Errorf("task %s: unexpected strategies %q / %q", r.Task.ID, r.CategoryStrategy, r.QuantityStrategy)
		}
	}

	for _, tt := range list {
		if got := page.Clicks(categoryPath(tt.Section, tt.Category)); got != 1 {
			t.Errorf("task %s: expected 1 category click, got %d", tt.ID, got)
		}
		if got := page.Clicks(plusPath(tt.Section, tt.Category)); got != tt.Quantity {
			t.Errorf("task %s: expected %d increase clicks, got %d", tt.ID, tt.Quantity, got)
		}
	}
	if got, want := page.TotalClicks(), 3+2+3+1; got != want {
		t.Errorf("expected %d clicks in total, got %d", want, got)
	}
}

func TestRun_MissingSectionDoesNotStopTheRun(t *testing.T) {
	page := load(t, sectionsPage(3))
	list := tasks([3]int{1, 1, 1}, [3]int{9, 1, 1}, [3]int{2, 3, 2})

	summary := newSequencer(page, config.Default()).Run(context.Background(), list)

	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Fatalf("expected 2 selected and 1 failed, got %d/%d", summary.Succeeded, summary.Failed)
	}
	failed := summary.Results[1]
	if failed.SectionFound {
		t.Error("expected SectionFound=false for the missing section")
	}
	if !errors.Is(failed.Err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", failed.Err)
	}
	var te *TaskError
	if !errors.As(failed.Err, &te) || te.Phase != PhaseSection || te.TaskID != "t02" {
		t.Errorf("unexpected task error: %#v", failed.Err)
	}
	if got := summary.Results[2].Task.ID; got != "t03" || !summary.Results[2].Succeeded() {
		t.Errorf("expected task after the failure to run and succeed, got %s (%v)", got, summary.Results[2].Err)
	}
	if got := page.Clicks(plusPath(2, 3)); got != 2 {
		t.Errorf("expected 2 increase clicks for t03, got %d", got)
	}
}

func TestRun_Deterministic(t *testing.T) {
	list := tasks([3]int{1, 2, 2}, [3]int{4, 9, 1}, [3]int{2, 1, 4})
	cfg := config.Default()
	cfg.Timing.PollAttempts = 2

	run := func() (report.Summary, []memdom.Event) {
		page := load(t, sectionsPage(3))
		return newSequencer(page, cfg).Run(context.Background(), list), page.Events()
	}

	first, firstEvents := run()
	second, secondEvents := run()

	equateErrors := cmp.Comparer(func(a, b error) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Error() == b.Error()
	})
	if diff := cmp.Diff(first, second, equateErrors); diff != "" {
		t.Errorf("summaries differ between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(firstEvents, secondEvents); diff != "" {
		t.Errorf("page interactions differ between runs (-first +second):\n%s", diff)
	}
}

func TestRun_PollsForLateCategory(t *testing.T) {
	const src = `<html><body>
<div class="match-card"><h2>Match 1</h2><span class="category-hint">Category 1 loading</span><div id="rows"></div></div>
</body></html>`

	addRow := func(doc *html.Node) {
		rows := dom.Find(doc, func(n *html.Node) bool { return dom.AttrValue(n, "id") == "rows" })
		row, _ := html.ParseFragment(strings.NewReader(`<div class="row"><button>Category 2</button><input type="number" value="0"></div>`), rows)
		for _, n := range row {
			rows.AppendChild(n)
		}
	}

	tests := []struct {
		name     string
		delay    int
		attempts int
		wantErr  error
	}{
		{"appears within the window", 3, 10, nil},
		{"appears on the last attempt", 3, 4, nil},
		{"never in time", 5, 3, ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := load(t, src)
			page.After(tt.delay, addRow)
			cfg := config.Default()
			cfg.Timing.PollAttempts = tt.attempts

			summary := newSequencer(page, cfg).Run(context.Background(), tasks([3]int{1, 2, 3}))
			r := summary.Results[0]

			if tt.wantErr == nil {
				if !r.Succeeded() {
					t.Fatalf("expected success, got %v", r.Err)
				}
				if r.QuantityStrategy != "numeric-input" {
					t.Errorf("expected numeric-input, got %q", r.QuantityStrategy)
				}
				return
			}
			if !errors.Is(r.Err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, r.Err)
			}
			if !r.SectionFound || r.CategorySet {
				t.Errorf("unexpected flags: %+v", r)
			}
			attempts := 0
			for _, e := range summary.Events {
				if e.Event == runlog.EventCategoryAttempt {
					attempts++
				}
			}
			if attempts != tt.attempts {
				t.Errorf("expected %d logged attempts, got %d", tt.attempts, attempts)
			}
		})
	}
}

func TestRun_ExpandsCollapsedSection(t *testing.T) {
	page := load(t, `<html><body>
<div class="match-card"><h2>Match 1</h2><span class="category-count">Category 1-3</span>
  <button aria-expanded="false" aria-controls="p1">Show more</button>
  <div id="p1" hidden><div class="row"><button>Category 2</button><button class="qty-plus">+</button></div></div>
</div></body></html>`)

	summary := newSequencer(page, config.Default()).Run(context.Background(), tasks([3]int{1, 2, 2}))

	if summary.Succeeded != 1 {
		t.Fatalf("expected success, got %v", summary.Results[0].Err)
	}
	more, _ := page.Find(`//button[@aria-controls="p1"]`)
	if got := page.Clicks(more.Path); got != 1 {
		t.Errorf("expected the disclosure to be clicked once, got %d", got)
	}
	plus, _ := page.Find(`//button[@class="qty-plus"]`)
	if got := page.Clicks(plus.Path); got != 2 {
		t.Errorf("expected 2 increase clicks, got %d", got)
	}
}

func TestRun_QuantityFailure(t *testing.T) {
	page := load(t, `<html><body>
<div class="match-card"><h2>Match 1</h2><button>Category 1</button></div>
</body></html>`)

	summary := newSequencer(page, config.Default()).Run(context.Background(), tasks([3]int{1, 1, 2}))
	r := summary.Results[0]

	if r.Succeeded() {
		t.Fatal("expected failure without a quantity control")
	}
	if !r.SectionFound || !r.CategorySet || r.QuantitySet {
		t.Errorf("unexpected flags: %+v", r)
	}
	if !errors.Is(r.Err, ErrActionFailed) || !errors.Is(r.Err, stepper.ErrNoControl) {
		t.Errorf("expected ErrActionFailed wrapping ErrNoControl, got %v", r.Err)
	}
}

// panicPage panics on its first click.
type panicPage struct {
	*memdom.Page
	clicked bool
}

func (p *panicPage) Click(ctx context.Context, h dom.Handle) error {
	if !p.clicked {
		p.clicked = true
		panic("renderer crashed")
	}
	return p.Page.Click(ctx, h)
}

func TestRun_RecoversFromPanic(t *testing.T) {
	page := &panicPage{Page: load(t, sectionsPage(2))}

	summary := newSequencer(page, config.Default()).Run(context.Background(), tasks([3]int{1, 1, 1}, [3]int{2, 1, 1}))

	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("expected one failure and one success, got %d/%d", summary.Succeeded, summary.Failed)
	}
	var te *TaskError
	if !errors.As(summary.Results[0].Err, &te) || te.Phase != PhaseCategory || !errors.Is(te, ErrActionFailed) {
		t.Errorf("unexpected error for panicking task: %v", summary.Results[0].Err)
	}

	var panics int
	for _, e := range summary.Events {
		if e.Event == runlog.EventTaskPanic {
			panics++
		}
	}
	if panics != 1 {
		t.Errorf("expected 1 task_panic event, got %d", panics)
	}
}

func TestRun_Cancelled(t *testing.T) {
	page := load(t, sectionsPage(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := newSequencer(page, config.Default()).Run(ctx, tasks([3]int{1, 1, 1}, [3]int{2, 1, 1}))

	if summary.Total != 2 || summary.Failed != 2 {
		t.Errorf("expected both tasks to fail, got %+v", summary)
	}
	if page.TotalClicks() != 0 {
		t.Errorf("expected no clicks after cancellation, got %d", page.TotalClicks())
	}
}

type recordingEvents struct {
	calls []string
}

func (r *recordingEvents) OnRunStart(runID string, total int) {
	r.calls = append(r.calls, fmt.Sprintf("run_start %s %d", runID, total))
}

func (r *recordingEvents) OnTaskStart(n, total int, t task.Task) {
	r.calls = append(r.calls, fmt.Sprintf("task_start %d/%d %s", n, total, t.ID))
}

func (r *recordingEvents) OnPhase(t task.Task, p Phase) {
	r.calls = append(r.calls, fmt.Sprintf("phase %s %s", t.ID, p))
}

func (r *recordingEvents) OnTaskComplete(res report.Result) {
	r.calls = append(r.calls, "complete "+res.Task.ID)
}

func (r *recordingEvents) OnTaskFailed(res report.Result) {
	r.calls = append(r.calls, "failed "+res.Task.ID)
}

func (r *recordingEvents) OnRunComplete(s report.Summary) {
	r.calls = append(r.calls, s.Message())
}

func TestRun_Events(t *testing.T) {
	page := load(t, sectionsPage(1))
	rec := &recordingEvents{}

	newSequencer(page, config.Default()).WithEvents(rec).Run(context.Background(), tasks([3]int{1, 1, 1}, [3]int{2, 1, 1}))

	want := []string{
		"run_start run-test 2",
		"task_start 1/2 t01",
		"phase t01 section",
		"phase t01 expand",
		"phase t01 category",
		"phase t01 quantity",
		"complete t01",
		"task_start 2/2 t02",
		"phase t02 section",
		"failed t02",
		"Selection complete! 1 selected, 1 failed.",
	}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("callbacks mismatch (-want +got):\n%s", diff)
	}
}

// panickingEvents records like recordingEvents but panics on every call.
type panickingEvents struct {
	recordingEvents
}

func (p *panickingEvents) OnRunStart(runID string, total int) {
	p.recordingEvents.OnRunStart(runID, total)
	panic("run start listener")
}

func (p *panickingEvents) OnTaskStart(n, total int, t task.Task) {
	p.recordingEvents.OnTaskStart(n, total, t)
	panic("task start listener")
}

func (p *panickingEvents) OnPhase(t task.Task, ph Phase) {
	p.recordingEvents.OnPhase(t, ph)
	panic("phase listener")
}

func (p *panickingEvents) OnTaskComplete(res report.Result) {
	p.recordingEvents.OnTaskComplete(res)
	panic("complete listener")
}

func (p *panickingEvents) OnTaskFailed(res report.Result) {
	p.recordingEvents.OnTaskFailed(res)
	panic("failed listener")
}

func (p *panickingEvents) OnRunComplete(s report.Summary) {
	p.recordingEvents.OnRunComplete(s)
	panic("run complete listener")
}

func TestRun_PanickingListenerDoesNotStopTheRun(t *testing.T) {
	page := load(t, sectionsPage(2))
	ev := &panickingEvents{}

	summary := newSequencer(page, config.Default()).WithEvents(ev).
		Run(context.Background(), tasks([3]int{1, 1, 1}, [3]int{9, 1, 1}, [3]int{2, 2, 2}))

	if summary.Total != 3 || summary.Succeeded != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected counts: %d selected, %d failed of %d", summary.Succeeded, summary.Failed, summary.Total)
	}
	for _, e := range summary.Events {
		if e.Event == runlog.EventTaskPanic {
			t.Errorf("listener panic was recorded as a task panic for %s", e.TaskID)
		}
	}

	want := []string{
		"run_start run-test 3",
		"task_start 1/3 t01",
		"phase t01 section",
		"phase t01 expand",
		"phase t01 category",
		"phase t01 quantity",
		"complete t01",
		"task_start 2/3 t02",
		"phase t02 section",
		"failed t02",
		"task_start 3/3 t03",
		"phase t03 section",
		"phase t03 expand",
		"phase t03 category",
		"phase t03 quantity",
		"complete t03",
		"Selection complete! 2 selected, 1 failed.",
	}
	if diff := cmp.Diff(want, ev.calls); diff != "" {
		t.Errorf("callbacks mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_EventLog(t *testing.T) {
	page := load(t, sectionsPage(1))

	summary := newSequencer(page, config.Default()).Run(context.Background(), tasks([3]int{1, 3, 2}))

	var kinds []string
	for _, e := range summary.Events {
		if e.RunID != "run-test" {
			t.Errorf("event %s has run id %q", e.Event, e.RunID)
		}
		kinds = append(kinds, e.Event)
	}
	want := []string{
		runlog.EventRunStarted,
		runlog.EventTaskStarted,
		runlog.EventSectionFound,
		runlog.EventCategorySelected,
		runlog.EventQuantitySet,
		runlog.EventTaskCompleted,
		runlog.EventRunCompleted,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("event kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskError(t *testing.T) {
	cause := fmt.Errorf("click: %w", dom.ErrStale)
	err := taskErr(ErrActionFailed, PhaseQuantity, "t04", cause)

	if !errors.Is(err, ErrActionFailed) || !errors.Is(err, dom.ErrStale) {
		t.Error("expected both kind and cause to be reachable")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("unexpected kind match")
	}
	if got := err.Error(); got != "task t04: quantity: action failed: click: stale element handle" {
		t.Errorf("unexpected message: %q", got)
	}
}
