package display

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/goleak"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{0, "00:00"},
		{5*time.Minute + 30*time.Second, "05:30"},
		{5*time.Minute + 30*time.Second + 500*time.Millisecond, "05:31"},
		{2*time.Hour + 34*time.Minute + 56*time.Second, "02:34:56"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.duration); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.duration, got, tt.want)
		}
	}
}

func TestFormatLine(t *testing.T) {
	d := New(&bytes.Buffer{})

	tests := []struct {
		name     string
		state    State
		elapsed  time.Duration
		expected string
	}{
		{
			name: "basic format",
			state: State{
				TaskNum:    1,
				TotalTasks: 5,
				TaskLabel:  "Match 3 · Category 2 ×2",
				TaskID:     "t01",
				Phase:      "category",
				Status:     StatusRunning,
			},
			elapsed:  1*time.Minute + 30*time.Second,
			expected: "Task 1/5: Match 3 · Category 2 ×2 │ category │ ✓ 0 ✗ 0 │ ⏱ 01:30 │ Running",
		},
		{
			name: "zero total tasks returns empty",
			state: State{
				TotalTasks: 0,
			},
			elapsed:  0,
			expected: "",
		},
		{
			name: "no phase yet",
			state: State{
				TaskNum:    2,
				TotalTasks: 3,
				TaskLabel:  "Match 1 · Category 1 ×1",
				Selected:   1,
				Status:     StatusRunning,
			},
			elapsed:  5 * time.Second,
			expected: "Task 2/3: Match 1 · Category 1 ×1 │ - │ ✓ 1 ✗ 0 │ ⏱ 00:05 │ Running",
		},
		{
			name: "failed status with counts",
			state: State{
				TaskNum:    4,
				TotalTasks: 4,
				TaskLabel:  "Match 9 · Category 3 ×4",
				Phase:      "quantity",
				Selected:   2,
				Failed:     2,
				Status:     StatusFailed,
			},
			elapsed:  2*time.Hour + 5*time.Second,
			expected: "Task 4/4: Match 9 · Category 3 ×4 │ quantity │ ✓ 2 ✗ 2 │ ⏱ 02:00:05 │ Failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.formatLine(tt.state, tt.elapsed)
			if result != tt.expected {
				t.Errorf("formatLine() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestFormatLine_LongLabel(t *testing.T) {
	d := New(&bytes.Buffer{})
	state := State{
		TaskNum:    1,
		TotalTasks: 1,
		TaskLabel:  "Tournament Fixture 12 · Seating Category 3 ×4 extra",
		Phase:      "section",
		Status:     StatusRunning,
	}

	line := d.formatLine(state, 0)
	want := "Task 1/1: " + string([]rune(state.TaskLabel)[:37]) + "... │ section"
	if !strings.HasPrefix(line, want) {
		t.Errorf("formatLine() = %q, want prefix %q", line, want)
	}
	if !utf8.ValidString(line) {
		t.Errorf("formatLine() split a rune: %q", line)
	}
}

func TestUpdateTask(t *testing.T) {
	d := New(&bytes.Buffer{})
	d.UpdatePhase("quantity")

	d.UpdateTask(2, 7, "t02", "Match 2 · Category 1 ×3")

	s := d.State()
	if s.TaskNum != 2 || s.TotalTasks != 7 {
		t.Errorf("task position = %d/%d, want 2/7", s.TaskNum, s.TotalTasks)
	}
	if s.TaskID != "t02" {
		t.Errorf("TaskID = %q, want t02", s.TaskID)
	}
	if s.TaskLabel != "Match 2 · Category 1 ×3" {
		t.Errorf("TaskLabel = %q", s.TaskLabel)
	}
	if s.Phase != "" {
		t.Errorf("Phase = %q, want it reset on a new task", s.Phase)
	}
}

func TestUpdatePhase(t *testing.T) {
	d := New(&bytes.Buffer{})
	for _, phase := range []string{"section", "expand", "category", "quantity"} {
		d.UpdatePhase(phase)
		if got := d.State().Phase; got != phase {
			t.Errorf("Phase = %q, want %q", got, phase)
		}
	}
}

func TestRecordOutcome(t *testing.T) {
	d := New(&bytes.Buffer{})
	d.RecordOutcome(true)
	d.RecordOutcome(false)
	d.RecordOutcome(true)

	s := d.State()
	if s.Selected != 2 || s.Failed != 1 {
		t.Errorf("counts = ✓%d ✗%d, want ✓2 ✗1", s.Selected, s.Failed)
	}
}

func TestUpdateStatus(t *testing.T) {
	d := New(&bytes.Buffer{})
	d.UpdateStatus(StatusCancelled)
	if got := d.State().Status; got != StatusCancelled {
		t.Errorf("Status = %v, want Cancelled", got)
	}
}

func TestPrintAbove(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf)
	d.UpdateTask(1, 2, "t01", "Match 1 · Category 2 ×1")

	d.PrintAbove("✗ %s", "Match 1")

	out := buf.String()
	if !strings.Contains(out, "✗ Match 1\n") {
		t.Errorf("output missing message line: %q", out)
	}
	if !strings.Contains(out, "Task 1/2: Match 1 · Category 2 ×1 │ - │ ✓ 0 ✗ 0") {
		t.Errorf("status line not redrawn: %q", out)
	}
}

func TestStartStop_RendersThenClears(t *testing.T) {
	defer goleak.VerifyNone(t)

	var buf bytes.Buffer
	d := New(&buf)
	d.UpdateTask(2, 4, "t02", "Match 2 · Category 1 ×3")
	d.UpdateStatus(StatusRunning)

	d.Start()
	d.Start()
	d.Stop()
	d.Stop()

	out := buf.String()
	if !strings.Contains(out, "Task 2/4: Match 2 · Category 1 ×3 │ - │ ✓ 0 ✗ 0") {
		t.Errorf("status line never rendered: %q", out)
	}
	if !strings.HasSuffix(out, "\r\033[K") {
		t.Errorf("status line not cleared on Stop: %q", out)
	}
	if d.State().StartTime.IsZero() {
		t.Error("Start did not record the start time")
	}
}
