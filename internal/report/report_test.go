package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pablasso/ticksel/internal/runlog"
	"github.com/pablasso/ticksel/internal/task"
)

type recordingNotifier struct {
	messages []string
	durs     []time.Duration
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, message string, d time.Duration) error {
	n.messages = append(n.messages, message)
	n.durs = append(n.durs, d)
	return n.err
}

type recordingSink struct {
	events []runlog.Event
	err    error
}

func (s *recordingSink) Write(events []runlog.Event) error {
	s.events = append(s.events, events...)
	return s.err
}

func ok(id string) Result {
	return Result{Task: task.Task{ID: id}, SectionFound: true, CategorySet: true, QuantitySet: true}
}

func TestResult_Succeeded(t *testing.T) {
	tests := []struct {
		name string
		r    Result
		want bool
	}{
		{"all phases", ok("t01"), true},
		{"no section", Result{CategorySet: true, QuantitySet: true}, false},
		{"no category", Result{SectionFound: true, QuantitySet: true}, false},
		{"no quantity", Result{SectionFound: true, CategorySet: true}, false},
		{"error despite flags", Result{SectionFound: true, CategorySet: true, QuantitySet: true, Err: errors.New("x")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Succeeded(); got != tt.want {
				t.Errorf("Succeeded() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	failed := Result{Task: task.Task{ID: "t02"}, SectionFound: true, Err: errors.New("timeout")}
	results := []Result{ok("t01"), failed, ok("t03")}
	results[0].Duration = time.Second
	results[2].Duration = 2 * time.Second

	s := Summarize("run-1", results, nil)

	if s.Total != 3 || s.Succeeded != 2 || s.Failed != 1 {
		t.Errorf("unexpected counts: total=%d succeeded=%d failed=%d", s.Total, s.Succeeded, s.Failed)
	}
	if s.Duration != 3*time.Second {
		t.Errorf("expected 3s total duration, got %v", s.Duration)
	}
	if got := s.Message(); got != "Selection complete! 2 selected, 1 failed." {
		t.Errorf("unexpected message: %q", got)
	}
	if f := s.Failures(); len(f) != 1 || f[0].Task.ID != "t02" {
		t.Errorf("unexpected failures: %+v", f)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize("run", nil, nil)
	if got := s.Message(); got != "Selection complete! 0 selected, 0 failed." {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestReporter_Report(t *testing.T) {
	first, second := &recordingNotifier{}, &recordingNotifier{}
	sink := &recordingSink{}
	events := []runlog.Event{{Event: runlog.EventRunStarted}, {Event: runlog.EventRunCompleted}}

	r := New().WithNotifier(first).WithNotifier(second).WithSink(sink).WithDismissAfter(2 * time.Second)
	err := r.Report(context.Background(), Summarize("run", []Result{ok("t01")}, events))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, n := range []*recordingNotifier{first, second} {
		if diff := cmp.Diff([]string{"Selection complete! 1 selected, 0 failed."}, n.messages); diff != "" {
			t.Errorf("notifier %d messages (-want +got):\n%s", i, diff)
		}
		if len(n.durs) != 1 || n.durs[0] != 2*time.Second {
			t.Errorf("notifier %d: expected 2s dismissal, got %v", i, n.durs)
		}
	}
	if diff := cmp.Diff(events, sink.events); diff != "" {
		t.Errorf("sink events (-want +got):\n%s", diff)
	}
}

func TestReporter_AttemptsEveryOutput(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("page closed")}
	working := &recordingNotifier{}
	sink := &recordingSink{err: errors.New("disk full")}

	err := New().WithSink(sink).WithNotifier(failing).WithNotifier(working).
		Report(context.Background(), Summarize("run", nil, nil))

	if err == nil {
		t.Fatal("expected joined error")
	}
	for _, want := range []string{"page closed", "disk full"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got: %v", want, err)
		}
	}
	if len(working.messages) != 1 {
		t.Error("expected later notifier to run after an earlier one failed")
	}
}

func TestTerminalNotifier_NotATerminal(t *testing.T) {
	var buf bytes.Buffer
	n := NewTerminalNotifier(&buf)

	start := time.Now()
	if err := n.Notify(context.Background(), "Selection complete! 3 selected, 0 failed.", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("expected Notify to return immediately when not on a terminal")
	}

	out := buf.String()
	if !strings.Contains(out, "Selection complete! 3 selected, 0 failed.") {
		t.Errorf("expected message in output, got:\n%s", out)
	}
	if strings.Contains(out, "\x1b[2K") {
		t.Error("expected no erase sequence outside a terminal")
	}
}

func TestTerminalNotifier_ErasesOnTerminal(t *testing.T) {
	var buf bytes.Buffer
	n := &TerminalNotifier{out: &buf, tty: true}

	if err := n.Notify(context.Background(), "done", 10*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[1A\x1b[2K") {
		t.Error("expected box to be erased")
	}

	buf.Reset()
	n.Persistent()
	if err := n.Notify(context.Background(), "done", 10*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "\x1b[2K") {
		t.Error("persistent box must not be erased")
	}
}
