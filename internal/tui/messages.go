package tui

import (
	"time"

	"github.com/pablasso/ticksel/internal/report"
)

// Messages sent from the run goroutine into the program.

// TriggerMsg asks for a run, e.g. from an in-page shortcut.
type TriggerMsg struct {
	Source string
}

// RunStartedMsg is sent once before the first task.
type RunStartedMsg struct {
	RunID string
	Total int
}

// TaskStartedMsg is sent when a task begins.
type TaskStartedMsg struct {
	TaskNum int
	Total   int
	TaskID  string
	Label   string
}

// PhaseMsg is sent when the current task moves to a new phase.
type PhaseMsg struct {
	TaskID string
	Phase  string
}

// TaskDoneMsg is sent when a task finished, successfully or not.
type TaskDoneMsg struct {
	TaskID   string
	OK       bool
	Detail   string
	Duration time.Duration
}

// RunDoneMsg is sent after the last task.
type RunDoneMsg struct {
	Summary report.Summary
}

// ToastMsg shows a notification for For.
type ToastMsg struct {
	Text string
	For  time.Duration
}

type toastExpiredMsg struct {
	seq int
}
