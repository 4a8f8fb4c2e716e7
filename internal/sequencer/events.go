package sequencer

import (
	"github.com/pablasso/ticksel/internal/report"
	"github.com/pablasso/ticksel/internal/task"
)

// Events receives callbacks during a run.
// Implement this interface in the TUI to receive updates.
type Events interface {
	// OnRunStart is called once before the first task
	OnRunStart(runID string, total int)

	// OnTaskStart is called when a task begins
	OnTaskStart(taskNum, total int, t task.Task)

	// OnPhase is called when a task moves to a new phase
	OnPhase(t task.Task, phase Phase)

	// OnTaskComplete is called when every phase of a task succeeded
	OnTaskComplete(r report.Result)

	// OnTaskFailed is called when a task gave up
	OnTaskFailed(r report.Result)

	// OnRunComplete is called after the last task with the summary
	OnRunComplete(s report.Summary)
}

type noEvents struct{}

func (noEvents) OnRunStart(string, int) {}
func (noEvents) OnTaskStart(int, int, task.Task) {}
func (noEvents) OnPhase(task.Task, Phase) {}
func (noEvents) OnTaskComplete(report.Result) {}
func (noEvents) OnTaskFailed(report.Result) {}
func (noEvents) OnRunComplete(report.Summary) {}
