package sequencer

import (
	"errors"
	"fmt"
)

// Failure kinds. Every task failure wraps exactly one of these.
var (
	// ErrNotFound means the section could not be located.
	ErrNotFound = errors.New("not found")
	// ErrTimeout means the category control never appeared while polling.
	ErrTimeout = errors.New("timed out")
	// ErrActionFailed means an action on a located element did not succeed.
	ErrActionFailed = errors.New("action failed")
)

// Phase names a step of a task.
type Phase string

// Task phases, in order.
const (
	PhaseSection  Phase = "section"
	PhaseExpand   Phase = "expand"
	PhaseCategory Phase = "category"
	PhaseQuantity Phase = "quantity"
)

// TaskError describes why a task failed.
type TaskError struct {
	Kind   error
	Phase  Phase
	TaskID string
	Err    error
}

func (e *TaskError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("task %s: %s: %v", e.TaskID, e.Phase, e.Kind)
	}
	return fmt.Sprintf("task %s: %s: %v: %v", e.TaskID, e.Phase, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func taskErr(kind error, phase Phase, taskID string, err error) *TaskError {
	return &TaskError{Kind: kind, Phase: phase, TaskID: taskID, Err: err}
}
