package display

import (
	"github.com/pablasso/ticksel/internal/report"
	"github.com/pablasso/ticksel/internal/sequencer"
	"github.com/pablasso/ticksel/internal/task"
)

// Listener feeds sequencer callbacks into a Display.
type Listener struct {
	d            *Display
	sectionWord  string
	categoryWord string
}

var _ sequencer.Events = (*Listener)(nil)

// NewListener creates a Listener that labels tasks with the page's words.
func NewListener(d *Display, sectionWord, categoryWord string) *Listener {
	return &Listener{d: d, sectionWord: sectionWord, categoryWord: categoryWord}
}

func (l *Listener) OnRunStart(runID string, total int) {
	l.d.UpdateStatus(StatusRunning)
}

func (l *Listener) OnTaskStart(taskNum, total int, t task.Task) {
	l.d.UpdateTask(taskNum, total, t.ID, t.Label(l.sectionWord, l.categoryWord))
}

func (l *Listener) OnPhase(t task.Task, phase sequencer.Phase) {
	l.d.UpdatePhase(string(phase))
}

func (l *Listener) OnTaskComplete(r report.Result) {
	l.d.RecordOutcome(true)
}

func (l *Listener) OnTaskFailed(r report.Result) {
	l.d.RecordOutcome(false)
	l.d.PrintAbove("✗ %s: %v", r.Task.Label(l.sectionWord, l.categoryWord), r.Err)
}

func (l *Listener) OnRunComplete(s report.Summary) {
	if s.Failed > 0 {
		l.d.UpdateStatus(StatusFailed)
		return
	}
	l.d.UpdateStatus(StatusCompleted)
}
