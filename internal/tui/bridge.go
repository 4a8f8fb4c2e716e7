package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pablasso/ticksel/internal/report"
	"github.com/pablasso/ticksel/internal/sequencer"
	"github.com/pablasso/ticksel/internal/task"
)

// sender is satisfied by *tea.Program.
type sender interface {
	Send(msg tea.Msg)
}

// Bridge turns sequencer callbacks and report notifications into program
// messages. Messages sent before a program is attached are dropped.
type Bridge struct {
	mu           sync.Mutex
	out          sender
	sectionWord  string
	categoryWord string
}

var (
	_ sequencer.Events = (*Bridge)(nil)
	_ report.Notifier  = (*Bridge)(nil)
)

// NewBridge creates a Bridge that labels tasks with the page's words.
func NewBridge(sectionWord, categoryWord string) *Bridge {
	return &Bridge{sectionWord: sectionWord, categoryWord: categoryWord}
}

// Attach sets the program that receives messages.
func (b *Bridge) Attach(out sender) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out = out
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	out := b.out
	b.mu.Unlock()
	if out != nil {
		out.Send(msg)
	}
}

// Trigger requests a run. Safe to call from any goroutine.
func (b *Bridge) Trigger(source string) {
	b.send(TriggerMsg{Source: source})
}

func (b *Bridge) label(t task.Task) string {
	return t.Label(b.sectionWord, b.categoryWord)
}

func (b *Bridge) OnRunStart(runID string, total int) {
	b.send(RunStartedMsg{RunID: runID, Total: total})
}

func (b *Bridge) OnTaskStart(taskNum, total int, t task.Task) {
	b.send(TaskStartedMsg{TaskNum: taskNum, Total: total, TaskID: t.ID, Label: b.label(t)})
}

func (b *Bridge) OnPhase(t task.Task, phase sequencer.Phase) {
	b.send(PhaseMsg{TaskID: t.ID, Phase: string(phase)})
}

func (b *Bridge) OnTaskComplete(r report.Result) {
	b.send(TaskDoneMsg{
		TaskID:   r.Task.ID,
		OK:       true,
		Detail:   fmt.Sprintf("%s, %s", r.CategoryStrategy, r.QuantityStrategy),
		Duration: r.Duration,
	})
}

func (b *Bridge) OnTaskFailed(r report.Result) {
	detail := "failed"
	if r.Err != nil {
		detail = r.Err.Error()
	}
	b.send(TaskDoneMsg{TaskID: r.Task.ID, Detail: detail, Duration: r.Duration})
}

func (b *Bridge) OnRunComplete(s report.Summary) {
	b.send(RunDoneMsg{Summary: s})
}

// Notify shows message as a toast. It returns at once; the model dismisses
// the toast after d.
func (b *Bridge) Notify(_ context.Context, message string, d time.Duration) error {
	b.send(ToastMsg{Text: message, For: d})
	return nil
}
