// Package runlog records what happened during a selection run.
package runlog

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Event kinds.
const (
	EventRunStarted       = "run_started"
	EventRunCompleted     = "run_completed"
	EventTaskStarted      = "task_started"
	EventTaskCompleted    = "task_completed"
	EventTaskFailed       = "task_failed"
	EventTaskPanic        = "task_panic"
	EventSectionFound     = "section_found"
	EventSectionMissing   = "section_missing"
	EventExpanded         = "expanded"
	EventCategoryAttempt  = "category_attempt"
	EventCategorySelected = "category_selected"
	EventCategoryTimeout  = "category_timeout"
	EventQuantitySet      = "quantity_set"
	EventQuantityFailed   = "quantity_failed"
)

// Event is a single run log entry.
type Event struct {
	Timestamp time.Time              `json:"timestamp"`
	Event     string                 `json:"event"`
	RunID     string                 `json:"run_id,omitempty"`
	TaskID    string                 `json:"task_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Log collects the events of one run and mirrors them to a zap logger.
// It is safe for concurrent use.
type Log struct {
	mu     sync.Mutex
	runID  string
	now    func() time.Time
	logger *zap.Logger
	events []Event
}

// New creates a Log for the given run.
func New(runID string) *Log {
	return &Log{
		runID:  runID,
		now:    time.Now,
		logger: zap.NewNop(),
	}
}

// WithClock sets the time source (useful for testing).
func (l *Log) WithClock(now func() time.Time) *Log {
	l.now = now
	return l
}

// WithLogger mirrors every recorded event to logger.
func (l *Log) WithLogger(logger *zap.Logger) *Log {
	l.logger = logger
	return l
}

// RunID returns the run this log belongs to.
func (l *Log) RunID() string {
	return l.runID
}

// Record appends an event. taskID may be empty for run-level events.
func (l *Log) Record(event, taskID string, data map[string]interface{}) {
	l.mu.Lock()
	e := Event{
		Timestamp: l.now(),
		Event:     event,
		RunID:     l.runID,
		TaskID:    taskID,
		Data:      data,
	}
	l.events = append(l.events, e)
	l.mu.Unlock()

	if ce := l.logger.Check(levelFor(event), event); ce != nil {
		ce.Write(fieldsFor(e)...)
	}
}

// Events returns a copy of everything recorded so far.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// RunStarted logs a run_started event.
func (l *Log) RunStarted(total int) {
	l.Record(EventRunStarted, "", map[string]interface{}{
		"total_tasks": total,
	})
}

// RunCompleted logs a run_completed event with summary statistics.
func (l *Log) RunCompleted(selected, failed int, duration time.Duration) {
	l.Record(EventRunCompleted, "", map[string]interface{}{
		"selected":    selected,
		"failed":      failed,
		"duration_ms": duration.Milliseconds(),
	})
}

// TaskFailed logs a task_failed event.
func (l *Log) TaskFailed(taskID, phase string, err error) {
	l.Record(EventTaskFailed, taskID, map[string]interface{}{
		"phase": phase,
		"error": err.Error(),
	})
}

func levelFor(event string) zapcore.Level {
	switch event {
	case EventTaskFailed, EventTaskPanic, EventSectionMissing, EventCategoryTimeout, EventQuantityFailed:
		return zapcore.WarnLevel
	case EventRunStarted, EventRunCompleted, EventTaskCompleted:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

func fieldsFor(e Event) []zap.Field {
	fields := make([]zap.Field, 0, len(e.Data)+2)
	if e.RunID != "" {
		fields = append(fields, zap.String("run_id", e.RunID))
	}
	if e.TaskID != "" {
		fields = append(fields, zap.String("task_id", e.TaskID))
	}
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, e.Data[k]))
	}
	return fields
}
