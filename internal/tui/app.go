// Package tui is the interactive front end: it arms a hotkey, runs the task
// list on demand and shows per-task progress and the completion toast.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pablasso/ticksel/internal/config"
	"github.com/pablasso/ticksel/internal/trigger"
	"github.com/pablasso/ticksel/internal/tui/components"
	"github.com/pablasso/ticksel/internal/tui/styles"
	"go.uber.org/zap"
)

// Minimum terminal dimensions for the layout.
const (
	MinTerminalWidth  = 60
	MinTerminalHeight = 15
)

type runState int

const (
	stateArmed runState = iota
	stateRunning
	stateStopping
)

type rowStatus int

const (
	rowPending rowStatus = iota
	rowRunning
	rowSelected
	rowFailed
)

type taskRow struct {
	id     string
	label  string
	status rowStatus
	phase  string
	detail string
}

// Model is the Bubble Tea model for the armed/running screen.
type Model struct {
	state  runState
	cfg    *config.Config
	runner Runner
	target string
	bridge *Bridge
	gate   *trigger.Gate
	cancel context.CancelFunc
	logger *zap.Logger

	rows     []taskRow
	current  int // 1-indexed
	selected int
	failed   int
	runID    string
	runs     int

	spinner   spinner.Model
	activity  components.ActivityLog
	statusBar components.StatusBar

	toast    string
	toastSeq int

	width  int
	height int
}

// Run starts the TUI and blocks until the user quits. An active run is
// cancelled and waited for before Run returns.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.bridge.Attach(p)
	if opts.Ready != nil {
		opts.Ready(m.bridge)
	}

	final, err := p.Run()
	if fm, ok := final.(Model); ok && fm.cancel != nil {
		fm.cancel()
	}
	m.bridge.Attach(nil)
	m.gate.Wait()
	return err
}

// New creates the model. The returned model shares its bridge and gate
// with every copy Bubble Tea makes of it.
func New(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := Model{
		state:     stateArmed,
		cfg:       opts.Config,
		runner:    opts.Runner,
		target:    opts.Target,
		bridge:    NewBridge(opts.Config.Labels.Section, opts.Config.Labels.Category),
		gate:      &trigger.Gate{},
		logger:    logger,
		spinner:   s,
		activity:  components.NewActivityLog(80, 5, 0),
		statusBar: components.NewStatusBar(),
	}
	m.resetRows()
	return m
}

// Bridge returns the bridge that feeds this model.
func (m Model) Bridge() *Bridge {
	return m.bridge
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateActivitySize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case TriggerMsg:
		return m.trigger(msg.Source)

	case spinner.TickMsg:
		if m.state == stateArmed {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case RunStartedMsg:
		m.runID = msg.RunID
		m.activity.AddLine(fmt.Sprintf("Run %s started: %d tasks", shortID(msg.RunID), msg.Total))
		return m, nil

	case TaskStartedMsg:
		m.current = msg.TaskNum
		if r := m.row(msg.TaskNum); r != nil {
			r.status = rowRunning
			r.label = msg.Label
			r.phase = ""
		}
		return m, nil

	case PhaseMsg:
		if r := m.row(m.current); r != nil && r.id == msg.TaskID {
			r.phase = msg.Phase
		}
		return m, nil

	case TaskDoneMsg:
		r := m.row(m.current)
		if r != nil && r.id == msg.TaskID {
			r.phase = ""
			r.detail = msg.Detail
		}
		if msg.OK {
			m.selected++
			if r != nil {
				r.status = rowSelected
			}
			return m, nil
		}
		m.failed++
		if r != nil {
			r.status = rowFailed
			m.activity.AddLine(fmt.Sprintf("✗ %s: %s", r.label, msg.Detail))
		}
		return m, nil

	case RunDoneMsg:
		stopped := m.state == stateStopping
		m.state = stateArmed
		m.cancel = nil
		m.current = 0
		line := fmt.Sprintf("%s (%s)", msg.Summary.Message(), msg.Summary.Duration.Round(time.Millisecond))
		if stopped {
			line = "Stopped. " + line
		}
		m.activity.AddLine(line)
		return m, nil

	case ToastMsg:
		m.toast = msg.Text
		m.toastSeq++
		seq := m.toastSeq
		d := msg.For
		if d <= 0 {
			d = m.cfg.NotifyFor
		}
		return m, tea.Tick(d, func(time.Time) tea.Msg {
			return toastExpiredMsg{seq: seq}
		})

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == m.cfg.Hotkey {
		return m.trigger("keyboard")
	}

	switch key {
	case "ctrl+c":
		if m.state == stateRunning {
			m.state = stateStopping
			m.activity.AddLine("Stopping after the current step...")
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		if m.state == stateStopping {
			return m, nil
		}
		return m, tea.Quit
	case "q":
		if m.state == stateArmed {
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.activity, cmd = m.activity.Update(msg)
	return m, cmd
}

// trigger starts a run unless one is already active.
func (m Model) trigger(source string) (tea.Model, tea.Cmd) {
	if m.runner == nil {
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	runner, bridge := m.runner, m.bridge
	err := m.gate.TryStart(func() {
		defer cancel()
		runner(ctx, bridge, bridge)
	})
	if err != nil {
		cancel()
		m.logger.Debug("Trigger ignored", zap.String("source", source), zap.Error(err))
		m.activity.AddLine("Run already in progress")
		return m, nil
	}

	m.logger.Info("Run triggered", zap.String("source", source))
	m.state = stateRunning
	m.cancel = cancel
	m.runs++
	m.selected, m.failed, m.current = 0, 0, 0
	m.resetRows()
	return m, m.spinner.Tick
}

func (m *Model) resetRows() {
	m.rows = make([]taskRow, len(m.cfg.Tasks))
	for i, t := range m.cfg.Tasks {
		m.rows[i] = taskRow{
			id:    t.ID,
			label: t.Label(m.cfg.Labels.Section, m.cfg.Labels.Category),
		}
	}
}

func (m *Model) row(taskNum int) *taskRow {
	if taskNum < 1 || taskNum > len(m.rows) {
		return nil
	}
	return &m.rows[taskNum-1]
}

func (m *Model) updateActivitySize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// Header(3) + progress(2) + rows + status bar(2) + borders(2).
	h := m.height - len(m.rows) - 9
	if h < 3 {
		h = 3
	}
	m.activity.SetSize(m.width-4, h)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.width < MinTerminalWidth || m.height < MinTerminalHeight {
		return m.renderTerminalTooSmall()
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("ticksel"))
	b.WriteString("\n")
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	bar := components.NewProgress(m.selected, m.failed, len(m.rows), 20).View()
	b.WriteString(bar)
	b.WriteString("\n\n")

	for i, r := range m.rows {
		b.WriteString(m.renderRow(i+1, r))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.BoxStyle.Copy().Padding(0, 1).Width(m.width - 2).Render(m.activity.View()))
	b.WriteString("\n")

	if m.toast != "" {
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Right, styles.ToastStyle.Render(m.toast)))
		b.WriteString("\n")
	}

	b.WriteString(m.statusBar.Render(m.width, m.hints()))
	return b.String()
}

func (m Model) renderHeader() string {
	target := m.target
	if target == "" {
		target = "page"
	}
	switch m.state {
	case stateRunning:
		return fmt.Sprintf("%s Running on %s", m.spinner.View(), target)
	case stateStopping:
		return fmt.Sprintf("%s Stopping...", m.spinner.View())
	}
	return styles.SubtleStyle.Render(fmt.Sprintf("Armed on %s. Press %s to start.", target, m.cfg.Hotkey))
}

func (m Model) renderRow(num int, r taskRow) string {
	var indicator string
	style := styles.SubtleStyle
	switch r.status {
	case rowRunning:
		indicator = m.spinner.View()
		style = styles.SelectedStyle
	case rowSelected:
		indicator = "✓"
		style = styles.SuccessStyle
	case rowFailed:
		indicator = "✗"
		style = styles.ErrorStyle
	default:
		indicator = "○"
	}

	line := fmt.Sprintf("%s %d. %s", indicator, num, r.label)
	if r.phase != "" {
		line += " · " + r.phase
	}
	return style.Render(line)
}

func (m Model) hints() []components.KeyHint {
	switch m.state {
	case stateRunning:
		return []components.KeyHint{{Key: "ctrl+c", Desc: "stop"}, {Key: "↑↓", Desc: "scroll"}}
	case stateStopping:
		return []components.KeyHint{{Key: "stopping..."}}
	}
	return []components.KeyHint{{Key: m.cfg.Hotkey, Desc: "start"}, {Key: "↑↓", Desc: "scroll"}, {Key: "q", Desc: "quit"}}
}

func (m Model) renderTerminalTooSmall() string {
	msg := fmt.Sprintf("Terminal too small\n\nMinimum: %dx%d\nCurrent: %dx%d",
		MinTerminalWidth, MinTerminalHeight, m.width, m.height)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, styles.ErrorStyle.Render(msg))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
