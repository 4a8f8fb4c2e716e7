package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const defaultMaxLines = 500

// ActivityLog is a scrollable log of run activity. It follows new lines
// until the user scrolls up, and resumes following at the bottom.
type ActivityLog struct {
	viewport   viewport.Model
	lines      []string
	maxLines   int
	autoScroll bool
	width      int
}

// NewActivityLog creates an ActivityLog. maxLines bounds the history
// (0 uses the default of 500).
func NewActivityLog(width, height, maxLines int) ActivityLog {
	if maxLines <= 0 {
		maxLines = defaultMaxLines
	}
	vp := viewport.New(width, height)
	vp.SetContent("")
	return ActivityLog{
		viewport:   vp,
		maxLines:   maxLines,
		autoScroll: true,
		width:      width,
	}
}

// AddLine appends a line, dropping the oldest once the history is full.
func (a *ActivityLog) AddLine(line string) {
	a.lines = append(a.lines, line)
	if over := len(a.lines) - a.maxLines; over > 0 {
		a.lines = append(a.lines[:0], a.lines[over:]...)
	}
	a.refresh()
}

// Lines returns the buffered lines, oldest first.
func (a ActivityLog) Lines() []string {
	return append([]string(nil), a.lines...)
}

// SetSize updates the viewport dimensions.
func (a *ActivityLog) SetSize(width, height int) {
	a.width = width
	a.viewport.Width = width
	a.viewport.Height = height
	a.refresh()
}

// Update handles scroll keys. Scrolling up pauses following.
func (a ActivityLog) Update(msg tea.Msg) (ActivityLog, tea.Cmd) {
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "up", "k", "pgup":
			a.autoScroll = false
		case "down", "j", "pgdown":
			if a.viewport.AtBottom() {
				a.autoScroll = true
			}
		case "end", "G":
			a.autoScroll = true
		}
	}
	return a, cmd
}

// View renders the visible part of the log.
func (a ActivityLog) View() string {
	return a.viewport.View()
}

func (a *ActivityLog) refresh() {
	shown := make([]string, len(a.lines))
	for i, l := range a.lines {
		shown[i] = truncate(l, a.width)
	}
	a.viewport.SetContent(strings.Join(shown, "\n"))
	if a.autoScroll {
		a.viewport.GotoBottom()
	}
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
