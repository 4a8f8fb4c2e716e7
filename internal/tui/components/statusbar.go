package components

import (
	"strings"

	"github.com/pablasso/ticksel/internal/tui/styles"
)

// KeyHint is one entry of the help bar, e.g. {Key: "ctrl+s", Desc: "start"}.
type KeyHint struct {
	Key  string
	Desc string
}

// StatusBar renders a bottom help bar showing contextual key hints.
type StatusBar struct{}

// NewStatusBar creates a new StatusBar instance.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// Render returns the status bar for the given width. Hints are joined with
// " • " and the result is padded to fill the width.
func (s StatusBar) Render(width int, hints []KeyHint) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		if h.Desc == "" {
			parts = append(parts, h.Key)
			continue
		}
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return styles.StatusBarStyle.Width(width).Render(strings.Join(parts, " • "))
}
