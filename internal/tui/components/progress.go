package components

import (
	"fmt"
	"strings"
)

const (
	selectedChar = "■"
	failedChar   = "▪"
	pendingChar  = "□"
)

// Progress renders run progress like: ■■■▪□□□□ 2/5
// Selected tasks fill first, failed ones follow, the rest stay empty.
type Progress struct {
	Selected int
	Failed   int
	Total    int
	Width    int // character width of the bar portion
}

// NewProgress creates a new Progress instance.
func NewProgress(selected, failed, total, width int) Progress {
	return Progress{
		Selected: selected,
		Failed:   failed,
		Total:    total,
		Width:    width,
	}
}

// View returns the rendered progress bar string.
func (p Progress) View() string {
	if p.Total <= 0 || p.Width <= 0 {
		return ""
	}

	selected := clamp(p.Selected, 0, p.Total)
	failed := clamp(p.Failed, 0, p.Total-selected)
	done := selected + failed

	okCells := (selected * p.Width) / p.Total
	doneCells := (done * p.Width) / p.Total
	// A failure always shows, even when it rounds to nothing.
	if failed > 0 && doneCells == okCells && doneCells < p.Width {
		doneCells++
	}

	bar := strings.Repeat(selectedChar, okCells) +
		strings.Repeat(failedChar, doneCells-okCells) +
		strings.Repeat(pendingChar, p.Width-doneCells)

	return fmt.Sprintf("%s %d/%d", bar, done, p.Total)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
