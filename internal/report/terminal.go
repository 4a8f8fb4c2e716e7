package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/pablasso/ticksel/internal/dom"
)

var toastStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("10")).
	Bold(true).
	Padding(0, 2)

// TerminalNotifier prints the message in a box. On a terminal the box is
// erased once the dismiss duration has passed, unless it is persistent.
type TerminalNotifier struct {
	mu         sync.Mutex
	out        io.Writer
	tty        bool
	persistent bool
}

// NewTerminalNotifier creates a notifier writing to out.
func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &TerminalNotifier{out: out, tty: tty}
}

// Persistent keeps the box on screen instead of erasing it.
func (n *TerminalNotifier) Persistent() *TerminalNotifier {
	n.persistent = true
	return n
}

// Notify prints the box. When it will be erased, Notify blocks until then
// or until ctx is done.
func (n *TerminalNotifier) Notify(ctx context.Context, message string, d time.Duration) error {
	box := toastStyle.Render(message)

	n.mu.Lock()
	_, err := fmt.Fprintln(n.out, box)
	n.mu.Unlock()
	if err != nil {
		return err
	}

	if !n.tty || n.persistent || d <= 0 {
		return nil
	}

	waitErr := dom.Sleep(ctx, d)

	n.mu.Lock()
	defer n.mu.Unlock()
	lines := strings.Count(box, "\n") + 1
	fmt.Fprint(n.out, strings.Repeat("\x1b[1A\x1b[2K", lines))
	return waitErr
}
