package cli

import (
	"context"
	"errors"

	"github.com/pablasso/ticksel/internal/dom"
	"github.com/pablasso/ticksel/internal/dom/memdom"
	"github.com/pablasso/ticksel/internal/dom/rodpage"
	"github.com/pablasso/ticksel/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// PageFlags select the page a command drives.
type PageFlags struct {
	File       string
	URL        string
	ControlURL string
	Launch     bool
	Headless   bool
}

func addPageFlags(cmd *cobra.Command, f *PageFlags) {
	cmd.Flags().StringVar(&f.File, "page", "", "Drive a saved HTML file instead of a browser")
	cmd.Flags().StringVar(&f.URL, "url", "", "Page to open, or the address of the tab to pick")
	cmd.Flags().StringVar(&f.ControlURL, "control-url", "", "DevTools websocket of a running browser")
	cmd.Flags().BoolVar(&f.Launch, "launch", false, "Start a browser instead of attaching to one")
	cmd.Flags().BoolVar(&f.Headless, "headless", false, "Run a launched browser without a window")
}

func (f PageFlags) browser() bool {
	return f.URL != "" || f.ControlURL != "" || f.Launch
}

// target is an opened page plus whatever is needed to release it.
type target struct {
	page dom.Page
	name string

	// notifier shows the completion toast inside the page. Nil for files.
	notifier report.Notifier
	rod      *rodpage.Page
	close    func() error
}

func (t *target) Close() error {
	if t.close == nil {
		return nil
	}
	return t.close()
}

func openTarget(ctx context.Context, f PageFlags, logger *zap.Logger) (*target, error) {
	switch {
	case f.File != "" && f.browser():
		return nil, errors.New("--page cannot be combined with --url, --control-url or --launch")
	case f.File != "":
		p, err := memdom.Open(f.File)
		if err != nil {
			return nil, err
		}
		return &target{page: p, name: f.File}, nil
	case f.browser():
		s, err := rodpage.Connect(ctx, rodpage.Options{
			ControlURL: f.ControlURL,
			Launch:     f.Launch,
			Headless:   f.Headless,
			URL:        f.URL,
		}, logger)
		if err != nil {
			return nil, err
		}
		name := f.URL
		if name == "" {
			name = "browser tab"
		}
		return &target{
			page:     s.Page,
			name:     name,
			notifier: s.Page,
			rod:      s.Page,
			close:    s.Close,
		}, nil
	default:
		return nil, errors.New("no page given: pass --page <file.html>, --url <address> or --control-url <ws://...>")
	}
}
