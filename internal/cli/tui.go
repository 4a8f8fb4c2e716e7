package cli

import (
	"context"
	"errors"

	"github.com/pablasso/ticksel/internal/config"
	"github.com/pablasso/ticksel/internal/tui"
	"go.uber.org/zap"
)

// TUIOptions configure the terminal UI started by a bare `ticksel`.
type TUIOptions struct {
	ConfigPath string
	Page       PageFlags
	// LogFile receives the engine log. Without it nothing is logged.
	LogFile string
	Events  string

	Demo         bool
	DemoScenario string
	DemoSpeed    string
}

// RunTUI opens the page and runs the terminal UI until the user quits.
func RunTUI(opts TUIOptions) error {
	log := zap.NewNop()
	if opts.LogFile != "" {
		l, err := newLogger(false, opts.LogFile)
		if err != nil {
			return err
		}
		log = l
		defer log.Sync()
	}
	eventsPath = opts.Events

	if opts.Demo {
		d, err := newDemo(opts.DemoScenario, opts.DemoSpeed)
		if err != nil {
			return err
		}
		return tui.Run(tui.Options{
			Config: d.Config,
			Runner: demoRunner(d, log).forTUI(),
			Target: "demo page",
			Logger: log,
		})
	}

	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	release, err := lockTasks(path, log)
	if err != nil {
		return err
	}
	defer release()

	t, err := openTarget(context.Background(), opts.Page, log)
	if err != nil {
		return err
	}
	defer t.Close()

	var stopHotkey func() error
	err = tui.Run(tui.Options{
		Config: cfg,
		Runner: newRunner(cfg, t, log).forTUI(),
		Target: t.name,
		Logger: log,
		Ready: func(b *tui.Bridge) {
			if t.rod == nil {
				return
			}
			stop, err := t.rod.InstallHotkey(cfg.PageHotkey, func() { b.Trigger("page") })
			if err != nil {
				log.Warn("Failed to install page hotkey", zap.Error(err))
				return
			}
			stopHotkey = stop
		},
	})
	if stopHotkey != nil {
		err = errors.Join(err, stopHotkey())
	}
	return err
}
