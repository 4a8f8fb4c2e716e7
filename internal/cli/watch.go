package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pablasso/ticksel/internal/config"
	"github.com/pablasso/ticksel/internal/report"
	"github.com/pablasso/ticksel/internal/trigger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchPage PageFlags

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the task list each time the in-page hotkey is pressed",
	Long: `Attach to a browser tab, install the Ctrl/Cmd+Shift hotkey from the config and
wait. Each press runs the task list once. A press during a run is ignored.
Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	addPageFlags(watchCmd, &watchPage)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPage.File != "" {
		return errors.New("watch needs a browser page (--url, --control-url or --launch)")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	release, err := lockTasks(configPath, logger)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	t, err := openTarget(ctx, watchPage, logger)
	if err != nil {
		return err
	}
	defer t.Close()

	out := cmd.OutOrStdout()
	r := newRunner(cfg, t, logger)
	term := report.NewTerminalNotifier(out)

	var gate trigger.Gate
	fire := func() {
		err := gate.TryStart(func() {
			logger.Info("Run triggered from page")
			s := r.execute(ctx, nil)
			r.deliver(ctx, s, term)
		})
		if errors.Is(err, trigger.ErrBusy) {
			logger.Info("Run already in progress, trigger ignored")
		}
	}

	stop, err := t.rod.InstallHotkey(cfg.PageHotkey, fire)
	if err != nil {
		return err
	}
	defer func() {
		if err := stop(); err != nil {
			logger.Debug("Failed to remove hotkey", zap.Error(err))
		}
	}()

	fmt.Fprintf(out, "Watching %s. Press Ctrl+Shift+%s in the page to run %d tasks, Ctrl+C here to stop.\n",
		t.name, strings.ToUpper(cfg.PageHotkey), len(cfg.Tasks))

	<-ctx.Done()
	gate.Wait()
	return nil
}
