package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pablasso/ticksel/internal/config"
	"github.com/spf13/cobra"
)

var runPage PageFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the task list once against a page",
	Long: `Run every task in the config once, in order, against the given page and
print a summary. Exits non-zero if any task failed.

Examples:
  ticksel run --page saved.html
  ticksel run --control-url ws://127.0.0.1:9222/devtools/browser/...
  ticksel run --launch --url https://tickets.example.com/match/12`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	addPageFlags(runCmd, &runPage)
}

func runRun(cmd *cobra.Command, args []string) error {
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

	t, err := openTarget(ctx, runPage, logger)
	if err != nil {
		return err
	}
	defer t.Close()

	s := runInTerminal(ctx, cmd.OutOrStdout(), newRunner(cfg, t, logger))
	if s.Failed > 0 {
		return fmt.Errorf("%d of %d tasks failed", s.Failed, s.Total)
	}
	return nil
}
