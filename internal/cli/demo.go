package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pablasso/ticksel/internal/demo"
	"github.com/pablasso/ticksel/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	demoScenario string
	demoSpeed    string
	demoTUI      bool
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the task list against a built-in tournament page",
	Long: `Run a built-in task list against a simulated tournament page, no browser needed.

Scenarios:
  success  Every task can be satisfied (default)
  flaky    One section renders its seats late, forcing the engine to poll
  fail     A missing section and a missing category

Speeds:
  fast     50ms per page settle
  normal   250ms per page settle (default)
  slow     700ms per page settle`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().StringVar(&demoScenario, "scenario", string(demo.ScenarioSuccess),
		"Demo scenario: success, flaky, fail")
	demoCmd.Flags().StringVar(&demoSpeed, "speed", string(demo.SpeedNormal),
		"Page speed: fast, normal, slow")
	demoCmd.Flags().BoolVar(&demoTUI, "tui", false, "Show the run in the terminal UI")
}

func runDemo(cmd *cobra.Command, args []string) error {
	d, err := newDemo(demoScenario, demoSpeed)
	if err != nil {
		return err
	}
	if demoTUI {
		// Log lines would tear the alternate screen.
		return tui.Run(tui.Options{
			Config: d.Config,
			Runner: demoRunner(d, zap.NewNop()).forTUI(),
			Target: "demo page",
			Logger: zap.NewNop(),
		})
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// A failing scenario is still a successful demo.
	runInTerminal(ctx, cmd.OutOrStdout(), demoRunner(d, logger))
	return nil
}

func newDemo(scenario, speed string) (*demo.Demo, error) {
	sc, err := demo.ParseScenario(scenario)
	if err != nil {
		return nil, err
	}
	sp, err := demo.ParseSpeed(speed)
	if err != nil {
		return nil, err
	}
	return demo.New(sc, sp)
}

func demoRunner(d *demo.Demo, logger *zap.Logger) *runner {
	return newRunner(d.Config, &target{page: d.Page, name: "demo page"}, logger)
}
