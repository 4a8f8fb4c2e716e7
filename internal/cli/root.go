package cli

import (
	"github.com/pablasso/ticksel/internal/config"
	"github.com/pablasso/ticksel/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool
	eventsPath string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "ticksel",
	Short: "Select ticket categories and quantities on a live page",
	Long: `Ticksel walks a list of tasks against a ticketing page. Each task finds a
section, selects a category inside it and sets the quantity, without breaking
when the page re-renders or reveals its options late.`,
	Version:      version.Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose, "")
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.SetVersionTemplate(version.String() + "\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every engine step")
	rootCmd.PersistentFlags().StringVar(&eventsPath, "events", "", "Append each run's events to this JSONL file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(demoCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
