package cli

import (
	"fmt"

	"github.com/pablasso/ticksel/internal/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file and list its tasks",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s is valid: %d tasks\n", configPath, len(cfg.Tasks))
	for i, t := range cfg.Tasks {
		fmt.Fprintf(out, "  %d. %s  (%s)\n", i+1, t.Label(cfg.Labels.Section, cfg.Labels.Category), t.ID)
	}
	return nil
}
