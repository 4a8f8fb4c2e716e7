package cli

import (
	"fmt"

	"github.com/pablasso/ticksel/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample config file",
	Long:  "Write an annotated sample config to the --config path. An existing file is never overwritten.",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := config.WriteSample(configPath); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", configPath)
	fmt.Fprintln(out, "Edit the tasks, then check them with `ticksel validate`.")
	return nil
}
