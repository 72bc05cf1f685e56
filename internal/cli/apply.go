package cli

import (
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Provision the local host or the configured servers",
	Long: `Run every planned step in order. Steps that are already satisfied are
skipped, a failing critical step stops the run for that host.`,
	Args: cobra.NoArgs,
	RunE: runCommand(false),
}

func init() {
	addTargetFlags(applyCmd)
	rootCmd.AddCommand(applyCmd)
}
