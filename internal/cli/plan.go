package cli

import (
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show which steps would change the host",
	Long:  `Run only the precondition checks of every planned step. Nothing on the host is modified.`,
	Args:  cobra.NoArgs,
	RunE:  runCommand(true),
}

func init() {
	addTargetFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}
