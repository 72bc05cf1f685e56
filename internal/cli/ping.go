package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tpodg/serverprep/internal/server"
	"github.com/tpodg/serverprep/internal/task"
)

const pingTimeout = 15 * time.Second

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify connection to servers",
	Long:  `Try to connect to all configured servers and execute a simple command to verify accessibility.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prepApp := getApp(cmd)
		prepApp.Logger.Info("Starting connection verification")

		only, err := cmd.Flags().GetStringSlice("only")
		if err != nil {
			return err
		}
		selected, err := selectServers(prepApp.Config, only)
		if err != nil {
			return &ExitError{Code: task.ExitConfig, Err: err}
		}

		servers := make([]server.Server, 0, len(selected))
		for _, sCfg := range selected {
			servers = append(servers, newSSHServer(sCfg))
		}

		if failed := verifyServers(cmd.Context(), prepApp.Logger, servers); failed > 0 {
			return &ExitError{Code: 1, Err: fmt.Errorf("%d of %d servers unreachable", failed, len(servers))}
		}
		return nil
	},
}

// verifyServers runs a trivial command on every server and returns how many
// could not be reached.
func verifyServers(ctx context.Context, logger *slog.Logger, servers []server.Server) int {
	failed := 0
	for _, srv := range servers {
		func() {
			ctx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()

			logger.Info("Checking server", "name", srv.ID(), "address", srv.Address())
			output, err := srv.Execute(ctx, "echo 'pong'")

			if err != nil {
				logger.Error("Verification failed", "server", srv.ID(), "error", err)
				failed++
				return
			}

			if strings.TrimSpace(output) == "pong" {
				logger.Info("Verification successful", "server", srv.ID())
			} else {
				logger.Warn("Verification partially successful (unexpected output)", "server", srv.ID(), "output", strings.TrimSpace(output))
			}
		}()
	}
	return failed
}

func init() {
	pingCmd.Flags().StringSlice("only", nil, "limit the check to these server names")
	rootCmd.AddCommand(pingCmd)
}
