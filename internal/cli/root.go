package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tpodg/serverprep/internal/app"
	"github.com/tpodg/serverprep/internal/config"
	"github.com/tpodg/serverprep/internal/task"
)

type contextKey string

const appKey contextKey = "app"

// ExitError carries the process exit code of a finished command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

var rootCmd = &cobra.Command{
	Use:   "serverprep",
	Short: "serverprep prepares a fresh Debian or Ubuntu host for self-hosting",
	Long: `serverprep applies an ordered set of idempotent configuration steps to a
host: package installation, timezone, login banner, sshd directives, CPU
governor, TLS minimums, a login system summary, service restarts and shell
history clearing. Every step reports success, skipped or failed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return &ExitError{Code: task.ExitConfig, Err: fmt.Errorf("loading config: %w", err)}
		}

		prepApp := app.New(cfg, verbose)
		ctx := context.WithValue(cmd.Context(), appKey, prepApp)
		cmd.SetContext(ctx)

		return nil
	},
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, "Error:", exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}

func init() {
	rootCmd.PersistentFlags().String("config", "", fmt.Sprintf("config file (default is $HOME/%s)", config.DefaultConfigFileName))
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("metrics-file", "", "write run metrics in Prometheus text format to this file")
}

func getApp(cmd *cobra.Command) *app.App {
	if a, ok := cmd.Context().Value(appKey).(*app.App); ok {
		return a
	}
	return nil
}
