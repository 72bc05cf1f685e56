package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tpodg/serverprep/internal/app"
	"github.com/tpodg/serverprep/internal/report"
	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/task/catalog"
	"github.com/tpodg/serverprep/internal/task/taskutil"
)

type runOptions struct {
	remote      bool
	only        []string
	dryRun      bool
	metricsFile string
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("servers", false, "run against the servers in the config file instead of the local host")
	cmd.Flags().StringSlice("only", nil, "with --servers, limit the run to these server names")
}

func runOptionsFrom(cmd *cobra.Command, dryRun bool) (runOptions, error) {
	opts := runOptions{dryRun: dryRun}
	var err error
	if opts.remote, err = cmd.Flags().GetBool("servers"); err != nil {
		return opts, err
	}
	if opts.only, err = cmd.Flags().GetStringSlice("only"); err != nil {
		return opts, err
	}
	if opts.metricsFile, err = cmd.Flags().GetString("metrics-file"); err != nil {
		return opts, err
	}
	return opts, nil
}

func runCommand(dryRun bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		opts, err := runOptionsFrom(cmd, dryRun)
		if err != nil {
			return err
		}
		prepApp := getApp(cmd)
		targets, err := resolveTargets(prepApp.Config, opts.remote, opts.only)
		if err != nil {
			return &ExitError{Code: task.ExitConfig, Err: err}
		}
		return runTargets(cmd.Context(), prepApp, targets, opts, cmd.OutOrStdout())
	}
}

// runTargets provisions every target in order. Each target is attempted even
// after an earlier one failed; the first non-zero exit code wins.
func runTargets(ctx context.Context, prepApp *app.App, targets []target, opts runOptions, out io.Writer) error {
	printer := report.NewPrinter(out)
	runner := task.NewRunner(prepApp.Logger,
		task.WithObserver(printer),
		task.WithStepTimeout(prepApp.Config.StepTimeout),
	)

	exitCode := 0
	var reports []*task.Report
	for _, t := range targets {
		if ctx.Err() != nil {
			exitCode = firstNonZero(exitCode, task.ExitInterrupted)
			break
		}

		steps, err := planSteps(prepApp.Logger, t)
		if err != nil {
			prepApp.Logger.Error("Planning failed", "server", t.host.ID, "error", err)
			exitCode = firstNonZero(exitCode, task.ExitConfig)
			continue
		}

		printer.Header(t.host.ID, opts.dryRun)
		var rep *task.Report
		if opts.dryRun {
			rep = runner.Plan(ctx, t.host, steps...)
		} else {
			rep = runner.Run(ctx, t.host, steps...)
		}
		printer.Summary(rep)

		reports = append(reports, rep)
		exitCode = firstNonZero(exitCode, rep.ExitCode())
	}

	if opts.metricsFile != "" {
		if err := report.WriteMetrics(opts.metricsFile, reports...); err != nil {
			prepApp.Logger.Error("Writing metrics failed", "path", opts.metricsFile, "error", err)
		}
	}

	if exitCode != 0 {
		return &ExitError{Code: exitCode}
	}
	return nil
}

func planSteps(logger *slog.Logger, t target) ([]task.Step, error) {
	steps, unknown, err := task.PlanSteps(t.tasks, catalog.Builtins())
	if err != nil {
		return nil, err
	}
	for _, key := range unknown {
		taskutil.Warnf("ignoring unknown task %q for %s.", key, t.host.ID)
	}
	logger.Debug("Planned steps", "server", t.host.ID, "steps", len(steps))
	return steps, nil
}

func firstNonZero(current, next int) int {
	if current != 0 {
		return current
	}
	return next
}
