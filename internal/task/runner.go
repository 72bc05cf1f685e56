package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tpodg/serverprep/internal/host"
)

// DefaultStepTimeout bounds a single step, precondition check included.
const DefaultStepTimeout = 10 * time.Minute

// Observer is notified as soon as a step finishes.
type Observer interface {
	StepFinished(target string, index int, result Result)
}

// Runner is responsible for executing steps on a host. It is not safe to run
// two runners against the same host at the same time.
type Runner struct {
	logger      *slog.Logger
	observer    Observer
	stepTimeout time.Duration
}

type RunnerOption func(*Runner)

// WithObserver registers an observer for step progress.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) {
		r.observer = o
	}
}

// WithStepTimeout overrides DefaultStepTimeout. Non-positive values are ignored.
func WithStepTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.stepTimeout = d
		}
	}
}

// NewRunner creates a new Runner with the given logger.
func NewRunner(logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:      logger,
		stepTimeout: DefaultStepTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes steps on a host in order.
// Privilege is verified once up front. For each step, it first checks if it
// needs execution; satisfied steps are skipped. A failing critical step stops
// the run, other failures are recorded and the run continues.
func (r *Runner) Run(ctx context.Context, h *host.Host, steps ...Step) *Report {
	report := r.begin(ctx, h, false, steps)
	if report.Aborted {
		return r.finish(report)
	}

	for i, step := range steps {
		if r.cancelled(ctx, report, "") {
			break
		}

		result := r.runStep(ctx, h, step)
		report.Results = append(report.Results, result)
		r.notify(h.ID, i, result)

		if result.Status != StatusFailed {
			continue
		}
		if r.cancelled(ctx, report, result.Step) {
			break
		}
		if step.Critical {
			r.logger.Error("Critical step failed, aborting", "task", result.Step, "server", h.ID, "error", result.Err)
			report.Aborted = true
			report.FailedStep = i
			break
		}
		r.logger.Warn("Step failed, continuing", "task", result.Step, "server", h.ID, "error", result.Err)
	}

	return r.finish(report)
}

// Plan runs only the precondition checks and reports which steps would apply.
// Cancellation stops it the same way it stops Run.
func (r *Runner) Plan(ctx context.Context, h *host.Host, steps ...Step) *Report {
	report := r.begin(ctx, h, true, steps)
	if report.Aborted {
		return r.finish(report)
	}

	for i, step := range steps {
		if r.cancelled(ctx, report, "") {
			break
		}

		start := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.stepTimeout)
		needsExec, err := step.Task.NeedsExecution(stepCtx, h)
		cancel()

		result := Result{Step: step.Name(), Critical: step.Critical, Duration: time.Since(start)}
		switch {
		case err != nil:
			result.Status = StatusFailed
			result.Err = fmt.Errorf("failed to check if task %q needs execution: %w", result.Step, err)
		case needsExec:
			result.Status = StatusPending
		default:
			result.Status = StatusSkipped
		}
		report.Results = append(report.Results, result)
		r.notify(h.ID, i, result)

		if result.Status == StatusFailed && r.cancelled(ctx, report, result.Step) {
			break
		}
	}

	return r.finish(report)
}

// cancelled marks the report aborted when ctx is done.
func (r *Runner) cancelled(ctx context.Context, report *Report, step string) bool {
	err := ctx.Err()
	if err == nil {
		return false
	}
	if step != "" {
		r.logger.Warn("Run cancelled", "task", step, "server", report.Target, "error", err)
	} else {
		r.logger.Warn("Run cancelled", "server", report.Target, "error", err)
	}
	report.Aborted = true
	report.Err = err
	return true
}

func (r *Runner) begin(ctx context.Context, h *host.Host, dryRun bool, steps []Step) *Report {
	report := &Report{
		ID:         uuid.NewString(),
		Target:     h.ID,
		DryRun:     dryRun,
		FailedStep: -1,
		Started:    time.Now(),
	}
	r.logger.Info("Starting run", "run", report.ID, "server", h.ID, "steps", len(steps), "dry_run", dryRun)

	if err := ValidateSteps(steps); err != nil {
		r.logger.Error("Invalid plan", "server", h.ID, "error", err)
		report.Aborted = true
		report.Err = err
		return report
	}

	if err := h.Privilege.Check(ctx); err != nil {
		r.logger.Error("Privilege check failed", "server", h.ID, "error", err)
		report.Aborted = true
		report.Err = err
		return report
	}
	return report
}

func (r *Runner) finish(report *Report) *Report {
	report.Finished = time.Now()
	counts := report.Counts()
	r.logger.Info("Run finished",
		"run", report.ID,
		"server", report.Target,
		"aborted", report.Aborted,
		"success", counts[StatusSuccess],
		"skipped", counts[StatusSkipped],
		"failed", counts[StatusFailed],
		"duration", report.Finished.Sub(report.Started),
	)
	return report
}

func (r *Runner) runStep(ctx context.Context, h *host.Host, step Step) (result Result) {
	name := step.Name()
	result = Result{Step: name, Critical: step.Critical}
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
	}()

	stepCtx, cancel := context.WithTimeout(ctx, r.stepTimeout)
	defer cancel()

	r.logger.Debug("Processing task", "task", name, "server", h.ID)

	needsExec, err := step.Task.NeedsExecution(stepCtx, h)
	if err != nil {
		return r.failure(stepCtx, result, fmt.Errorf("failed to check if task %q needs execution: %w", name, err))
	}
	if !needsExec {
		r.logger.Debug("Task is already satisfied", "task", name, "server", h.ID)
		result.Status = StatusSkipped
		return result
	}

	r.logger.Debug("Applying task", "task", name, "server", h.ID)
	if err := step.Task.Execute(stepCtx, h); err != nil {
		var notFound *host.ServiceNotFoundError
		if errors.As(err, &notFound) {
			r.logger.Info("Service not present, skipping", "task", name, "service", notFound.Service, "server", h.ID)
			result.Status = StatusSkipped
			return result
		}
		return r.failure(stepCtx, result, fmt.Errorf("failed to execute task %q: %w", name, err))
	}

	r.logger.Debug("Task applied successfully", "task", name, "server", h.ID)
	result.Status = StatusSuccess
	return result
}

func (r *Runner) failure(stepCtx context.Context, result Result, err error) Result {
	if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s: %w", r.stepTimeout, err)
	}
	result.Status = StatusFailed
	result.Err = err
	return result
}

func (r *Runner) notify(target string, index int, result Result) {
	if r.observer != nil {
		r.observer.StepFinished(target, index, result)
	}
}
