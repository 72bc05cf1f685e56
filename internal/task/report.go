package task

import (
	"context"
	"errors"
	"time"

	"github.com/tpodg/serverprep/internal/host"
)

// Status is the outcome of one step.
type Status int

const (
	StatusSuccess Status = iota
	StatusSkipped
	StatusFailed
	// StatusPending is only reported by dry runs for steps that would apply.
	StatusPending
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	case StatusPending:
		return "pending"
	default:
		return "unknown"
	}
}

// Result pairs a step with its outcome.
type Result struct {
	Step     string
	Critical bool
	Status   Status
	Err      error
	Duration time.Duration
}

// Reason returns the failure reason, or "" for non-failed results.
func (r Result) Reason() string {
	if r.Status != StatusFailed || r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

const (
	// ExitPrivilege is returned when the privilege check fails.
	ExitPrivilege = 77
	// ExitConfig is returned when configuration cannot be loaded or planned.
	ExitConfig = 78
	// ExitInterrupted is returned when the run was cancelled or ran out of time.
	ExitInterrupted = 130
	// Step exit codes are capped below the sysexits range.
	maxStepExitCode = 63
)

// Report is the ordered outcome record of one run against one host.
type Report struct {
	ID      string
	Target  string
	DryRun  bool
	Results []Result
	Aborted bool
	// FailedStep is the plan index of the critical step that aborted the
	// run, or -1.
	FailedStep int
	// Err is the cause of an abort that happened before any step ran.
	Err      error
	Started  time.Time
	Finished time.Time
}

// Counts tallies results per status.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, result := range r.Results {
		counts[result.Status]++
	}
	return counts
}

// Failed returns the results with StatusFailed.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, result := range r.Results {
		if result.Status == StatusFailed {
			failed = append(failed, result)
		}
	}
	return failed
}

// ExitCode maps the report to a process exit code: 0 when every critical
// step succeeded, ExitPrivilege when elevation is missing, ExitConfig for
// an invalid plan and the failing step's position otherwise.
func (r *Report) ExitCode() int {
	if !r.Aborted {
		return 0
	}
	if r.FailedStep >= 0 {
		return min(r.FailedStep+1, maxStepExitCode)
	}
	var privErr *host.PrivilegeError
	if errors.As(r.Err, &privErr) {
		return ExitPrivilege
	}
	if errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded) {
		return ExitInterrupted
	}
	return ExitConfig
}
