package task

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/server"
	"github.com/tpodg/serverprep/internal/task"
)

const (
	loginWaitTimeout  = 5 * time.Second
	loginWaitInterval = 200 * time.Millisecond
)

func PlanSteps(t *testing.T, overrides map[string]any, specs ...task.Spec) []task.Step {
	t.Helper()

	steps, unknown, err := task.PlanSteps(overrides, specs)
	if err != nil {
		t.Fatalf("PlanSteps failed: %v", err)
	}
	if len(unknown) != 0 {
		t.Fatalf("unexpected unknown keys: %v", unknown)
	}
	if len(steps) == 0 {
		t.Fatalf("expected at least one step, got %d", len(steps))
	}
	return steps
}

func RunCommand(t *testing.T, ctx context.Context, srv server.Server, command string) string {
	t.Helper()

	output, err := srv.Execute(ctx, command)
	if err != nil {
		t.Fatalf("command %q failed: %v\nOutput: %s", command, err, output)
	}
	return output
}

func AssertStepsSatisfied(t *testing.T, ctx context.Context, h *host.Host, steps []task.Step) {
	t.Helper()

	for _, step := range steps {
		needs, err := step.Task.NeedsExecution(ctx, h)
		if err != nil {
			t.Fatalf("NeedsExecution failed for %q: %v", step.Name(), err)
		}
		if needs {
			t.Fatalf("expected step %q to be satisfied", step.Name())
		}
	}
}

func AssertStepsNeedExecution(t *testing.T, ctx context.Context, h *host.Host, steps []task.Step) {
	t.Helper()

	for _, step := range steps {
		needs, err := step.Task.NeedsExecution(ctx, h)
		if err != nil {
			t.Fatalf("NeedsExecution failed for %q: %v", step.Name(), err)
		}
		if needs {
			return
		}
	}
	t.Fatal("expected at least one step to need execution")
}

func WaitForLogin(t *testing.T, ctx context.Context, srv server.Server, expectedUser string) {
	t.Helper()

	deadline := time.Now().Add(loginWaitTimeout)
	for {
		output, err := srv.Execute(ctx, "id -un")
		if err == nil {
			user := strings.TrimSpace(output)
			if user != expectedUser {
				t.Fatalf("expected login user %q, got %q", expectedUser, user)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected login for %q to work, last error: %v", expectedUser, err)
		}
		time.Sleep(loginWaitInterval)
	}
}
