//go:build integration

package sshdconfig_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/task/banner"
	"github.com/tpodg/serverprep/internal/task/sshdconfig"
	"github.com/tpodg/serverprep/internal/testutils"
	tasktests "github.com/tpodg/serverprep/internal/testutils/task"
)

func TestDirectiveTask_Integration(t *testing.T) {
	ctx := context.Background()
	sshC := testutils.SetupSSHContainer(t, ctx, testutils.SSHContainerOptions{SudoAccess: true})

	// Wait a bit for the SSH server to be fully ready
	time.Sleep(2 * time.Second)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
	runner := task.NewRunner(logger)

	srv := sshC.Server("sshd-directive")
	tasktests.WaitForLogin(t, ctx, srv, sshC.User)
	h := host.NewShellHost(srv)

	steps := tasktests.PlanSteps(t, map[string]any{
		sshdconfig.TaskKey: map[string]any{
			"directives": map[string]any{"Banner": "/etc/issue.net"},
		},
	}, banner.Spec(), sshdconfig.Spec())

	tasktests.AssertStepsNeedExecution(t, ctx, h, steps)

	report := runner.Run(ctx, h, steps...)
	if report.Aborted {
		t.Fatalf("run aborted: %v %v", report.Err, report.Failed())
	}
	for _, result := range report.Results {
		if result.Status == task.StatusFailed {
			t.Fatalf("step %q failed: %s", result.Step, result.Reason())
		}
	}

	config := tasktests.RunCommand(t, ctx, srv, "sudo -n cat /etc/ssh/sshd_config")
	if !strings.Contains(config, "\nBanner /etc/issue.net\n") {
		t.Fatalf("expected Banner directive in sshd_config, got:\n%s", config)
	}
	issue := tasktests.RunCommand(t, ctx, srv, "cat /etc/issue.net")
	if !strings.Contains(issue, "Authorized access only") {
		t.Fatalf("expected banner text, got %q", issue)
	}

	tasktests.AssertStepsSatisfied(t, ctx, h, steps)

	second := runner.Run(ctx, h, steps...)
	for _, result := range second.Results {
		if result.Status != task.StatusSkipped {
			t.Fatalf("expected %q to be skipped on the second run, got %s", result.Step, result.Status)
		}
	}
	if after := tasktests.RunCommand(t, ctx, srv, "sudo -n cat /etc/ssh/sshd_config"); after != config {
		t.Fatal("expected sshd_config to be untouched by the second run")
	}
}
