package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/testutils/hostfake"
)

const sshdConfig = "Include /etc/ssh/sshd_config.d/*.conf\nPort 22\nUsePAM yes\n"

const opensslConfig = "openssl_conf = openssl_init\n\n[openssl_init]\nssl_conf = ssl_sect\n\n[ssl_sect]\nsystem_default = system_default_sect\n\n[system_default_sect]\nCipherString = DEFAULT:@SECLEVEL=2\n"

func freshHost() *hostfake.Fake {
	fake := hostfake.New()
	fake.Zone = "Etc/UTC"
	fake.Units["ssh"] = true
	fake.SetFile("/etc/ssh/sshd_config", sshdConfig)
	fake.SetFile("/etc/ssl/openssl.cnf", opensslConfig)
	fake.SetFile("/root/.bash_history", "apt-get update\n")
	return fake
}

func TestBuiltinsPlan(t *testing.T) {
	steps, unknown, err := task.PlanSteps(map[string]any{
		"timezone": map[string]any{"zone": "Europe/Oslo"},
	}, Builtins())
	require.NoError(t, err)
	assert.Empty(t, unknown)
	require.NoError(t, task.ValidateSteps(steps))

	var names []string
	for _, step := range steps {
		names = append(names, step.Name())
	}
	assert.Equal(t, []string{
		"install packages",
		"set timezone",
		"write login banner",
		"sshd directive: Banner",
		"set cpu governor default",
		"enforce tls minimums",
		"install login system info",
		"restart service: ssh",
		"restart service: cpufrequtils",
		"clear shell history",
	}, names)
	assert.True(t, steps[len(steps)-1].Destructive())
}

func TestBuiltinsRunTwice(t *testing.T) {
	ctx := context.Background()
	steps, _, err := task.PlanSteps(map[string]any{
		"timezone": map[string]any{"zone": "Europe/Oslo"},
	}, Builtins())
	require.NoError(t, err)

	fake := freshHost()
	runner := task.NewRunner(slog.New(slog.NewTextHandler(io.Discard, nil)))

	first := runner.Run(ctx, fake.Host(), steps...)
	require.False(t, first.Aborted, "first run: %v", first.Failed())
	assert.Equal(t, 0, first.ExitCode())
	assert.Len(t, first.Results, len(steps))
	assert.Contains(t, fake.Content("/etc/ssh/sshd_config"), "Banner /etc/issue.net\n")
	assert.Empty(t, fake.Content("/root/.bash_history"))

	second := runner.Run(ctx, fake.Host(), steps...)
	require.False(t, second.Aborted)
	for _, result := range second.Results {
		assert.Contains(t, []task.Status{task.StatusSkipped, task.StatusSuccess}, result.Status, result.Step)
	}
	counts := second.Counts()
	assert.Equal(t, 1, counts[task.StatusSuccess], "only the ssh restart applies again")
}

func TestBuiltinsUnprivileged(t *testing.T) {
	steps, _, err := task.PlanSteps(nil, Builtins())
	require.NoError(t, err)

	fake := freshHost()
	fake.Privileged = false
	report := task.NewRunner(slog.New(slog.NewTextHandler(io.Discard, nil))).Run(context.Background(), fake.Host(), steps...)

	assert.True(t, report.Aborted)
	assert.Empty(t, report.Results)
	assert.Equal(t, task.ExitPrivilege, report.ExitCode())
	var privErr *host.PrivilegeError
	assert.ErrorAs(t, report.Err, &privErr)
	assert.Empty(t, fake.Writes)
}
