package packages

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/testutils/hostfake"
)

func TestBuildTasks(t *testing.T) {
	tasks, err := buildTasks(Config{Install: []string{" curl", "curl", "", "htop"}})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, []string{"curl", "htop"}, tasks[0].(*InstallTask).packages)
	assert.True(t, tasks[0].(*InstallTask).update)

	tasks, err = buildTasks(Config{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = buildTasks(Config{Install: []string{"curl; rm -rf /"}})
	require.Error(t, err)
}

func TestInstallTask(t *testing.T) {
	ctx := context.Background()
	fake := hostfake.New()
	fake.Installed["curl"] = true
	h := fake.Host()
	install := &InstallTask{packages: []string{"curl", "htop"}, update: true}

	needs, err := install.NeedsExecution(ctx, h)
	require.NoError(t, err)
	assert.True(t, needs)

	require.NoError(t, install.Execute(ctx, h))
	assert.Equal(t, 1, fake.Refreshes)
	assert.Equal(t, [][]string{{"htop"}}, fake.Installs)

	needs, err = install.NeedsExecution(ctx, h)
	require.NoError(t, err)
	assert.False(t, needs, "second run must be satisfied")
}

func TestInstallTaskWithoutUpdate(t *testing.T) {
	fake := hostfake.New()
	install := &InstallTask{packages: []string{"htop"}, update: false}

	require.NoError(t, install.Execute(context.Background(), fake.Host()))
	assert.Zero(t, fake.Refreshes)
}

func TestInstallTaskFailure(t *testing.T) {
	fake := hostfake.New()
	fake.InstallErr = errors.New("E: Unable to locate package htop")
	install := &InstallTask{packages: []string{"htop"}, update: true}

	err := install.Execute(context.Background(), fake.Host())
	var pkgErr *host.PackageManagerError
	require.ErrorAs(t, err, &pkgErr)
	assert.Equal(t, []string{"htop"}, pkgErr.Packages)
}

func TestSpecDefaults(t *testing.T) {
	steps, unknown, err := task.PlanSteps(nil, []task.Spec{Spec()})
	require.NoError(t, err)
	assert.Empty(t, unknown)
	require.Len(t, steps, 1)
	assert.True(t, steps[0].Critical)
	assert.Contains(t, steps[0].Task.(*InstallTask).packages, "ca-certificates")
}
