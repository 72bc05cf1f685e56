package services

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

func TestRestartPresentService(t *testing.T) {
	ctx := context.Background()
	fake := hostfake.New()
	fake.Units["ssh"] = true
	restart := &RestartTask{service: "ssh"}

	needs, err := restart.NeedsExecution(ctx, fake.Host())
	require.NoError(t, err)
	assert.True(t, needs)
	require.NoError(t, restart.Execute(ctx, fake.Host()))
	assert.Equal(t, []string{"ssh"}, fake.Restarts)
}

func TestRestartAbsentService(t *testing.T) {
	ctx := context.Background()
	fake := hostfake.New()
	restart := &RestartTask{service: "cpufrequtils"}

	needs, err := restart.NeedsExecution(ctx, fake.Host())
	require.NoError(t, err)
	assert.False(t, needs)

	err = restart.Execute(ctx, fake.Host())
	var notFound *host.ServiceNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "cpufrequtils", notFound.Service)
}

func TestBuildTasks(t *testing.T) {
	tasks, err := buildTasks(Config{Restart: []string{"ssh", "ssh", "nginx.service"}})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "restart service: ssh", tasks[0].Name())
	assert.Equal(t, "restart service: nginx.service", tasks[1].Name())

	_, err = buildTasks(Config{Restart: []string{"ssh && reboot"}})
	require.Error(t, err)
}

func TestSpecDefaults(t *testing.T) {
	steps, _, err := task.PlanSteps(nil, []task.Spec{Spec()})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	for _, step := range steps {
		assert.False(t, step.Critical)
	}
}
