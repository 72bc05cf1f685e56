package cpugovernor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/testutils/hostfake"
)

func TestSetGovernor(t *testing.T) {
	ctx := context.Background()
	fake := hostfake.New()
	governor := &SetGovernorTask{path: "/etc/default/cpufrequtils", governor: "performance"}

	needs, err := governor.NeedsExecution(ctx, fake.Host())
	require.NoError(t, err)
	assert.True(t, needs)

	require.NoError(t, governor.Execute(ctx, fake.Host()))
	assert.Equal(t, "GOVERNOR=\"performance\"\n", fake.Content("/etc/default/cpufrequtils"))

	needs, err = governor.NeedsExecution(ctx, fake.Host())
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestBuildTasks(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: Config{Path: "/etc/default/cpufrequtils", Governor: "performance"}},
		{name: "powersave", cfg: Config{Path: "/etc/default/cpufrequtils", Governor: "powersave"}},
		{name: "unknown governor", cfg: Config{Path: "/etc/default/cpufrequtils", Governor: "turbo"}, wantErr: true},
		{name: "injection", cfg: Config{Path: "/etc/default/cpufrequtils", Governor: "performance\"\nX=\""}, wantErr: true},
		{name: "relative path", cfg: Config{Path: "cpufrequtils", Governor: "performance"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildTasks(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSpecDefaults(t *testing.T) {
	steps, _, err := task.PlanSteps(nil, []task.Spec{Spec()})
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "set cpu governor default", steps[0].Name())
}
