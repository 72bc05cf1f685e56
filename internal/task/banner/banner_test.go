package banner

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

func TestWriteBanner(t *testing.T) {
	ctx := context.Background()
	fake := hostfake.New()
	fake.SetFile("/etc/issue.net", "Ubuntu 24.04 LTS\n")
	banner := &WriteBannerTask{path: "/etc/issue.net", content: "Authorized access only.\n"}

	needs, err := banner.NeedsExecution(ctx, fake.Host())
	require.NoError(t, err)
	assert.True(t, needs)

	require.NoError(t, banner.Execute(ctx, fake.Host()))
	assert.Equal(t, "Authorized access only.\n", fake.Content("/etc/issue.net"))

	needs, err = banner.NeedsExecution(ctx, fake.Host())
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestWriteBannerFailure(t *testing.T) {
	fake := hostfake.New()
	fake.WriteErr["/etc/issue.net"] = errors.New("read-only file system")
	banner := &WriteBannerTask{path: "/etc/issue.net", content: "hi\n"}

	err := banner.Execute(context.Background(), fake.Host())
	var writeErr *host.ConfigWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "/etc/issue.net", writeErr.Path)
}

func TestBuildTasks(t *testing.T) {
	tasks, err := buildTasks(Config{Path: "/etc/issue.net", Text: "hello\n\n"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "hello\n", tasks[0].(*WriteBannerTask).content)

	_, err = buildTasks(Config{Path: "/etc/issue.net", Text: "  \n"})
	require.Error(t, err)
	_, err = buildTasks(Config{Path: "issue.net", Text: "hello"})
	require.Error(t, err)
}

func TestSpecDefaults(t *testing.T) {
	steps, _, err := task.PlanSteps(nil, []task.Spec{Spec()})
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.True(t, steps[0].Critical)
	assert.Contains(t, steps[0].Task.(*WriteBannerTask).content, "Authorized access only")
}
