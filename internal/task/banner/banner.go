package banner

import (
	"context"
	"fmt"
	"strings"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/task/taskutil"
)

const TaskKey = "banner"

const bannerMode = 0o644

type Config struct {
	Path string `yaml:"path"`
	Text string `yaml:"text"`
}

func Spec() task.Spec {
	return task.SpecFor(TaskKey, "banner.yaml", true, buildTasks)
}

func buildTasks(cfg Config) ([]task.Task, error) {
	if err := taskutil.ValidatePath("banner", cfg.Path); err != nil {
		return nil, err
	}
	text := strings.TrimRight(cfg.Text, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("banner text cannot be empty")
	}
	return []task.Task{&WriteBannerTask{path: cfg.Path, content: text + "\n"}}, nil
}

// WriteBannerTask writes the pre-login banner shown by sshd.
type WriteBannerTask struct {
	path    string
	content string
}

func (t *WriteBannerTask) Name() string {
	return "write login banner"
}

func (t *WriteBannerTask) NeedsExecution(ctx context.Context, h *host.Host) (bool, error) {
	return taskutil.FileDiffers(ctx, h.Files, t.path, t.content)
}

func (t *WriteBannerTask) Execute(ctx context.Context, h *host.Host) error {
	return h.Files.WriteFile(ctx, t.path, t.content, bannerMode)
}
