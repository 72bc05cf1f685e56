package cpugovernor

import (
	"context"
	"fmt"
	"slices"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/task/taskutil"
)

const TaskKey = "cpu_governor"

const defaultsMode = 0o644

var knownGovernors = []string{"conservative", "ondemand", "performance", "powersave", "schedutil", "userspace"}

type Config struct {
	Path     string `yaml:"path"`
	Governor string `yaml:"governor"`
}

func Spec() task.Spec {
	return task.SpecFor(TaskKey, "cpu_governor.yaml", false, buildTasks)
}

func buildTasks(cfg Config) ([]task.Task, error) {
	if err := taskutil.ValidatePath("cpufrequtils defaults", cfg.Path); err != nil {
		return nil, err
	}
	if !slices.Contains(knownGovernors, cfg.Governor) {
		return nil, fmt.Errorf("unknown cpu governor %q", cfg.Governor)
	}
	return []task.Task{&SetGovernorTask{path: cfg.Path, governor: cfg.Governor}}, nil
}

// SetGovernorTask sets the governor cpufrequtils applies at boot.
type SetGovernorTask struct {
	path     string
	governor string
}

func (t *SetGovernorTask) Name() string {
	return "set cpu governor default"
}

func (t *SetGovernorTask) content() string {
	return fmt.Sprintf("GOVERNOR=%q\n", t.governor)
}

func (t *SetGovernorTask) NeedsExecution(ctx context.Context, h *host.Host) (bool, error) {
	return taskutil.FileDiffers(ctx, h.Files, t.path, t.content())
}

func (t *SetGovernorTask) Execute(ctx context.Context, h *host.Host) error {
	return h.Files.WriteFile(ctx, t.path, t.content(), defaultsMode)
}
