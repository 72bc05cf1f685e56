package sysinfo

import (
	"context"
	"fmt"
	"strings"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/strutil"
	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/task/taskutil"
)

const TaskKey = "sysinfo"

const scriptMode = 0o755

type Config struct {
	Path  string `yaml:"path"`
	Title string `yaml:"title"`
	// Mounts lists extra mount points reported next to the root filesystem.
	Mounts []string `yaml:"mounts"`
}

func Spec() task.Spec {
	return task.SpecFor(TaskKey, "sysinfo.yaml", false, buildTasks)
}

func buildTasks(cfg Config) ([]task.Task, error) {
	if err := taskutil.ValidatePath("sysinfo script", cfg.Path); err != nil {
		return nil, err
	}
	if err := taskutil.ValidateSingleLine("sysinfo title", cfg.Title); err != nil {
		return nil, err
	}
	mounts := strutil.CleanList(cfg.Mounts)
	for _, mount := range mounts {
		if err := taskutil.ValidatePath("sysinfo mount", mount); err != nil {
			return nil, err
		}
	}

	title := strings.TrimSpace(cfg.Title)
	if title == "" {
		title = "System information"
	}
	script, err := renderScript(scriptData{Title: title, Mounts: mounts})
	if err != nil {
		return nil, fmt.Errorf("render sysinfo script: %w", err)
	}
	return []task.Task{&InstallScriptTask{path: cfg.Path, script: script}}, nil
}

// InstallScriptTask installs the login-time system summary.
type InstallScriptTask struct {
	path   string
	script string
}

func (t *InstallScriptTask) Name() string {
	return "install login system info"
}

func (t *InstallScriptTask) NeedsExecution(ctx context.Context, h *host.Host) (bool, error) {
	return taskutil.FileDiffers(ctx, h.Files, t.path, t.script)
}

func (t *InstallScriptTask) Execute(ctx context.Context, h *host.Host) error {
	return h.Files.WriteFile(ctx, t.path, t.script, scriptMode)
}
