package packages

import (
	"context"
	"fmt"
	"strings"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/strutil"
	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/task/taskutil"
)

const TaskKey = "packages"

type Config struct {
	Install []string `yaml:"install"`
	// Update refreshes the package index before installing.
	Update *bool `yaml:"update"`
}

func Spec() task.Spec {
	return task.SpecFor(TaskKey, "packages.yaml", true, buildTasks)
}

func buildTasks(cfg Config) ([]task.Task, error) {
	names := strutil.CleanList(cfg.Install)
	if len(names) == 0 {
		return nil, nil
	}
	for _, name := range names {
		if err := taskutil.ValidateIdentifier("package", name); err != nil {
			return nil, err
		}
	}
	update := true
	if cfg.Update != nil {
		update = *cfg.Update
	}
	return []task.Task{&InstallTask{packages: names, update: update}}, nil
}

// InstallTask installs the configured packages that are missing.
type InstallTask struct {
	packages []string
	update   bool
}

func (t *InstallTask) Name() string {
	return "install packages"
}

func (t *InstallTask) NeedsExecution(ctx context.Context, h *host.Host) (bool, error) {
	missing, err := h.Packages.Missing(ctx, t.packages...)
	if err != nil {
		return false, err
	}
	return len(missing) > 0, nil
}

func (t *InstallTask) Execute(ctx context.Context, h *host.Host) error {
	missing, err := h.Packages.Missing(ctx, t.packages...)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}

	if t.update {
		if err := h.Packages.Refresh(ctx); err != nil {
			return err
		}
	}
	if err := h.Packages.Install(ctx, missing...); err != nil {
		return err
	}

	still, err := h.Packages.Missing(ctx, missing...)
	if err != nil {
		return err
	}
	if len(still) > 0 {
		return &host.PackageManagerError{
			Op:       "install",
			Packages: still,
			Err:      fmt.Errorf("still missing after install: %s", strings.Join(still, ", ")),
		}
	}
	return nil
}
