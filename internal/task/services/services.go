package services

import (
	"context"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/strutil"
	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/task/taskutil"
)

const TaskKey = "services"

type Config struct {
	Restart []string `yaml:"restart"`
}

func Spec() task.Spec {
	return task.SpecFor(TaskKey, "services.yaml", false, buildTasks)
}

func buildTasks(cfg Config) ([]task.Task, error) {
	units := strutil.CleanList(cfg.Restart)
	tasks := make([]task.Task, 0, len(units))
	for _, unit := range units {
		if err := taskutil.ValidateIdentifier("service", unit); err != nil {
			return nil, err
		}
		tasks = append(tasks, &RestartTask{service: unit})
	}
	return tasks, nil
}

// RestartTask restarts a unit so configuration written earlier in the run
// takes effect. Hosts without the unit skip it.
type RestartTask struct {
	service string
}

func (t *RestartTask) Name() string {
	return "restart service: " + t.service
}

func (t *RestartTask) NeedsExecution(ctx context.Context, h *host.Host) (bool, error) {
	return h.Services.Exists(ctx, t.service)
}

func (t *RestartTask) Execute(ctx context.Context, h *host.Host) error {
	return h.Services.Restart(ctx, t.service)
}
