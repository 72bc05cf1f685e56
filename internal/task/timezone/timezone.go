package timezone

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/task/taskutil"
)

const TaskKey = "timezone"

type Config struct {
	// Zone is an IANA name such as Europe/Oslo. There is no default.
	Zone string `yaml:"zone"`
}

func Spec() task.Spec {
	return task.SpecFor(TaskKey, "timezone.yaml", false, buildTasks)
}

func buildTasks(cfg Config) ([]task.Task, error) {
	zone := strings.TrimSpace(cfg.Zone)
	if zone == "" {
		taskutil.Warnf("no timezone configured, leaving the host timezone unchanged.")
		return nil, nil
	}
	return []task.Task{&SetTimezoneTask{zone: zone}}, nil
}

type SetTimezoneTask struct {
	zone string
}

func (t *SetTimezoneTask) Name() string {
	return "set timezone"
}

func (t *SetTimezoneTask) NeedsExecution(ctx context.Context, h *host.Host) (bool, error) {
	if err := validateZone(t.zone); err != nil {
		return false, err
	}
	current, err := h.Clock.Timezone(ctx)
	if err != nil {
		return false, err
	}
	if current == t.zone {
		return false, nil
	}
	taskutil.Warnf("host timezone %q differs from configured %q.", current, t.zone)
	return true, nil
}

func (t *SetTimezoneTask) Execute(ctx context.Context, h *host.Host) error {
	if err := validateZone(t.zone); err != nil {
		return err
	}
	return h.Clock.SetTimezone(ctx, t.zone)
}

// validateZone accepts only names present in the IANA database. Near misses
// like Norway/Oslo are rejected rather than corrected.
func validateZone(zone string) error {
	if zone == "Local" || strings.ContainsAny(zone, " \t\r\n'\"") {
		return fmt.Errorf("invalid timezone %q", zone)
	}
	if _, err := time.LoadLocation(zone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", zone, err)
	}
	return nil
}
