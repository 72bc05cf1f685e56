package task

import (
	"context"
	"fmt"

	"github.com/tpodg/serverprep/internal/host"
)

// Task represents a single idempotent unit of configuration work.
type Task interface {
	// Name returns a human-readable name for the task.
	Name() string
	// NeedsExecution checks if the task needs to be executed on the host.
	// It should return true if the task should be performed, false if the state is already as desired.
	NeedsExecution(ctx context.Context, h *host.Host) (bool, error)
	// Execute performs the task on the host.
	Execute(ctx context.Context, h *host.Host) error
}

// Destructive is implemented by tasks that remove state and therefore must
// run after every other step.
type Destructive interface {
	Destructive() bool
}

// Step is a task placed in a plan.
type Step struct {
	Task Task
	// Critical steps abort the run when they fail.
	Critical bool
}

func (s Step) Name() string {
	return s.Task.Name()
}

func (s Step) Destructive() bool {
	d, ok := s.Task.(Destructive)
	return ok && d.Destructive()
}

// Handler is a function that creates one or more tasks from a piece of state.
type Handler func(state any) ([]Task, error)

// Builder ties a state key to a handler.
type Builder struct {
	Key     string
	Handler Handler
}

// ValidateSteps checks the ordering rules of a plan: step names are unique
// and a destructive step can only come last.
func ValidateSteps(steps []Step) error {
	seen := make(map[string]struct{}, len(steps))
	for i, step := range steps {
		if step.Task == nil {
			return fmt.Errorf("step %d has no task", i+1)
		}
		name := step.Name()
		if name == "" {
			return fmt.Errorf("step %d has no name", i+1)
		}
		if _, exists := seen[name]; exists {
			return fmt.Errorf("duplicate step name: %s", name)
		}
		seen[name] = struct{}{}
		if step.Destructive() && i != len(steps)-1 {
			return fmt.Errorf("destructive step %q must be the last step", name)
		}
	}
	return nil
}
