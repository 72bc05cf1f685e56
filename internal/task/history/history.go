package history

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/strutil"
	"github.com/tpodg/serverprep/internal/task"
)

const TaskKey = "history"

type Config struct {
	// Files are history file names relative to each account's home.
	Files []string `yaml:"files"`
}

func Spec() task.Spec {
	return task.SpecFor(TaskKey, "history.yaml", false, buildTasks)
}

func buildTasks(cfg Config) ([]task.Task, error) {
	files := strutil.CleanList(cfg.Files)
	if len(files) == 0 {
		return nil, nil
	}
	for _, name := range files {
		if strings.HasPrefix(name, "/") || strings.Contains(name, "..") || strings.ContainsAny(name, "\r\n") {
			return nil, fmt.Errorf("history file %q must be a plain path relative to the home directory", name)
		}
	}
	return []task.Task{&ClearHistoryTask{files: files}}, nil
}

// ClearHistoryTask empties the shell history of root and every login account
// so provisioning commands do not linger. It removes state and runs last.
type ClearHistoryTask struct {
	files []string
}

func (t *ClearHistoryTask) Name() string {
	return "clear shell history"
}

func (t *ClearHistoryTask) Destructive() bool {
	return true
}

func (t *ClearHistoryTask) NeedsExecution(ctx context.Context, h *host.Host) (bool, error) {
	pending, err := t.nonEmpty(ctx, h)
	if err != nil {
		return false, err
	}
	return len(pending) > 0, nil
}

func (t *ClearHistoryTask) Execute(ctx context.Context, h *host.Host) error {
	pending, err := t.nonEmpty(ctx, h)
	if err != nil {
		return err
	}
	for _, file := range pending {
		if err := h.Files.Truncate(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func (t *ClearHistoryTask) nonEmpty(ctx context.Context, h *host.Host) ([]string, error) {
	accounts, err := h.Accounts.LoginAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list login accounts: %w", err)
	}

	var pending []string
	for _, account := range accounts {
		for _, name := range t.files {
			file := path.Join(account.Home, name)
			hasContent, err := h.Files.HasContent(ctx, file)
			if err != nil {
				return nil, err
			}
			if hasContent {
				pending = append(pending, file)
			}
		}
	}
	return pending, nil
}
