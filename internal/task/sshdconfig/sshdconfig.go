package sshdconfig

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tpodg/serverprep/internal/host"
	"github.com/tpodg/serverprep/internal/sshd"
	"github.com/tpodg/serverprep/internal/task"
	"github.com/tpodg/serverprep/internal/task/taskutil"
)

const TaskKey = "sshd"

const configMode = 0o644

// Keywords sshd accepts in any case.
var caseInsensitiveValues = map[string]bool{
	"yes":                  true,
	"no":                   true,
	"prohibit-password":    true,
	"without-password":     true,
	"forced-commands-only": true,
}

// Directives that can lock the operator out when switched off.
var lockoutDirectives = map[string]bool{
	strings.ToLower(sshd.KeyPermitRootLogin):        true,
	strings.ToLower(sshd.KeyPasswordAuthentication): true,
	strings.ToLower(sshd.KeyKbdInteractiveAuth):     true,
}

type Config struct {
	ConfigPath string            `yaml:"config_path"`
	Directives map[string]string `yaml:"directives"`
}

func Spec() task.Spec {
	return task.SpecFor(TaskKey, "sshd.yaml", false, buildTasks)
}

func buildTasks(cfg Config) ([]task.Task, error) {
	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = sshd.DefaultConfigPath
	}
	if err := taskutil.ValidatePath("sshd config", configPath); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(cfg.Directives))
	for key := range cfg.Directives {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tasks := make([]task.Task, 0, len(keys))
	for _, key := range keys {
		value := strings.TrimSpace(cfg.Directives[key])
		if err := taskutil.ValidateIdentifier("sshd directive", key); err != nil {
			return nil, err
		}
		if value == "" {
			return nil, fmt.Errorf("sshd directive %s has no value", key)
		}
		if err := taskutil.ValidateSingleLine("sshd directive "+key, value); err != nil {
			return nil, err
		}
		if strings.EqualFold(key, sshd.KeyBanner) && value != "none" {
			if err := taskutil.ValidatePath("sshd banner", value); err != nil {
				return nil, err
			}
		}
		if lockoutDirectives[strings.ToLower(key)] && strings.EqualFold(value, sshd.ValueNo) {
			taskutil.Warnf("%s %s applies after ssh restarts, make sure key-based login works first.", key, value)
		}
		tasks = append(tasks, &DirectiveTask{configPath: configPath, key: key, value: value})
	}
	return tasks, nil
}

// DirectiveTask makes one sshd directive effective in the main config file.
type DirectiveTask struct {
	configPath string
	key        string
	value      string
}

func (t *DirectiveTask) Name() string {
	return "sshd directive: " + t.key
}

func (t *DirectiveTask) NeedsExecution(ctx context.Context, h *host.Host) (bool, error) {
	content, err := sshd.ReadConfig(ctx, h.Files, t.configPath)
	if err != nil {
		return false, err
	}
	ok, err := t.satisfied(content)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (t *DirectiveTask) Execute(ctx context.Context, h *host.Host) error {
	content, err := sshd.ReadConfig(ctx, h.Files, t.configPath)
	if err != nil {
		return err
	}
	if ok, err := t.satisfied(content); err != nil || ok {
		return err
	}
	return h.Files.WriteFile(ctx, t.configPath, sshd.SetDirective(content, t.key, t.value), configMode)
}

func (t *DirectiveTask) satisfied(content string) (bool, error) {
	current, ok, err := sshd.EffectiveValue(content, t.key)
	if err != nil {
		return false, err
	}
	return ok && sameValue(current, t.value), nil
}

// sameValue compares directive values. sshd matches its yes/no style
// keywords case-insensitively; anything else, like paths, must match exactly.
func sameValue(current, want string) bool {
	if caseInsensitiveValues[strings.ToLower(want)] {
		return strings.EqualFold(current, want)
	}
	return current == want
}
