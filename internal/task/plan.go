package task

import (
	"embed"
	"fmt"
	"path"
	"sort"

	"github.com/goccy/go-yaml"
)

//go:embed defaults
var defaultsFS embed.FS

const (
	// Keys understood for every task in addition to its own settings.
	keyCritical = "critical"
	keyEnabled  = "enabled"
)

// Spec describes a configurable task family.
type Spec struct {
	Key          string
	DefaultsPath string
	Builder      Builder
	// Critical is the default failure policy of the steps built by this spec.
	Critical bool
}

func SpecFor[T any](key, defaultsPath string, critical bool, build func(T) ([]Task, error)) Spec {
	return Spec{
		Key:          key,
		DefaultsPath: defaultsPath,
		Builder:      BuilderFor(key, build),
		Critical:     critical,
	}
}

// PlanSteps merges defaults with overrides and builds steps in spec order.
// It returns the override keys no spec knows about so callers can decide how
// to handle them.
func PlanSteps(overrides map[string]any, specs []Spec) ([]Step, []string, error) {
	specIndex := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if _, exists := specIndex[spec.Key]; exists {
			return nil, nil, fmt.Errorf("duplicate task key: %s", spec.Key)
		}
		specIndex[spec.Key] = struct{}{}
	}

	unknownSet := make(map[string]struct{})
	for key := range overrides {
		if _, ok := specIndex[key]; !ok {
			unknownSet[key] = struct{}{}
		}
	}

	var steps []Step
	for _, spec := range specs {
		defaults, err := loadDefaults(spec)
		if err != nil {
			return nil, nil, err
		}
		merged := mergeConfig(defaults, overrides[spec.Key])
		if merged == nil {
			continue
		}

		enabled, critical, err := stepPolicy(spec, merged)
		if err != nil {
			return nil, nil, err
		}
		if !enabled {
			continue
		}

		tasks, err := spec.Builder.Handler(merged)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create tasks for %s: %w", spec.Key, err)
		}
		for _, t := range tasks {
			steps = append(steps, Step{Task: t, Critical: critical})
		}
	}

	return steps, setToSortedSlice(unknownSet), nil
}

// MergeOverrides deep-merges override on top of base.
func MergeOverrides(base, override map[string]any) map[string]any {
	if base == nil {
		if override == nil {
			return nil
		}
		return copyMap(override)
	}
	if override == nil {
		return copyMap(base)
	}
	return mergeMaps(base, override)
}

func stepPolicy(spec Spec, merged any) (bool, bool, error) {
	enabled, critical := true, spec.Critical
	settings, ok := merged.(map[string]any)
	if !ok {
		return enabled, critical, nil
	}
	if raw, ok := settings[keyEnabled]; ok {
		value, ok := raw.(bool)
		if !ok {
			return false, false, fmt.Errorf("%s.%s must be a boolean", spec.Key, keyEnabled)
		}
		enabled = value
	}
	if raw, ok := settings[keyCritical]; ok {
		value, ok := raw.(bool)
		if !ok {
			return false, false, fmt.Errorf("%s.%s must be a boolean", spec.Key, keyCritical)
		}
		critical = value
	}
	return enabled, critical, nil
}

func loadDefaults(spec Spec) (map[string]any, error) {
	if spec.DefaultsPath == "" {
		return nil, nil
	}

	defaultsPath := path.Join("defaults", spec.DefaultsPath)
	data, err := defaultsFS.ReadFile(defaultsPath)
	if err != nil {
		return nil, fmt.Errorf("read defaults for %s: %w", spec.Key, err)
	}
	if len(data) == 0 {
		return map[string]any{}, nil
	}

	var defaults map[string]any
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return nil, fmt.Errorf("parse defaults for %s: %w", spec.Key, err)
	}
	if defaults == nil {
		defaults = map[string]any{}
	}
	return defaults, nil
}

func mergeConfig(defaults map[string]any, override any) any {
	if override == nil {
		if defaults == nil {
			return nil
		}
		return copyMap(defaults)
	}

	overrideMap, ok := override.(map[string]any)
	if !ok {
		return override
	}
	if defaults == nil {
		return copyMap(overrideMap)
	}
	return mergeMaps(defaults, overrideMap)
}

func mergeMaps(base, override map[string]any) map[string]any {
	out := copyMap(base)
	for key, value := range override {
		overrideMap, ok := value.(map[string]any)
		if !ok {
			out[key] = value
			continue
		}

		baseMap, ok := out[key].(map[string]any)
		if !ok {
			out[key] = copyMap(overrideMap)
			continue
		}
		out[key] = mergeMaps(baseMap, overrideMap)
	}
	return out
}

func copyMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func setToSortedSlice(values map[string]struct{}) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for key := range values {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
