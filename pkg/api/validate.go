package api

import (
	"fmt"
	"slices"
	"strings"
)

var validStepTypes = map[string]bool{
	StepTypeBootConfig:     true,
	StepTypeBootPostConfig: true,
	StepTypeGenFstab:       true,
	StepTypeGenImg:         true,
	StepTypeMakeAB:         true,
	StepTypeOptions:        true,
}

var validBootloaders = map[string]bool{
	BootloaderGrub:   true,
	BootloaderRefind: true,
	BootloaderNone:   true,
}

// Validate checks the job file for errors.
//
// Missing step sections are not an error here: a step that needs its section
// reports that itself when it runs.
func (j *JobFile) Validate() error {
	if len(j.Jobs) == 0 {
		return fmt.Errorf("job file has no jobs")
	}

	if err := j.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	names := make(map[string]int)
	for i, step := range j.Jobs {
		if step.Name == "" {
			return fmt.Errorf("job %d: name is required", i)
		}
		if prev, exists := names[step.Name]; exists {
			return fmt.Errorf("job %d: duplicate job name %q (first defined at job %d)", i, step.Name, prev)
		}
		names[step.Name] = i

		if !validStepTypes[step.Type] {
			return fmt.Errorf("job %q: unknown type %q", step.Name, step.Type)
		}

		if err := validateStepConfig(step); err != nil {
			return fmt.Errorf("job %q: %w", step.Name, err)
		}
	}

	return nil
}

// Validate checks the run settings.
func (s Settings) Validate() error {
	switch s.CommandEnv {
	case "", CommandEnvHost, CommandEnvTarget:
		return nil
	default:
		return fmt.Errorf("commandEnv %q is not valid (valid: %s, %s)", s.CommandEnv, CommandEnvHost, CommandEnvTarget)
	}
}

func validateStepConfig(step StepConfig) error {
	switch step.Type {
	case StepTypeBootConfig, StepTypeBootPostConfig:
		return validateBootloaderConfig(step.Bootloader)
	case StepTypeMakeAB:
		return validateImageEntries(step.MakeAB)
	case StepTypeOptions:
		return validateOptionsConfig(step.Options)
	}
	return nil
}

func validateBootloaderConfig(cfg *BootloaderConfig) error {
	if cfg == nil {
		return nil
	}
	if cfg.Kind != "" && !validBootloaders[strings.ToLower(cfg.Kind)] {
		return fmt.Errorf("bootloader.kind %q is not valid (valid: %s)", cfg.Kind, strings.Join(sortedKeys(validBootloaders), ", "))
	}
	switch cfg.OnUnsupported {
	case "", OnUnsupportedFallback, OnUnsupportedFail:
	default:
		return fmt.Errorf("bootloader.onUnsupported %q is not valid (valid: %s, %s)", cfg.OnUnsupported, OnUnsupportedFallback, OnUnsupportedFail)
	}
	if cfg.Timeout != nil && *cfg.Timeout < 0 {
		return fmt.Errorf("bootloader.timeout must not be negative")
	}
	return nil
}

func validateImageEntries(entries []ImageEntry) error {
	for i, e := range entries {
		if e.File == "" {
			return fmt.Errorf("make-ab entry %d: file is required", i)
		}
		if e.Size == "" {
			return fmt.Errorf("make-ab entry %d: size is required", i)
		}
	}
	return nil
}

func validateOptionsConfig(cfg *OptionsConfig) error {
	if cfg == nil {
		return nil
	}
	for i, g := range cfg.Groups {
		if err := validateOptionGroup(g); err != nil {
			return fmt.Errorf("options group %d: %w", i, err)
		}
	}
	return nil
}

func validateOptionGroup(g OptionGroup) error {
	if g.Name == "" {
		return fmt.Errorf("name is required")
	}
	for i, o := range g.Options {
		if o.Name == "" {
			return fmt.Errorf("group %q: option %d: name is required", g.Name, i)
		}
	}
	for _, sub := range g.Subgroups {
		if err := validateOptionGroup(sub); err != nil {
			return fmt.Errorf("group %q: %w", g.Name, err)
		}
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
