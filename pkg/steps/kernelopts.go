package steps

import (
	"github.com/systemstart/install-jobs/pkg/api"
	"github.com/systemstart/install-jobs/pkg/options"
)

type kernelOptionsStep struct {
	name string
	cfg  *api.OptionsConfig
}

// NewKernelOptionsStep creates the step that resolves the kernel option tree
// into the options string of the global storage.
func NewKernelOptionsStep(name string, cfg *api.OptionsConfig) Step {
	return &kernelOptionsStep{name: name, cfg: cfg}
}

func (s *kernelOptionsStep) Name() string { return s.name }

func (s *kernelOptionsStep) PrettyName() string { return "Selecting kernel options." }

func (s *kernelOptionsStep) Checks() []Check {
	return []Check{ConfigurationPresent(api.StepTypeOptions, s.cfg != nil)}
}

func (s *kernelOptionsStep) Run(ctx *StepContext) error {
	partitions, err := ctx.Storage.Partitions()
	if err != nil {
		return err
	}

	tree, unmatched := options.FromConfig(s.cfg, api.HasMountPoint(partitions, "/data"))
	for _, name := range unmatched {
		ctx.logger().Warn("no editable option for input", "option", name)
	}

	key := s.cfg.Key
	if key == "" {
		key = api.DefaultOptionsKey
	}
	line := tree.CommandLine()
	ctx.Storage.Insert(key, line)
	ctx.logger().Info("kernel options selected", "key", key, "options", line)
	return nil
}
