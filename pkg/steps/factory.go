package steps

import (
	"fmt"

	"github.com/systemstart/install-jobs/pkg/api"
)

// NewStep creates a Step implementation from a StepConfig.
func NewStep(cfg api.StepConfig) (Step, error) {
	switch cfg.Type {
	case api.StepTypeBootConfig:
		return NewBootConfigStep(cfg.Name, cfg.Bootloader), nil
	case api.StepTypeBootPostConfig:
		return NewBootPostConfigStep(cfg.Name, cfg.Bootloader), nil
	case api.StepTypeGenFstab:
		return NewGenFstabStep(cfg.Name, cfg.Fstab), nil
	case api.StepTypeGenImg:
		return NewGenImgStep(cfg.Name), nil
	case api.StepTypeMakeAB:
		return NewMakeABStep(cfg.Name, cfg.MakeAB), nil
	case api.StepTypeOptions:
		return NewKernelOptionsStep(cfg.Name, cfg.Options), nil
	default:
		return nil, fmt.Errorf("unknown step type: %s", cfg.Type)
	}
}
