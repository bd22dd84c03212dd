package steps

import (
	"strings"

	"github.com/systemstart/install-jobs/pkg/api"
)

type genImgStep struct {
	name string
}

// NewGenImgStep creates the step that generates the misc and data images.
func NewGenImgStep(name string) Step {
	return &genImgStep{name: name}
}

func (s *genImgStep) Name() string { return s.name }

func (s *genImgStep) PrettyName() string { return "Generating needed disk images." }

func (s *genImgStep) Checks() []Check { return rootChecks() }

func (s *genImgStep) Run(ctx *StepContext) error {
	partitions, err := ctx.Storage.Partitions()
	if err != nil {
		return err
	}

	mode := ""
	if strings.Contains(ctx.Storage.Options(), dataImageOption) && !api.HasMountPoint(partitions, "/data") {
		mode = "img"
	}

	_, err = ctx.Exec(ctx.Script("gen-img"), ctx.Storage.RootMountPoint(), mode)
	return err
}
