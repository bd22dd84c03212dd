package steps

import (
	"github.com/systemstart/install-jobs/pkg/api"
)

type bootPostConfigStep struct {
	name string
	cfg  bootloaderSettings
}

// NewBootPostConfigStep creates the step that finishes bootloader
// configuration after the bootloader is installed.
func NewBootPostConfigStep(name string, cfg *api.BootloaderConfig) Step {
	return &bootPostConfigStep{name: name, cfg: newBootloaderSettings(cfg)}
}

func (s *bootPostConfigStep) Name() string { return s.name }

func (s *bootPostConfigStep) PrettyName() string { return "Post-config after installing bootloader." }

func (s *bootPostConfigStep) Checks() []Check { return rootChecks() }

func (s *bootPostConfigStep) Run(ctx *StepContext) error {
	root := ctx.Storage.RootMountPoint()

	cmdline, err := kernelCmdline(ctx)
	if err != nil {
		return err
	}

	kind := s.cfg.resolveKind(ctx, func() string { return detectFromOptions(ctx.Storage.Options()) })
	ctx.logger().Info("selected bootloader", "bootloader", kind)

	var argv []string
	switch kind {
	case api.BootloaderGrub:
		// GRUB was fully configured before installation.
	case api.BootloaderRefind:
		argv = []string{ctx.Script("refind-conf"), root, cmdline}
	default:
		var f *Failure
		if argv, f = s.cfg.fallbackCommand(ctx, kind, root, cmdline); f != nil {
			return f
		}
	}

	if err := writeCmdlineMarker(root, cmdline); err != nil {
		return err
	}

	if argv == nil {
		ctx.logger().Info("Skipping", "bootloader", kind)
		return nil
	}
	_, err = ctx.Exec(argv[0], argv[1:]...)
	return err
}
