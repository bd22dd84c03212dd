package steps

import (
	"fmt"
	"path/filepath"

	"github.com/systemstart/install-jobs/pkg/api"
)

type bootConfigStep struct {
	name string
	cfg  bootloaderSettings
}

// NewBootConfigStep creates the step that prepares bootloader configuration
// before the bootloader is installed.
func NewBootConfigStep(name string, cfg *api.BootloaderConfig) Step {
	return &bootConfigStep{name: name, cfg: newBootloaderSettings(cfg)}
}

func (s *bootConfigStep) Name() string { return s.name }

func (s *bootConfigStep) PrettyName() string { return "Pre-config before installing bootloader." }

func (s *bootConfigStep) Checks() []Check { return rootChecks() }

func (s *bootConfigStep) Run(ctx *StepContext) error {
	root := ctx.Storage.RootMountPoint()

	cmdline, err := kernelCmdline(ctx)
	if err != nil {
		return err
	}

	kind := s.cfg.resolveKind(ctx, func() string { return detectFromConfig(ctx, root) })
	ctx.logger().Info("selected bootloader", "bootloader", kind)

	var argv []string
	switch kind {
	case api.BootloaderGrub:
		if err := s.prepareGrub(ctx, root, cmdline); err != nil {
			return err
		}
		argv = []string{ctx.Script("grubcfg")}
	case api.BootloaderRefind:
		argv = []string{ctx.Script("refind-conf"), root, cmdline}
	default:
		var f *Failure
		if argv, f = s.cfg.fallbackCommand(ctx, kind, root, cmdline); f != nil {
			return f
		}
	}

	partitions, err := ctx.Storage.Partitions()
	if err != nil {
		return err
	}
	distributor := s.cfg.resolveDistributor(ctx, root)
	if err := appendLines(ctx.Settings.GrubDefaults, grubDefaultsLines(s.cfg.timeout, distributor, partitions)...); err != nil {
		return err
	}

	if err := writeCmdlineMarker(root, cmdline); err != nil {
		return err
	}

	_, err = ctx.Exec(argv[0], argv[1:]...)
	return err
}

// prepareGrub creates boot/grub in the target, copies the GRUB themes and
// writes the Android boot environment.
func (s *bootConfigStep) prepareGrub(ctx *StepContext, root, cmdline string) error {
	grubDir := filepath.Join(root, "boot", "grub")
	if err := mkdirP(grubDir); err != nil {
		return err
	}

	if exists(s.cfg.themesDir) {
		if err := copyTree(s.cfg.themesDir, grubDir); err != nil {
			return fmt.Errorf("copying grub themes: %w", err)
		}
	} else {
		ctx.logger().Warn("grub themes not found, skipping", "path", s.cfg.themesDir)
	}

	return writeLines(filepath.Join(grubDir, "android.cfg"),
		"SLOT=_a",
		"CMDLINE='"+cmdline+"'",
		"MODE=normal",
	)
}
