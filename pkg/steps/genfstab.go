package steps

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/systemstart/install-jobs/pkg/api"
)

// DefaultFstabHeader is the static part of fstab.android.
const DefaultFstabHeader = "# fstab.android: static file system information.\n" +
	"# FORMAT=0.2\n" +
	"#\n" +
	"# Use 'blkid' to print the universally unique identifier for a device; this may\n" +
	"# be used with UUID= as a more robust way to name devices that works even if\n" +
	"# disks are added and removed. See fstab(5).\n" +
	"#\n" +
	"# <src>    <mnt_point>    <type>    <mnt_flags and options>    <fs_mgr_flags>\n" +
	"$FS/system$SLOT.img\t\t\t\t\t\tsystem$SLOT\n" +
	"$FS/kernel$SLOT\t\t\t\t\t\t\tkernel$SLOT\n" +
	"$FS/initrd$SLOT.img\t\t\t\t\t\tinitrd$SLOT\n" +
	"$FS/recovery$SLOT.img\t\t\t\t\trecovery$SLOT\n" +
	"$FS/misc.img\t\t\t\t\t\t\tmisc\n"

const (
	fstabFile       = "fstab.android"
	dataImageOption = "DATA=data.img"
	dataImage       = "data.img"
)

var (
	bootEntry = regexp.MustCompile(`/boot\s`)
	dataEntry = regexp.MustCompile(`/data\s`)
)

type genFstabStep struct {
	name      string
	header    string
	generator string
}

// NewGenFstabStep creates the step that writes fstab.android into the target.
func NewGenFstabStep(name string, cfg *api.FstabConfig) Step {
	s := &genFstabStep{name: name, header: DefaultFstabHeader, generator: "genfstab"}
	if cfg != nil {
		if cfg.Header != "" {
			s.header = cfg.Header
		}
		if cfg.Generator != "" {
			s.generator = cfg.Generator
		}
	}
	return s
}

func (s *genFstabStep) Name() string { return s.name }

func (s *genFstabStep) PrettyName() string { return "Generating fstab." }

func (s *genFstabStep) Checks() []Check { return rootChecks() }

func (s *genFstabStep) Run(ctx *StepContext) error {
	root := ctx.Storage.RootMountPoint()

	header, err := renderTemplate(s.name, s.header, ctx.Storage.Snapshot())
	if err != nil {
		return err
	}

	result, err := ctx.Exec(s.generatorPath(ctx), "-U", root)
	if err != nil {
		return err
	}

	lines := []string{header, result.Stdout}
	lines = append(lines, syntheticEntries(result.Stdout, ctx.Storage.Options(), root)...)

	return writeLines(filepath.Join(root, fstabFile), lines...)
}

func (s *genFstabStep) generatorPath(ctx *StepContext) string {
	if filepath.IsAbs(s.generator) {
		return s.generator
	}
	return ctx.Script(s.generator)
}

// syntheticEntries returns the boot and data entries the generated table lacks.
func syntheticEntries(generated, options, root string) []string {
	var entries []string
	if !bootEntry.MatchString(generated) {
		entries = append(entries, "$FS/boot bootloader")
	}
	if !dataEntry.MatchString(generated) {
		if strings.Contains(options, dataImageOption) || exists(filepath.Join(root, dataImage)) {
			entries = append(entries, "$FS/data.img userdata ext4 defaults defaults")
		} else {
			entries = append(entries, "$FS/data userdata")
		}
	}
	return entries
}
