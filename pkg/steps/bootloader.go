package steps

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/systemstart/install-jobs/pkg/api"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Markers in the options string that name the installed bootloader.
const (
	grubOptionMarker   = "grub/android.cfg"
	refindOptionMarker = "refind.conf"
)

type bootloaderSettings struct {
	kind          string
	onUnsupported string
	distributor   string
	timeout       int
	themesDir     string
}

func newBootloaderSettings(cfg *api.BootloaderConfig) bootloaderSettings {
	s := bootloaderSettings{
		onUnsupported: api.OnUnsupportedFallback,
		distributor:   api.DefaultDistributor,
		timeout:       api.DefaultGrubTimeout,
		themesDir:     api.DefaultGrubThemes,
	}
	if cfg == nil {
		return s
	}
	s.kind = strings.ToLower(cfg.Kind)
	if cfg.OnUnsupported != "" {
		s.onUnsupported = cfg.OnUnsupported
	}
	if cfg.Distributor != "" {
		s.distributor = cfg.Distributor
	}
	if cfg.Timeout != nil {
		s.timeout = *cfg.Timeout
	}
	if cfg.ThemesDir != "" {
		s.themesDir = cfg.ThemesDir
	}
	return s
}

// resolveKind returns the configured kind, then the kind stored by an
// earlier job, then whatever detect finds.
func (s bootloaderSettings) resolveKind(ctx *StepContext, detect func() string) string {
	if s.kind != "" {
		return s.kind
	}
	if kind := ctx.Storage.Bootloader(); kind != "" {
		return kind
	}
	return detect()
}

// fallbackCommand handles a bootloader that is neither grub nor refind.
// It returns the no-bootloader command, or a failure when the policy forbids fallback.
func (s bootloaderSettings) fallbackCommand(ctx *StepContext, kind, root, cmdline string) ([]string, *Failure) {
	if kind != api.BootloaderNone {
		ctx.logger().Warn("Unsupported bootloader", "bootloader", kind)
		if s.onUnsupported == api.OnUnsupportedFail {
			return nil, newFailure(KindUnsupportedVariant, "Unsupported bootloader",
				"Bootloader %q is not supported.", kind)
		}
	}
	return []string{ctx.Script("no-bootloader"), root, cmdline}, nil
}

// detectFromConfig reads efiBootLoader from the bootloader module configuration
// inside the target root.
func detectFromConfig(ctx *StepContext, root string) string {
	path := filepath.Join(root, ctx.Settings.BootloaderConf)
	data, err := os.ReadFile(path)
	if err != nil {
		ctx.logger().Debug("bootloader configuration not readable", "path", path, "error", err)
		return ""
	}

	var conf struct {
		EfiBootLoader string `yaml:"efiBootLoader"`
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		ctx.logger().Warn("bootloader configuration is not valid YAML", "path", path, "error", err)
		return ""
	}
	return strings.ToLower(conf.EfiBootLoader)
}

// detectFromOptions looks for the bootloader configuration path embedded in
// the options string.
func detectFromOptions(options string) string {
	switch {
	case strings.Contains(options, grubOptionMarker):
		return api.BootloaderGrub
	case strings.Contains(options, refindOptionMarker):
		return api.BootloaderRefind
	default:
		return ""
	}
}

// resolveDistributor returns the distributor name written to the GRUB defaults.
// "auto" reads NAME from the target's os-release.
func (s bootloaderSettings) resolveDistributor(ctx *StepContext, root string) string {
	if s.distributor != api.DistributorAuto {
		return s.distributor
	}

	path := filepath.Join(root, "etc", "os-release")
	cfg, err := ini.Load(path)
	if err != nil {
		ctx.logger().Warn("cannot read os-release, using default distributor", "path", path, "error", err)
		return api.DefaultDistributor
	}
	name := cfg.Section("").Key("NAME").String()
	if name == "" {
		return api.DefaultDistributor
	}
	return name
}

// grubDefaultsLines builds the lines appended to the GRUB defaults file.
// GRUB_DEVICE follows the "/" partition; GRUB_DEVICE_BOOT follows the last
// of "/" and "/boot" in list order.
func grubDefaultsLines(timeout int, distributor string, partitions []api.Partition) []string {
	lines := []string{
		fmt.Sprintf("GRUB_TIMEOUT=%d", timeout),
		"GRUB_TIMEOUT_STYLE=menu",
		"GRUB_DISTRIBUTOR=" + shellValue(distributor),
		"GRUB_GFXPAYLOAD_LINUX=keep",
		"GRUB_DISABLE_OS_PROBER=false",
		"GRUB_DEFAULT=saved",
		"GRUB_SAVEDEFAULT=true",
	}

	var bootDevice string
	for _, p := range partitions {
		switch p.MountPoint {
		case "/":
			lines = append(lines, "GRUB_DEVICE='"+p.Device+"'")
			bootDevice = p.Device
		case "/boot":
			bootDevice = p.Device
		}
	}

	return append(lines, "GRUB_DEVICE_BOOT='"+bootDevice+"'", "SRC=")
}

// shellValue single-quotes v when the shell would otherwise split or expand it.
func shellValue(v string) string {
	if !strings.ContainsAny(v, " \t\"'$`\\") {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}
