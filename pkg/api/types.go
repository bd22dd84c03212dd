package api

import "gopkg.in/yaml.v3"

const (
	StepTypeBootConfig     = "bootcfg"
	StepTypeBootPostConfig = "boot-postcfg"
	StepTypeGenFstab       = "gen-fstab"
	StepTypeGenImg         = "gen-img"
	StepTypeMakeAB         = "make-ab"
	StepTypeOptions        = "options"

	BootloaderGrub   = "grub"
	BootloaderRefind = "refind"
	BootloaderNone   = "none"

	OnUnsupportedFallback = "fallback"
	OnUnsupportedFail     = "fail"

	CommandEnvHost   = "host"
	CommandEnvTarget = "target"

	DistributorAuto = "auto"

	DefaultScriptDir      = "/usr/share/calamares/scripts"
	DefaultCmdlineSource  = "/cdrom/cmdline.txt"
	DefaultBootloaderConf = "/usr/share/calamares/modules/bootloader.conf"
	DefaultGrubDefaults   = "/etc/default/grub"
	DefaultGrubThemes     = "/usr/share/grub/themes"
	DefaultDistributor    = "BlissLabs"
	DefaultGrubTimeout    = 10
	DefaultOptionsKey     = KeyOptions
)

// JobFile is the job list format, read from YAML or TOML.
type JobFile struct {
	Settings Settings     `yaml:"settings"`
	Jobs     []StepConfig `yaml:"jobs"`

	// Set by the loader, not from the file.
	Dir      string `yaml:"-"`
	FilePath string `yaml:"-"`
}

// Settings are shared by every step of a run.
type Settings struct {
	ScriptDir       string `yaml:"scriptDir"`
	CmdlineSource   string `yaml:"cmdlineSource"`
	BootloaderConf  string `yaml:"bootloaderConf"`
	GrubDefaults    string `yaml:"grubDefaults"`
	CommandEnv      string `yaml:"commandEnv"`
	CheckExitStatus bool   `yaml:"checkExitStatus"`
	ModuleConfigDir string `yaml:"moduleConfigDir"`
}

// StepConfig defines a single job within a job file.
type StepConfig struct {
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	Bootloader *BootloaderConfig `yaml:"bootloader,omitempty"`
	Fstab      *FstabConfig      `yaml:"fstab,omitempty"`
	MakeAB     []ImageEntry      `yaml:"make-ab,omitempty"`
	Options    *OptionsConfig    `yaml:"options,omitempty"`
}

// BootloaderConfig configures the bootcfg and boot-postcfg steps.
type BootloaderConfig struct {
	// Kind forces the bootloader variant. Empty means detect.
	Kind          string `yaml:"kind"`
	OnUnsupported string `yaml:"onUnsupported"`
	Distributor   string `yaml:"distributor"`
	Timeout       *int   `yaml:"timeout,omitempty"`
	ThemesDir     string `yaml:"themesDir"`
}

// FstabConfig configures the gen-fstab step.
type FstabConfig struct {
	Header    string `yaml:"header"`
	Generator string `yaml:"generator"`
}

// ImageEntry is one make-ab image. File may be a glob relative to the root mount point.
type ImageEntry struct {
	File string `yaml:"file"`
	Size string `yaml:"size"`
}

// OptionsConfig configures the options step.
type OptionsConfig struct {
	Key    string            `yaml:"key"`
	Groups []OptionGroup     `yaml:"groups"`
	Select []string          `yaml:"select"`
	Inputs map[string]string `yaml:"inputs"`
}

// OptionGroup is a node of the kernel option tree.
type OptionGroup struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Selected    bool          `yaml:"selected"`
	Distinct    bool          `yaml:"distinct"`
	Immutable   bool          `yaml:"immutable"`
	Hidden      bool          `yaml:"hidden"`
	Subgroups   []OptionGroup `yaml:"subgroups"`
	Options     []OptionEntry `yaml:"options"`
}

// OptionEntry is a leaf of the kernel option tree.
type OptionEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Selected    bool   `yaml:"selected"`
	Hidden      bool   `yaml:"hidden"`
	Editable    bool   `yaml:"editable"`
	Default     string `yaml:"default"`
}

// UnmarshalYAML accepts either a mapping or a bare option name.
func (o *OptionEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*o = OptionEntry{Name: value.Value}
		return nil
	}
	type plain OptionEntry
	return value.Decode((*plain)(o))
}

// WithDefaults returns a copy of s with empty fields filled in.
func (s Settings) WithDefaults() Settings {
	if s.ScriptDir == "" {
		s.ScriptDir = DefaultScriptDir
	}
	if s.CmdlineSource == "" {
		s.CmdlineSource = DefaultCmdlineSource
	}
	if s.BootloaderConf == "" {
		s.BootloaderConf = DefaultBootloaderConf
	}
	if s.GrubDefaults == "" {
		s.GrubDefaults = DefaultGrubDefaults
	}
	if s.CommandEnv == "" {
		s.CommandEnv = CommandEnvHost
	}
	return s
}
