package api

import (
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestValidate_ValidJobFile(t *testing.T) {
	j := &JobFile{
		Jobs: []StepConfig{
			{Name: "options", Type: StepTypeOptions, Options: &OptionsConfig{
				Groups: []OptionGroup{{Name: "boot", Options: []OptionEntry{{Name: "quiet"}}}},
			}},
			{Name: "bootcfg", Type: StepTypeBootConfig, Bootloader: &BootloaderConfig{Kind: BootloaderGrub, Timeout: intPtr(5)}},
			{Name: "fstab", Type: StepTypeGenFstab},
			{Name: "img", Type: StepTypeGenImg},
			{Name: "ab", Type: StepTypeMakeAB, MakeAB: []ImageEntry{{File: "system.img", Size: "4G"}}},
			{Name: "post", Type: StepTypeBootPostConfig},
		},
	}
	if err := j.Validate(); err != nil {
		t.Fatalf("expected valid job file, got error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		jf      JobFile
		wantErr string
	}{
		{
			name:    "no jobs",
			jf:      JobFile{},
			wantErr: "no jobs",
		},
		{
			name:    "missing name",
			jf:      JobFile{Jobs: []StepConfig{{Type: StepTypeGenImg}}},
			wantErr: "name is required",
		},
		{
			name: "duplicate name",
			jf: JobFile{Jobs: []StepConfig{
				{Name: "a", Type: StepTypeGenImg},
				{Name: "a", Type: StepTypeGenFstab},
			}},
			wantErr: "duplicate job name",
		},
		{
			name:    "unknown type",
			jf:      JobFile{Jobs: []StepConfig{{Name: "a", Type: "bogus"}}},
			wantErr: "unknown type",
		},
		{
			name: "bad bootloader kind",
			jf: JobFile{Jobs: []StepConfig{
				{Name: "a", Type: StepTypeBootConfig, Bootloader: &BootloaderConfig{Kind: "lilo"}},
			}},
			wantErr: "bootloader.kind",
		},
		{
			name: "bad unsupported policy",
			jf: JobFile{Jobs: []StepConfig{
				{Name: "a", Type: StepTypeBootPostConfig, Bootloader: &BootloaderConfig{OnUnsupported: "ignore"}},
			}},
			wantErr: "bootloader.onUnsupported",
		},
		{
			name: "negative timeout",
			jf: JobFile{Jobs: []StepConfig{
				{Name: "a", Type: StepTypeBootConfig, Bootloader: &BootloaderConfig{Timeout: intPtr(-1)}},
			}},
			wantErr: "timeout must not be negative",
		},
		{
			name: "image without size",
			jf: JobFile{Jobs: []StepConfig{
				{Name: "a", Type: StepTypeMakeAB, MakeAB: []ImageEntry{{File: "system.img"}}},
			}},
			wantErr: "size is required",
		},
		{
			name: "nameless option",
			jf: JobFile{Jobs: []StepConfig{
				{Name: "a", Type: StepTypeOptions, Options: &OptionsConfig{
					Groups: []OptionGroup{{Name: "g", Subgroups: []OptionGroup{{Name: "s", Options: []OptionEntry{{}}}}}},
				}},
			}},
			wantErr: "option 0: name is required",
		},
		{
			name: "bad command env",
			jf: JobFile{
				Settings: Settings{CommandEnv: "vm"},
				Jobs:     []StepConfig{{Name: "a", Type: StepTypeGenImg}},
			},
			wantErr: "commandEnv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.jf.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSettings_WithDefaults(t *testing.T) {
	s := Settings{ScriptDir: "/opt/scripts"}.WithDefaults()

	if s.ScriptDir != "/opt/scripts" {
		t.Errorf("ScriptDir overwritten: %q", s.ScriptDir)
	}
	if s.CmdlineSource != DefaultCmdlineSource {
		t.Errorf("CmdlineSource = %q", s.CmdlineSource)
	}
	if s.BootloaderConf != DefaultBootloaderConf {
		t.Errorf("BootloaderConf = %q", s.BootloaderConf)
	}
	if s.GrubDefaults != DefaultGrubDefaults {
		t.Errorf("GrubDefaults = %q", s.GrubDefaults)
	}
	if s.CommandEnv != CommandEnvHost {
		t.Errorf("CommandEnv = %q", s.CommandEnv)
	}
}

func TestValidate_BootloaderKindIgnoresCase(t *testing.T) {
	for _, kind := range []string{"GRUB", "Refind", "None"} {
		j := &JobFile{
			Jobs: []StepConfig{
				{Name: "bootcfg", Type: StepTypeBootConfig, Bootloader: &BootloaderConfig{Kind: kind}},
			},
		}
		if err := j.Validate(); err != nil {
			t.Errorf("kind %q: expected valid job file, got error: %v", kind, err)
		}
	}
}
