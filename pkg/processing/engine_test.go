package processing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systemstart/install-jobs/pkg/api"
	"github.com/systemstart/install-jobs/pkg/command"
	"github.com/systemstart/install-jobs/pkg/steps"
)

const testCmdline = "androidboot.hardware=x86_64 quiet"

// installFixture is a target root and a host directory holding the
// files a run reads outside the target.
type installFixture struct {
	root     string
	host     string
	settings api.Settings
	runner   *command.MockRunner
}

func newInstallFixture(t *testing.T) *installFixture {
	t.Helper()
	root := t.TempDir()
	host := t.TempDir()
	writeFile(t, filepath.Join(host, "cdrom", "cmdline.txt"), testCmdline+"\n")
	writeFile(t, filepath.Join(host, "etc", "default", "grub"), "")

	return &installFixture{
		root: root,
		host: host,
		settings: api.Settings{
			CmdlineSource: filepath.Join(host, "cdrom", "cmdline.txt"),
			GrubDefaults:  filepath.Join(host, "etc", "default", "grub"),
		},
		runner: command.NewMockRunner(),
	}
}

func (f *installFixture) storage(values map[string]any) *api.GlobalStorage {
	state := map[string]any{api.KeyRootMountPoint: f.root}
	for k, v := range values {
		state[k] = v
	}
	return api.NewGlobalStorage(state)
}

func (f *installFixture) script(name string) string {
	return filepath.Join(api.DefaultScriptDir, name)
}

func TestRunJobs_RefindEndToEnd(t *testing.T) {
	f := newInstallFixture(t)
	writeFile(t, filepath.Join(f.root, api.DefaultBootloaderConf), "efiBootLoader: refind\n")

	jf := &api.JobFile{
		Settings: f.settings,
		Jobs:     []api.StepConfig{{Name: "bootcfg", Type: api.StepTypeBootConfig}},
	}
	storage := f.storage(map[string]any{
		api.KeyOptions: "refind.conf foo",
		api.KeyPartitions: []any{
			map[string]any{"device": "/dev/sda1", "fs": "ext4", "mountPoint": "/"},
		},
	})

	var progress []float64
	report, err := RunJobs(context.Background(), jf, storage, RunOptions{
		Runner:   f.runner,
		Progress: func(_ string, v float64) { progress = append(progress, v) },
	})
	require.NoError(t, err)

	assert.Equal(t, []command.Call{{
		Command: f.script("refind-conf"),
		Args:    []string{f.root, testCmdline + " refind.conf foo"},
	}}, f.runner.Calls())
	assert.Equal(t, []float64{1.0}, progress)

	require.Len(t, report.Steps, 1)
	assert.Equal(t, StateSucceeded, report.Steps[0].State)
	assert.Equal(t, 1.0, report.Steps[0].Progress)
	assert.NotEmpty(t, report.RunID)
}

func TestRunJobs_SequentialThroughStorage(t *testing.T) {
	f := newInstallFixture(t)
	writeFile(t, filepath.Join(f.root, "system.img"), "")

	jf := &api.JobFile{
		Settings: f.settings,
		Jobs: []api.StepConfig{
			{
				Name: "options",
				Type: api.StepTypeOptions,
				Options: &api.OptionsConfig{Groups: []api.OptionGroup{{
					Name:    "boot",
					Options: []api.OptionEntry{{Name: "refind", Description: "refind.conf", Selected: true}},
				}}},
			},
			{Name: "boot-postcfg", Type: api.StepTypeBootPostConfig},
			{Name: "make-ab", Type: api.StepTypeMakeAB, MakeAB: []api.ImageEntry{{File: "system.img", Size: "4G"}}},
		},
	}
	storage := f.storage(nil)

	report, err := RunJobs(context.Background(), jf, storage, RunOptions{Runner: f.runner})
	require.NoError(t, err)

	assert.Equal(t, "refind.conf", storage.Options())
	assert.Equal(t, []command.Call{
		{Command: f.script("refind-conf"), Args: []string{f.root, testCmdline + " refind.conf"}},
		{Command: f.script("make-ab"), Args: []string{filepath.Join(f.root, "system.img"), "4G"}},
	}, f.runner.Calls())

	require.Len(t, report.Steps, 3)
	assert.Equal(t, []string{StateNotStarted, StateValidating, StateConfiguring, StateSucceeded}, report.Steps[0].History)
	assert.Equal(t, StateSucceeded, report.Steps[2].State)
}

func TestRunJobs_StopsAtFirstFailure(t *testing.T) {
	f := newInstallFixture(t)

	jf := &api.JobFile{
		Settings: f.settings,
		Jobs: []api.StepConfig{
			{Name: "make-ab", Type: api.StepTypeMakeAB},
			{Name: "gen-img", Type: api.StepTypeGenImg},
		},
	}

	report, err := RunJobs(context.Background(), jf, f.storage(nil), RunOptions{Runner: f.runner})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `job "make-ab" failed`)

	failure, ok := steps.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, steps.KindMissingConfiguration, failure.Kind)

	require.Len(t, report.Steps, 1)
	assert.Equal(t, StateFailed, report.Steps[0].State)
	assert.Empty(t, f.runner.Calls())
}

func TestRunJobs_MissingRootMountPoint(t *testing.T) {
	f := newInstallFixture(t)
	jf := &api.JobFile{
		Settings: f.settings,
		Jobs:     []api.StepConfig{{Name: "gen-img", Type: api.StepTypeGenImg}},
	}

	_, err := RunJobs(context.Background(), jf, api.NewGlobalStorage(nil), RunOptions{Runner: f.runner})

	failure, ok := steps.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, steps.KindMissingState, failure.Kind)
	assert.Empty(t, f.runner.Calls())
}

func TestRunJobs_TargetCommandEnv(t *testing.T) {
	f := newInstallFixture(t)
	f.settings.CommandEnv = api.CommandEnvTarget

	jf := &api.JobFile{
		Settings: f.settings,
		Jobs:     []api.StepConfig{{Name: "gen-img", Type: api.StepTypeGenImg}},
	}

	_, err := RunJobs(context.Background(), jf, f.storage(nil), RunOptions{Runner: f.runner})
	require.NoError(t, err)

	assert.Equal(t, []command.Call{{
		Command: "chroot",
		Args:    []string{f.root, f.script("gen-img"), f.root, ""},
	}}, f.runner.Calls())
}

func TestRunJobs_Cancelled(t *testing.T) {
	f := newInstallFixture(t)
	jf := &api.JobFile{
		Settings: f.settings,
		Jobs:     []api.StepConfig{{Name: "gen-img", Type: api.StepTypeGenImg}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunJobs(ctx, jf, f.storage(nil), RunOptions{Runner: f.runner})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.runner.Calls())
}

func TestRunStep(t *testing.T) {
	f := newInstallFixture(t)
	jf := &api.JobFile{
		Settings: f.settings,
		Jobs: []api.StepConfig{
			{Name: "make-ab", Type: api.StepTypeMakeAB},
			{Name: "gen-img", Type: api.StepTypeGenImg},
		},
	}

	report, err := RunStep(context.Background(), jf, "gen-img", f.storage(nil), RunOptions{Runner: f.runner})
	require.NoError(t, err)
	require.Len(t, report.Steps, 1)
	assert.Equal(t, "gen-img", report.Steps[0].Name)

	_, err = RunStep(context.Background(), jf, "missing", f.storage(nil), RunOptions{Runner: f.runner})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `job "missing" not found`)
}

func TestLoadJobs_AppliesModuleConfigs(t *testing.T) {
	dir := t.TempDir()
	modules := filepath.Join(dir, "modules")
	writeFile(t, filepath.Join(modules, "make-ab.conf"), makeABModuleConfig)

	jobFile := filepath.Join(dir, "jobs.yaml")
	writeFile(t, jobFile, strings.Join([]string{
		"settings:",
		"  moduleConfigDir: " + modules,
		"jobs:",
		"  - name: make-ab",
		"    type: make-ab",
		"",
	}, "\n"))

	jf, err := LoadJobs(jobFile)
	require.NoError(t, err)
	require.Len(t, jf.Jobs[0].MakeAB, 1)
	assert.Equal(t, "system.img", jf.Jobs[0].MakeAB[0].File)
}

func TestLoadJobs_InvalidModuleConfig(t *testing.T) {
	dir := t.TempDir()
	modules := filepath.Join(dir, "modules")
	writeFile(t, filepath.Join(modules, "make-ab.conf"), "make-ab:\n  - file: \"\"\n    size: 1G\n")

	jobFile := filepath.Join(dir, "jobs.yaml")
	writeFile(t, jobFile, "settings:\n  moduleConfigDir: "+modules+"\njobs:\n  - name: make-ab\n    type: make-ab\n")

	_, err := LoadJobs(jobFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file is required")
}

func TestLoadJobs_TOML(t *testing.T) {
	jobFile := filepath.Join(t.TempDir(), "jobs.toml")
	content := "[settings]\ncheckExitStatus = true\n\n[[jobs]]\nname = \"gen-img\"\ntype = \"gen-img\"\n"
	if err := os.WriteFile(jobFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	jf, err := LoadJobs(jobFile)
	require.NoError(t, err)
	assert.True(t, jf.Settings.CheckExitStatus)
	assert.Equal(t, api.StepTypeGenImg, jf.Jobs[0].Type)
}
