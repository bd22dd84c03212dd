package steps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/systemstart/install-jobs/pkg/api"
	"github.com/systemstart/install-jobs/pkg/command"
)

const testCmdline = "androidboot.hardware=x86_64 quiet"

// writeTestFile writes content to a file below dir, creating parent directories.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// fixture is a target root plus host-side files and a recording runner.
type fixture struct {
	root     string
	host     string
	storage  *api.GlobalStorage
	settings api.Settings
	runner   *command.MockRunner
}

func newFixture(t *testing.T, values map[string]any) *fixture {
	t.Helper()
	root := t.TempDir()
	host := t.TempDir()

	state := map[string]any{api.KeyRootMountPoint: root}
	for k, v := range values {
		state[k] = v
	}

	if err := os.MkdirAll(filepath.Join(host, "etc/default"), 0o755); err != nil {
		t.Fatal(err)
	}

	return &fixture{
		root:    root,
		host:    host,
		storage: api.NewGlobalStorage(state),
		settings: api.Settings{
			CmdlineSource: writeTestFile(t, host, "cdrom/cmdline.txt", testCmdline+"\nsecond line\n"),
			GrubDefaults:  filepath.Join(host, "etc/default/grub"),
		}.WithDefaults(),
		runner: command.NewMockRunner(),
	}
}

func (f *fixture) context() *StepContext {
	return &StepContext{
		Context:  context.Background(),
		Storage:  f.storage,
		Settings: f.settings,
		Runner:   f.runner,
	}
}

func (f *fixture) script(name string) string {
	return filepath.Join(api.DefaultScriptDir, name)
}

// runChecked runs the step's checks and, when they pass, the step itself.
func runChecked(step Step, ctx *StepContext) error {
	for _, check := range step.Checks() {
		if f := check(ctx); f != nil {
			return f
		}
	}
	return step.Run(ctx)
}
