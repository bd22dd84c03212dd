package steps

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/systemstart/install-jobs/pkg/api"
	"github.com/systemstart/install-jobs/pkg/command"
)

// StepContext provides the runtime context for a step.
type StepContext struct {
	Context  context.Context
	Storage  *api.GlobalStorage
	Settings api.Settings
	Runner   command.Runner
	Logger   *slog.Logger

	// OnExecute is called once, before the first command is dispatched.
	OnExecute func()

	executing bool
}

// Step is the interface all installer jobs implement.
//
// Checks run in order before Run; the first one to fail ends the step
// without side effects.
type Step interface {
	Name() string
	PrettyName() string
	Checks() []Check
	Run(ctx *StepContext) error
}

// Script returns the path of a helper program in the script directory.
func (c *StepContext) Script(name string) string {
	return filepath.Join(c.Settings.ScriptDir, name)
}

// Exec runs a helper program and returns its result.
//
// A process that cannot be started is an error. A non-zero exit is logged
// and only becomes a CommandFailed failure when exit status checking is on.
func (c *StepContext) Exec(name string, args ...string) (command.Result, error) {
	if !c.executing {
		c.executing = true
		if c.OnExecute != nil {
			c.OnExecute()
		}
	}

	call := command.Call{Command: name, Args: args}
	c.logger().Info("running command", "command", call.String())

	result, err := c.Runner.Run(c.context(), name, args...)
	if err != nil {
		return result, fmt.Errorf("running %s: %w", name, err)
	}

	if result.Success() {
		c.logger().Debug("command finished", "command", name, "exitCode", result.ExitCode)
		return result, nil
	}

	c.logger().Warn("command exited with non-zero status",
		"command", name, "exitCode", result.ExitCode, "stderr", result.Stderr)
	if c.Settings.CheckExitStatus {
		f := newFailure(KindCommandFailed, "Command failed",
			"%s exited with status %d", name, result.ExitCode)
		if result.Stderr != "" {
			f.Message += ": " + result.Stderr
		}
		return result, f
	}
	return result, nil
}

// Executing reports whether a command has been dispatched.
func (c *StepContext) Executing() bool {
	return c.executing
}

func (c *StepContext) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *StepContext) context() context.Context {
	if c.Context == nil {
		return context.Background()
	}
	return c.Context
}
