// Package command runs the helper programs installer jobs shell out to.
package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Result is the outcome of a finished process.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Call records a command invocation.
type Call struct {
	Command string
	Args    []string
}

// String renders the call as a shell-like line for logs.
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	return c.Command + " " + strings.Join(c.Args, " ")
}

// Runner executes commands.
//
// A non-zero exit is reported through Result.ExitCode, not as an error;
// the error is reserved for processes that could not be run at all.
type Runner interface {
	Run(ctx context.Context, command string, args ...string) (Result, error)
}

// HostRunner executes commands on the host system.
type HostRunner struct{}

// NewHostRunner creates a new HostRunner.
func NewHostRunner() *HostRunner {
	return &HostRunner{}
}

// Run executes a command and waits for it to exit.
func (r *HostRunner) Run(ctx context.Context, command string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}

var _ Runner = (*HostRunner)(nil)
