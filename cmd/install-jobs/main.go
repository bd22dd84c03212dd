package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/systemstart/install-jobs/pkg/steps"
)

const (
	_ = iota
	exitUsage
	exitDotenvError
	exitLoggingSetupFailed
	exitLoadJobFileFailed
	exitLoadStateFailed
	exitStepFailed
	exitToolErrors
	exitSaveStateFailed
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if _, ok := steps.AsFailure(err); ok {
		return exitStepFailed
	}
	return exitUsage
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if f, ok := steps.AsFailure(err); ok {
			fmt.Fprintf(os.Stderr, "%s\n  %s\n", f.Title, f.Message)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func includeEnv() error {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			return withExitCode(exitDotenvError, fmt.Errorf("loading .env: %w", err))
		}
		slog.Debug("no .env file found")
	} else {
		slog.Info("using .env file")
	}
	return nil
}
