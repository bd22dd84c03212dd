package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/systemstart/install-jobs/pkg/api"
	"github.com/systemstart/install-jobs/pkg/processing"
	"github.com/systemstart/install-jobs/pkg/steps"
)

var (
	jobsFile  string
	stateFile string
	overrides []string
	saveState string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all jobs of a job file in order",
	Long: `Run all jobs of a job file in order, stopping at the first failure.

The installation state is read from --state and can be amended with --set.
Values given to --set are decoded as YAML.

Examples:
  install-jobs run --jobs jobs.yaml --state state.yaml
  install-jobs run --jobs jobs.toml --set rootMountPoint=/mnt/target --set options="quiet DATA=data.img"
  install-jobs run --jobs jobs.yaml --state state.yaml --save-state state.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJobs(cmd.Context(), "")
	},
}

var stepCmd = &cobra.Command{
	Use:   "step NAME",
	Short: "Run a single job of a job file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJobs(cmd.Context(), args[0])
	},
}

func init() {
	for _, cmd := range []*cobra.Command{runCmd, stepCmd} {
		addJobsFlag(cmd)
		addStateFlags(cmd)
		cmd.Flags().StringVar(&saveState, "save-state", "", "write the installation state to this file after the run")
	}
}

func addJobsFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&jobsFile, "jobs", "j", "jobs.yaml", "job file (.yaml or .toml)")
}

func addStateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&stateFile, "state", "s", "", "installation state YAML file")
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "set a state key (key=value, repeatable)")
}

func loadJobsAndState() (*api.JobFile, *api.GlobalStorage, error) {
	jf, err := processing.LoadJobs(jobsFile)
	if err != nil {
		return nil, nil, withExitCode(exitLoadJobFileFailed, err)
	}

	values, err := processing.ParseOverrides(overrides)
	if err != nil {
		return nil, nil, withExitCode(exitUsage, err)
	}
	storage, err := processing.LoadState(stateFile, values)
	if err != nil {
		return nil, nil, withExitCode(exitLoadStateFailed, err)
	}
	return jf, storage, nil
}

func runJobs(parent context.Context, only string) error {
	jf, storage, err := loadJobsAndState()
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := processing.RunOptions{
		Progress: func(step string, value float64) {
			slog.Info("progress", "step", step, "progress", value)
		},
	}

	var report *processing.Report
	if only == "" {
		report, err = processing.RunJobs(ctx, jf, storage, opts)
	} else {
		report, err = processing.RunStep(ctx, jf, only, storage, opts)
	}

	if report != nil {
		printReport(report)
	}

	if saveState != "" {
		if saveErr := storage.Save(saveState); saveErr != nil {
			if err == nil {
				return withExitCode(exitSaveStateFailed, saveErr)
			}
			slog.Error("failed to save state", "filename", saveState, "error", saveErr)
		} else {
			slog.Info("state saved", "filename", saveState)
		}
	}

	if err != nil {
		if _, ok := steps.AsFailure(err); ok {
			return withExitCode(exitStepFailed, err)
		}
		return withExitCode(exitToolErrors, err)
	}
	return nil
}

func printReport(report *processing.Report) {
	fmt.Printf("run %s\n", report.RunID)
	for _, s := range report.Steps {
		fmt.Printf("  %-16s %-14s %-12s %3.0f%%\n", s.Name, s.Type, s.State, s.Progress*100)
	}
}
