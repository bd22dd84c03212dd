package processing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/systemstart/install-jobs/pkg/api"
	"github.com/systemstart/install-jobs/pkg/command"
	"github.com/systemstart/install-jobs/pkg/steps"
)

// RunOptions configures a job run.
type RunOptions struct {
	// Runner executes helper programs on the host. Defaults to a HostRunner.
	Runner   command.Runner
	Logger   *slog.Logger
	Progress ProgressFunc
}

// StepReport is the outcome of one job of a run.
type StepReport struct {
	Name     string
	Type     string
	State    string
	Progress float64
	History  []string
}

// Report summarizes a run.
type Report struct {
	RunID string
	Steps []StepReport
}

// LoadJobs reads a job file and fills missing step sections from the
// module configuration directory named in its settings.
func LoadJobs(filename string) (*api.JobFile, error) {
	jf, err := api.LoadJobFile(filename)
	if err != nil {
		return nil, err
	}
	if jf.Settings.ModuleConfigDir == "" {
		return jf, nil
	}

	configs, err := DiscoverModuleConfigs(jf.Settings.ModuleConfigDir)
	if err != nil {
		return nil, fmt.Errorf("discovering module configurations: %w", err)
	}
	if err := ApplyModuleConfigs(jf, configs); err != nil {
		return nil, err
	}
	if err := jf.Validate(); err != nil {
		return nil, fmt.Errorf("validating job file %s: %w", filename, err)
	}
	return jf, nil
}

// RunJobs executes the jobs of jf in order and stops at the first failure.
func RunJobs(ctx context.Context, jf *api.JobFile, storage *api.GlobalStorage, opts RunOptions) (*Report, error) {
	return runJobs(ctx, jf, jf.Jobs, storage, opts)
}

// RunStep executes the single job called name.
func RunStep(ctx context.Context, jf *api.JobFile, name string, storage *api.GlobalStorage, opts RunOptions) (*Report, error) {
	for _, job := range jf.Jobs {
		if job.Name == name {
			return runJobs(ctx, jf, []api.StepConfig{job}, storage, opts)
		}
	}
	return nil, fmt.Errorf("job %q not found in %s", name, jf.FilePath)
}

func runJobs(ctx context.Context, jf *api.JobFile, jobs []api.StepConfig, storage *api.GlobalStorage, opts RunOptions) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run", report.RunID)

	settings := jf.Settings.WithDefaults()
	logger.Info("starting run", "jobs", len(jobs), "commandEnv", settings.CommandEnv)

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("run cancelled before job %q: %w", job.Name, err)
		}

		stepReport := StepReport{Name: job.Name, Type: job.Type, State: StateNotStarted}
		err := runJob(ctx, job, storage, settings, opts, logger, &stepReport)
		report.Steps = append(report.Steps, stepReport)
		if err != nil {
			logger.Error("job failed", "step", job.Name, "type", job.Type, "error", err)
			return report, fmt.Errorf("job %q failed: %w", job.Name, err)
		}
	}

	logger.Info("run finished", "jobs", len(report.Steps))
	return report, nil
}

func runJob(ctx context.Context, job api.StepConfig, storage *api.GlobalStorage, settings api.Settings, opts RunOptions, logger *slog.Logger, out *StepReport) error {
	step, err := steps.NewStep(job)
	if err != nil {
		return fmt.Errorf("creating step: %w", err)
	}

	exec := &Executor{
		Storage:  storage,
		Settings: settings,
		Runner:   runnerFor(settings, storage, opts.Runner),
		Logger:   logger.With("type", job.Type),
		Progress: func(name string, value float64) {
			out.Progress = value
			if opts.Progress != nil {
				opts.Progress(name, value)
			}
		},
	}

	lc, err := exec.Run(ctx, step)
	if lc != nil {
		out.State = lc.State()
		out.History = lc.History()
	}
	return err
}

func runnerFor(settings api.Settings, storage *api.GlobalStorage, base command.Runner) command.Runner {
	if base == nil {
		base = command.NewHostRunner()
	}
	if settings.CommandEnv == api.CommandEnvTarget {
		return command.NewTargetRunner(storage.RootMountPoint(), base)
	}
	return base
}
