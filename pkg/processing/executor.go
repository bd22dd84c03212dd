package processing

import (
	"context"
	"log/slog"

	"github.com/systemstart/install-jobs/pkg/api"
	"github.com/systemstart/install-jobs/pkg/command"
	"github.com/systemstart/install-jobs/pkg/steps"
)

// ProgressFunc receives progress updates in [0.0, 1.0] for a step.
type ProgressFunc func(step string, progress float64)

// Executor runs single steps against a shared storage.
type Executor struct {
	Storage  *api.GlobalStorage
	Settings api.Settings
	Runner   command.Runner
	Logger   *slog.Logger
	Progress ProgressFunc
}

// Run executes step: checks in order, then Run, then progress 1.0.
//
// The returned error is nil or a *steps.Failure. The lifecycle is returned
// in its terminal state.
func (e *Executor) Run(ctx context.Context, step steps.Step) (*Lifecycle, error) {
	logger := e.logger().With("step", step.Name())

	lc, err := NewLifecycle(step.Name())
	if err != nil {
		return nil, &steps.Failure{Kind: steps.KindExecution, Title: step.PrettyName(), Message: err.Error(), Err: err}
	}
	defer lc.Stop()

	progress := newProgressTracker(step.Name(), e.Progress)

	lc.Send(EventStart, nil)
	logger.Info(step.PrettyName())

	sctx := &steps.StepContext{
		Context:   ctx,
		Storage:   e.Storage,
		Settings:  e.Settings,
		Runner:    e.Runner,
		Logger:    logger,
		OnExecute: func() { lc.Send(EventExecute, nil) },
	}

	for _, check := range step.Checks() {
		if f := check(sctx); f != nil {
			logger.Warn("precondition failed", "kind", f.Kind, "title", f.Title, "message", f.Message)
			lc.Send(EventFail, f)
			return lc, f
		}
	}
	lc.Send(EventChecksPassed, nil)

	if err := step.Run(sctx); err != nil {
		f := asStepFailure(step, err)
		logger.Warn("step failed", "kind", f.Kind, "title", f.Title, "message", f.Message)
		lc.Send(EventFail, f)
		return lc, f
	}

	lc.Send(EventSucceed, nil)
	progress.report(1.0)
	logger.Debug("step succeeded")
	return lc, nil
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func asStepFailure(step steps.Step, err error) *steps.Failure {
	if f, ok := steps.AsFailure(err); ok {
		return f
	}
	return &steps.Failure{
		Kind:    steps.KindExecution,
		Title:   step.PrettyName(),
		Message: err.Error(),
		Err:     err,
	}
}

// progressTracker drops updates that would move progress backwards.
type progressTracker struct {
	step string
	last float64
	fn   ProgressFunc
}

func newProgressTracker(step string, fn ProgressFunc) *progressTracker {
	return &progressTracker{step: step, last: -1, fn: fn}
}

func (p *progressTracker) report(value float64) {
	value = min(max(value, 0), 1)
	if value <= p.last {
		return
	}
	p.last = value
	if p.fn != nil {
		p.fn(p.step, value)
	}
}
