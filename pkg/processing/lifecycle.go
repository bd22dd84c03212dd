package processing

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
	"github.com/systemstart/install-jobs/pkg/steps"
)

// Step lifecycle states.
const (
	StateNotStarted  = "not_started"
	StateValidating  = "validating"
	StateConfiguring = "configuring"
	StateExecuting   = "executing"
	StateSucceeded   = "succeeded"
	StateFailed      = "failed"
)

// Step lifecycle events.
const (
	EventStart        = "START"
	EventChecksPassed = "CHECKS_PASSED"
	EventExecute      = "EXECUTE"
	EventSucceed      = "SUCCEED"
	EventFail         = "FAIL"
	EventReset        = "RESET"
)

type lifecycleContext struct {
	Step string
}

// Lifecycle tracks one step from start to its outcome.
type Lifecycle struct {
	interp  *statekit.Interpreter[lifecycleContext]
	failure *steps.Failure
	history []string
}

// NewLifecycle builds and starts the state machine for the named step.
func NewLifecycle(step string) (*Lifecycle, error) {
	l := &Lifecycle{}

	machine, err := statekit.NewMachine[lifecycleContext]("step-" + step).
		WithInitial(StateNotStarted).
		WithContext(lifecycleContext{Step: step}).
		WithAction("recordFailure", func(_ *lifecycleContext, event statekit.Event) {
			if f, ok := event.Payload.(*steps.Failure); ok {
				l.failure = f
			}
		}).
		WithAction("clearFailure", func(_ *lifecycleContext, _ statekit.Event) {
			l.failure = nil
		}).
		State(StateNotStarted).
		OnEntry("clearFailure").
		On(EventStart).Target(StateValidating).Done().
		State(StateValidating).
		On(EventChecksPassed).Target(StateConfiguring).
		On(EventFail).Target(StateFailed).Done().
		State(StateConfiguring).
		On(EventExecute).Target(StateExecuting).
		On(EventSucceed).Target(StateSucceeded).
		On(EventFail).Target(StateFailed).Done().
		State(StateExecuting).
		On(EventSucceed).Target(StateSucceeded).
		On(EventFail).Target(StateFailed).Done().
		State(StateSucceeded).
		On(EventReset).Target(StateNotStarted).Done().
		State(StateFailed).
		OnEntry("recordFailure").
		On(EventReset).Target(StateNotStarted).Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("building lifecycle for %s: %w", step, err)
	}

	l.interp = statekit.NewInterpreter(machine)
	l.interp.Start()
	l.history = append(l.history, l.State())
	return l, nil
}

// Send delivers an event. Events that do not apply to the current state are ignored.
func (l *Lifecycle) Send(event string, payload any) {
	before := l.State()
	l.interp.Send(statekit.Event{Type: statekit.EventType(event), Payload: payload})
	if after := l.State(); after != before {
		l.history = append(l.history, after)
	}
}

// State returns the current state.
func (l *Lifecycle) State() string {
	return string(l.interp.State().Value)
}

// Done reports whether the step reached a terminal state.
func (l *Lifecycle) Done() bool {
	s := l.State()
	return s == StateSucceeded || s == StateFailed
}

// Failure returns the failure recorded on entry to the failed state.
func (l *Lifecycle) Failure() *steps.Failure {
	return l.failure
}

// History returns the states visited so far, in order.
func (l *Lifecycle) History() []string {
	return append([]string(nil), l.history...)
}

// Stop releases the interpreter.
func (l *Lifecycle) Stop() {
	l.interp.Stop()
}
