package command

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockRunner is a test double that records calls and replays canned results.
// Unregistered commands succeed with an empty result unless Strict is set.
type MockRunner struct {
	Strict bool

	mu      sync.Mutex
	results map[string]Result
	errors  map[string]error
	calls   []Call
}

// NewMockRunner creates an empty MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		results: make(map[string]Result),
		errors:  make(map[string]error),
	}
}

// AddResult registers the result returned for command with exactly args.
func (m *MockRunner) AddResult(command string, args []string, result Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[buildKey(command, args)] = result
}

// AddError registers an error returned for command with exactly args.
func (m *MockRunner) AddError(command string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[buildKey(command, args)] = err
}

// Run records the call and returns the registered outcome.
func (m *MockRunner) Run(_ context.Context, command string, args ...string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Command: command, Args: append([]string(nil), args...)})

	key := buildKey(command, args)
	if err, ok := m.errors[key]; ok {
		return Result{}, err
	}
	if result, ok := m.results[key]; ok {
		return result, nil
	}
	if m.Strict {
		return Result{}, fmt.Errorf("no mock result for command: %s %v", command, args)
	}
	return Result{}, nil
}

// Calls returns a copy of all recorded invocations.
func (m *MockRunner) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]Call, len(m.calls))
	copy(calls, m.calls)
	return calls
}

func buildKey(command string, args []string) string {
	return command + "\x00" + strings.Join(args, "\x00")
}

var _ Runner = (*MockRunner)(nil)
