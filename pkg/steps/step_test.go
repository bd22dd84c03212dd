package steps

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systemstart/install-jobs/pkg/command"
)

func TestStepContext_Exec(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t, nil)
		f.runner.AddResult("/bin/helper", []string{"a"}, command.Result{Stdout: "ok"})

		var executed int
		ctx := f.context()
		ctx.OnExecute = func() { executed++ }

		result, err := ctx.Exec("/bin/helper", "a")
		require.NoError(t, err)
		assert.Equal(t, "ok", result.Stdout)

		_, err = ctx.Exec("/bin/helper", "b")
		require.NoError(t, err)
		assert.Equal(t, 1, executed)
		assert.True(t, ctx.Executing())
	})

	t.Run("non-zero exit is ignored by default", func(t *testing.T) {
		f := newFixture(t, nil)
		f.runner.AddResult("/bin/helper", nil, command.Result{ExitCode: 2, Stderr: "nope"})

		result, err := f.context().Exec("/bin/helper")
		require.NoError(t, err)
		assert.Equal(t, 2, result.ExitCode)
	})

	t.Run("non-zero exit fails when checked", func(t *testing.T) {
		f := newFixture(t, nil)
		f.settings.CheckExitStatus = true
		f.runner.AddResult("/bin/helper", nil, command.Result{ExitCode: 2, Stderr: "nope"})

		_, err := f.context().Exec("/bin/helper")
		failure, ok := AsFailure(err)
		require.True(t, ok)
		assert.Equal(t, KindCommandFailed, failure.Kind)
		assert.Equal(t, "/bin/helper exited with status 2: nope", failure.Message)
	})

	t.Run("start failure is an error", func(t *testing.T) {
		f := newFixture(t, nil)
		boom := errors.New("exec: not found")
		f.runner.AddError("/bin/helper", nil, boom)

		_, err := f.context().Exec("/bin/helper")
		require.ErrorIs(t, err, boom)
		_, ok := AsFailure(err)
		assert.False(t, ok)
	})
}

func TestStepContext_Script(t *testing.T) {
	f := newFixture(t, nil)
	f.settings.ScriptDir = "/opt/scripts"
	assert.Equal(t, "/opt/scripts/grubcfg", f.context().Script("grubcfg"))
}

func TestFailure_Error(t *testing.T) {
	inner := errors.New("disk full")
	f := &Failure{Kind: KindExecution, Title: "Generating fstab.", Message: "disk full", Err: inner}

	assert.Equal(t, "Generating fstab.: disk full", f.Error())
	assert.ErrorIs(t, f, inner)

	wrapped := errors.Join(errors.New("job failed"), f)
	got, ok := AsFailure(wrapped)
	require.True(t, ok)
	assert.Same(t, f, got)
}
