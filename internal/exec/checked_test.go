package exec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scerrors "github.com/NielsdaWheelz/mkservice/internal/errors"
)

func TestRunChecked(t *testing.T) {
	skipOnWindows(t)
	r := NewRealRunner()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		require.NoError(t, RunChecked(ctx, r, "sh", []string{"-c", "exit 0"}, RunOpts{}))
	})

	t.Run("non-zero exit", func(t *testing.T) {
		err := RunChecked(ctx, r, "sh", []string{"-c", "echo boom >&2; exit 3"}, RunOpts{})
		require.Error(t, err)

		se, ok := scerrors.AsScaffoldError(err)
		require.True(t, ok)
		assert.Equal(t, scerrors.ECommandFailed, se.Code)
		assert.Equal(t, "3", se.Details["exit_code"])
		assert.Equal(t, "sh -c 'echo boom >&2; exit 3'", se.Details["command"])
		assert.Contains(t, se.Msg, "boom")
	})

	t.Run("missing binary", func(t *testing.T) {
		err := RunChecked(ctx, r, "mkservice-definitely-missing-binary", nil, RunOpts{})
		require.Error(t, err)
		assert.Equal(t, scerrors.ECommandFailed, scerrors.GetCode(err))
		se, _ := scerrors.AsScaffoldError(err)
		assert.NotContains(t, se.Details, "exit_code")
	})
}
