package cmd

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajxudir/pipcheck/pkg/cases"
	"github.com/ajxudir/pipcheck/pkg/errors"
	"github.com/ajxudir/pipcheck/pkg/preflight"
	"github.com/ajxudir/pipcheck/pkg/prepare"
)

func stubPrepare(t *testing.T, results []prepare.StepResult, err error) {
	t.Helper()
	oldPrepare, oldPreflight, oldConfig := prepareFunc, preflightFunc, prepareConfigFlag
	t.Cleanup(func() {
		prepareFunc, preflightFunc, prepareConfigFlag = oldPrepare, oldPreflight, oldConfig
	})
	preflightFunc = func(ctx context.Context, s *cases.Suite) *preflight.ValidateResult {
		return &preflight.ValidateResult{}
	}
	prepareFunc = func(ctx context.Context, s *cases.Suite) ([]prepare.StepResult, error) {
		return results, err
	}
}

// TestRunPrepare tests the table printed by the prepare command.
func TestRunPrepare(t *testing.T) {
	_, path := writeSuite(t, cmdSuite)
	stubPrepare(t, []prepare.StepResult{
		{Fixture: prepare.FixtureCache, Path: "/work/cache", Commands: 3},
		{Fixture: prepare.FixtureWheelhouse, Path: "/work/wheelhouse", Skipped: true, Reason: "already exists"},
	}, nil)
	prepareConfigFlag = path

	var err error
	out := captureStdout(t, func() {
		err = runPrepare(prepareCmd, nil)
	})

	require.NoError(t, err)
	assert.Contains(t, out, "FIXTURE")
	assert.Contains(t, out, "built")
	assert.Contains(t, out, "skipped: already exists")
	assert.Contains(t, out, "/work/wheelhouse")
}

func TestRunPrepare_NothingConfigured(t *testing.T) {
	_, path := writeSuite(t, cmdSuite)
	stubPrepare(t, nil, nil)
	prepareConfigFlag = path

	out := captureStdout(t, func() {
		require.NoError(t, runPrepare(prepareCmd, nil))
	})
	assert.Contains(t, out, "Nothing to prepare")
}

// TestRunPrepare_Failure checks that the fixtures handled before the failure
// are still printed and the command exits with ExitFailure.
func TestRunPrepare_Failure(t *testing.T) {
	_, path := writeSuite(t, cmdSuite)
	stepErr := errors.NewStepError(errors.StepPrepare, "git clone x", 128, stderrors.New("repository not found"))
	stubPrepare(t, []prepare.StepResult{
		{Fixture: prepare.FixtureCache, Path: "/work/cache", Skipped: true, Reason: "nothing configured"},
	}, stepErr)
	prepareConfigFlag = path

	var err error
	out := captureStdout(t, func() {
		err = runPrepare(prepareCmd, nil)
	})

	require.Error(t, err)
	assert.Equal(t, errors.ExitFailure, errors.GetExitCode(err))
	assert.Contains(t, err.Error(), "repository not found")
	assert.Contains(t, out, "skipped: nothing configured")

	se, ok := errors.IsStepError(err)
	require.True(t, ok)
	assert.Equal(t, errors.StepPrepare, se.Step)
}

func TestRunPrepare_PreflightFails(t *testing.T) {
	_, path := writeSuite(t, cmdSuite)
	stubPrepare(t, nil, nil)
	prepareConfigFlag = path
	preflightFunc = func(ctx context.Context, s *cases.Suite) *preflight.ValidateResult {
		return &preflight.ValidateResult{Errors: []preflight.ValidationError{{Command: "git"}}}
	}

	err := runPrepare(prepareCmd, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ExitFailure, errors.GetExitCode(err))
	assert.Contains(t, err.Error(), "command not found: git")
}
