package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ajxudir/pipcheck/pkg/cases"
	"github.com/ajxudir/pipcheck/pkg/console"
	"github.com/ajxudir/pipcheck/pkg/constants"
	"github.com/ajxudir/pipcheck/pkg/errors"
	"github.com/ajxudir/pipcheck/pkg/preflight"
	"github.com/ajxudir/pipcheck/pkg/prepare"
	"github.com/ajxudir/pipcheck/pkg/verbose"
	"github.com/ajxudir/pipcheck/pkg/warnings"
	"github.com/ajxudir/pipcheck/pkg/workspace"
)

var (
	loadSuiteFunc     = cases.LoadSuite
	getwdFunc         = os.Getwd
	acquireLockFunc   = workspace.Acquire
	preflightFunc     = preflight.ValidateSuite
	prepareFunc       = prepare.Run
	notifyContextFunc = signal.NotifyContext
)

// loadSuite loads the suite file (or the local/embedded default) relative to
// the working directory. Any failure is a config error.
//
// Parameters:
//   - path: Value of --config, may be empty
//
// Returns:
//   - *cases.Suite: The validated suite
//   - error: ExitError with ExitConfigError on read, decode or validation failure
func loadSuite(path string) (*cases.Suite, error) {
	workDir, err := getwdFunc()
	if err != nil {
		return nil, errors.NewExitError(errors.ExitFailure, fmt.Errorf("failed to resolve working directory: %w", err))
	}

	s, err := loadSuiteFunc(path, workDir)
	if err != nil {
		verbose.Infof("Exit code %d (config error): %v", errors.ExitConfigError, err)
		return nil, errors.NewExitError(errors.ExitConfigError,
			fmt.Errorf("%w\n\n%s Run 'pipcheck config --validate' for details, or see docs/suite.md", err, constants.IconLightbulb))
	}
	return s, nil
}

// selectCases narrows the suite to the named cases; unknown names are a config error.
func selectCases(s *cases.Suite, names []string) ([]cases.Case, error) {
	cs, err := s.Select(names)
	if err != nil {
		return nil, errors.NewExitError(errors.ExitConfigError, err)
	}
	return cs, nil
}

// suiteLabel names the suite for progress and report headers.
func suiteLabel(s *cases.Suite) string {
	if s.Source() == "" {
		return "(embedded default)"
	}
	return s.Source()
}

// lockWorkspace takes the working-directory lock of the suite.
func lockWorkspace(s *cases.Suite) (*workspace.Lock, error) {
	lock, err := acquireLockFunc(s.Dir())
	if err != nil {
		return nil, errors.NewExitError(errors.ExitFailure, err)
	}
	return lock, nil
}

// releaseLock releases a lock taken by lockWorkspace, warning on failure.
func releaseLock(lock *workspace.Lock) {
	if err := lock.Release(); err != nil {
		warnings.Warnf("%s  failed to release %s: %v\n", constants.IconWarn, lock.Path(), err)
	}
}

// signalContext returns a context cancelled on Ctrl-C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return notifyContextFunc(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runPreflight checks the interpreter (and git when needed) before anything
// is executed.
//
// Returns:
//   - error: ExitError with ExitFailure listing every missing command
func runPreflight(ctx context.Context, s *cases.Suite) error {
	result := preflightFunc(ctx, s)
	for _, w := range result.Warnings {
		warnings.Warnf("%s  %s\n", constants.IconWarn, w)
	}
	if result.HasErrors() {
		verbose.Infof("Exit code %d: preflight failed", errors.ExitFailure)
		return errors.NewExitError(errors.ExitFailure, fmt.Errorf("%s", result.ErrorMessage()))
	}
	return nil
}

// prepareFixtures builds the suite's missing fixtures and reports each one on con.
func prepareFixtures(ctx context.Context, s *cases.Suite, con *console.Console) ([]prepare.StepResult, error) {
	results, err := prepareFunc(ctx, s)
	for _, r := range results {
		if r.Skipped {
			verbose.Infof("Prepare: %s skipped (%s)", r.Fixture, r.Reason)
			continue
		}
		con.Infof("Prepared %s: %s", r.Fixture, r.Path)
	}
	if err != nil {
		verbose.WithDocRef("prepare", fmt.Sprintf("Preparing fixtures failed: %v", err))
		return results, errors.NewExitError(errors.ExitFailure, fmt.Errorf("failed to prepare fixtures: %w", err))
	}
	return results, nil
}
