package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajxudir/pipcheck/pkg/cases"
	"github.com/ajxudir/pipcheck/pkg/cmdexec"
	"github.com/ajxudir/pipcheck/pkg/constants"
	"github.com/ajxudir/pipcheck/pkg/preflight"
	"github.com/ajxudir/pipcheck/pkg/prepare"
	"github.com/ajxudir/pipcheck/pkg/testutil"
	"github.com/ajxudir/pipcheck/pkg/venv"
)

const cmdSuite = `package: pip-test-package
python: python3
cases:
  - name: upgrade
    install: ["pip-test-package==0.1.1"]
    reinstall: ["pip-test-package"]
    variants:
      - options: []
        expect_reinstall: false
      - options: ["--upgrade"]
        expect_reinstall: true
        comment: "` + "`--upgrade`" + ` picks **0.1.2**"
  - name: wrong-expectation
    install: ["pip-test-package==0.1.1"]
    reinstall: ["pip-test-package"]
    variants:
      - options: []
        expect_reinstall: true
`

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	return testutil.CaptureStdout(t, fn)
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	return testutil.CaptureStderr(t, fn)
}

func captureOutput(t *testing.T, fn func()) (string, string) {
	t.Helper()
	return testutil.CaptureOutput(t, fn)
}

// writeSuite writes content to a suite file in a fresh directory and makes
// that directory the working directory seen by commands.
func writeSuite(t *testing.T, content string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "suite.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	oldGetwd := getwdFunc
	getwdFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { getwdFunc = oldGetwd })
	return dir, path
}

// fakeTemplate hands out one directory per variant without running python.
type fakeTemplate struct {
	dir         string
	buildErr    error
	built       bool
	closed      bool
	provisioned int
}

func (f *fakeTemplate) Build(ctx context.Context) error {
	if f.buildErr != nil {
		return f.buildErr
	}
	f.built = true
	return nil
}

func (f *fakeTemplate) Provision(ctx context.Context) (*venv.Env, error) {
	f.provisioned++
	return &venv.Env{Dir: f.dir}, nil
}

func (f *fakeTemplate) Teardown(env *venv.Env) error { return nil }

func (f *fakeTemplate) Close() error {
	f.closed = true
	return nil
}

// fakePip answers "python -m pip install" the way pip does for
// pip-test-package with 0.1.1 and 0.1.2 available: pinned installs are
// fresh, unpinned reinstalls are satisfied unless --upgrade is given.
func fakePip(ctx context.Context, c cmdexec.Command) (cmdexec.Result, error) {
	args := strings.Join(c.Args, " ")
	switch {
	case strings.Contains(args, "does-not-exist"):
		return cmdexec.Result{ExitCode: 1, Output: []byte("ERROR: No matching distribution found for does-not-exist\n")},
			errors.New("exit status 1")
	case strings.Contains(args, "--upgrade"):
		return cmdexec.Result{Output: []byte(
			"Uninstalling pip-test-package-0.1.1:\n  Successfully uninstalled pip-test-package-0.1.1\n" +
				"Successfully installed pip-test-package-0.1.2\n")}, nil
	case strings.Contains(args, "==0.1.1"):
		return cmdexec.Result{Output: []byte("Successfully installed pip-test-package-0.1.1\n")}, nil
	default:
		return cmdexec.Result{Output: []byte("Requirement already satisfied: pip-test-package in ./lib (0.1.1)\n")}, nil
	}
}

// runFixture swaps every external dependency of the run command.
type runFixture struct {
	template  *fakeTemplate
	report    string
	prepared  int
	preflight *preflight.ValidateResult
}

func stubRun(t *testing.T, dir string) *runFixture {
	t.Helper()
	fx := &runFixture{
		template:  &fakeTemplate{dir: filepath.Join(dir, "venv")},
		report:    filepath.Join(dir, constants.DefaultReportFile),
		preflight: &preflight.ValidateResult{},
	}

	oldRun := cmdexec.Run
	oldPreflight := preflightFunc
	oldPrepare := prepareFunc
	oldTemplate := newTemplateFunc
	oldRunID := newRunIDFunc
	oldConfig, oldReport, oldOutput := runConfigFlag, runReportFlag, runOutputFlag
	oldSkip, oldPrint, oldQuiet := runSkipPrepareFlag, runPrintOutputFlag, runQuietFlag
	t.Cleanup(func() {
		cmdexec.Run = oldRun
		preflightFunc = oldPreflight
		prepareFunc = oldPrepare
		newTemplateFunc = oldTemplate
		newRunIDFunc = oldRunID
		runConfigFlag, runReportFlag, runOutputFlag = oldConfig, oldReport, oldOutput
		runSkipPrepareFlag, runPrintOutputFlag, runQuietFlag = oldSkip, oldPrint, oldQuiet
	})

	cmdexec.Run = fakePip
	preflightFunc = func(ctx context.Context, s *cases.Suite) *preflight.ValidateResult { return fx.preflight }
	prepareFunc = func(ctx context.Context, s *cases.Suite) ([]prepare.StepResult, error) {
		fx.prepared++
		return []prepare.StepResult{{Fixture: prepare.FixtureCache, Path: s.CacheDir(), Commands: 1}}, nil
	}
	newTemplateFunc = func(opts venv.Options) (environmentTemplate, error) { return fx.template, nil }
	newRunIDFunc = func() string { return "run-1" }

	runReportFlag = fx.report
	runSkipPrepareFlag = false
	runPrintOutputFlag = false
	runOutputFlag = ""
	runQuietFlag = false
	return fx
}
