// Package venv provisions the isolated Python environments variants run in.
//
// A template environment is built once per run and saved. Every variant then
// gets a fresh copy restored at the same absolute path, because virtual
// environments embed their own location and cannot be moved.
package venv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"

	"github.com/ajxudir/pipcheck/pkg/cmdexec"
	"github.com/ajxudir/pipcheck/pkg/constants"
	"github.com/ajxudir/pipcheck/pkg/errors"
	"github.com/ajxudir/pipcheck/pkg/verbose"
	"github.com/ajxudir/pipcheck/pkg/warnings"
)

// Provider hands out clean environments.
type Provider interface {
	// Provision returns a freshly restored environment.
	Provision(ctx context.Context) (*Env, error)
	// Teardown removes an environment returned by Provision.
	Teardown(env *Env) error
}

// Env is a provisioned virtual environment.
type Env struct {
	Dir string
}

// Python returns the environment's interpreter path.
func (e *Env) Python() string {
	return PythonPath(e.Dir)
}

// Pip returns the command "<python> -m pip <args...>" for this environment.
func (e *Env) Pip(args ...string) cmdexec.Command {
	return cmdexec.Command{
		Name: e.Python(),
		Args: append([]string{"-m", "pip"}, args...),
	}
}

// PythonPath returns the interpreter location inside a virtualenv directory.
func PythonPath(dir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(dir, "Scripts", "python.exe")
	}
	return filepath.Join(dir, "bin", "python")
}

// Options configure the template environment.
//
// Fields:
//   - Python: Interpreter command line used for "-m venv", e.g. "python3" or "py -3"
//   - Bootstrap: Packages installed before pip is pinned
//   - Pip: Install arguments for pip itself; empty keeps the bundled pip
//   - TimeoutSeconds: Per-command timeout, 0 for none
//   - BaseDir: Parent directory for the working directories; empty uses the system temp dir
type Options struct {
	Python         string
	Bootstrap      []string
	Pip            []string
	TimeoutSeconds int
	BaseDir        string
}

// Template builds one environment and restores copies of it.
type Template struct {
	opts  Options
	root  string
	live  string
	saved string
	built bool
}

// fs is the filesystem used for saving and restoring environments.
var fs afero.Fs = afero.NewOsFs()

// New creates the working directories for a template. Call Build before
// Provision and Close when done.
func New(opts Options) (*Template, error) {
	if opts.Python == "" {
		opts.Python = "python3"
	}
	root, err := os.MkdirTemp(opts.BaseDir, "pipcheck-")
	if err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}
	return &Template{
		opts:  opts,
		root:  root,
		live:  filepath.Join(root, "venv"),
		saved: filepath.Join(root, "venv-template"),
	}, nil
}

// Dir returns the path every provisioned environment lives at.
func (t *Template) Dir() string {
	return t.live
}

// Build creates the template environment and saves it.
//
// Steps: "<python> -m venv", install bootstrap packages, then
// "pip install --upgrade <pip...>" when a pip pin is configured.
//
// Returns:
//   - error: A StepError for the first failed step
func (t *Template) Build(ctx context.Context) error {
	python, err := cmdexec.Split(t.opts.Python)
	if err != nil {
		return errors.NewStepError(errors.StepProvision, t.opts.Python, -1, err)
	}

	verbose.WithDocRef("venv", fmt.Sprintf("Building template environment in %s", t.live))
	venvArgs := append([]string{}, python[1:]...)
	venvArgs = append(venvArgs, "-m", "venv", t.live)
	steps := []cmdexec.Command{{Name: python[0], Args: venvArgs}}

	env := &Env{Dir: t.live}
	if len(t.opts.Bootstrap) > 0 {
		steps = append(steps, env.Pip(append([]string{"install"}, t.opts.Bootstrap...)...))
	}
	if len(t.opts.Pip) > 0 {
		steps = append(steps, env.Pip(append([]string{"install", "--upgrade"}, t.opts.Pip...)...))
	}

	for _, c := range steps {
		c.TimeoutSeconds = t.opts.TimeoutSeconds
		res, err := cmdexec.Run(ctx, c)
		if err != nil {
			return errors.NewStepError(errors.StepProvision, c.String(), res.ExitCode, err)
		}
	}

	if err := fs.RemoveAll(t.saved); err != nil {
		return fmt.Errorf("failed to clear saved template: %w", err)
	}
	if err := copyTree(fs, t.live, t.saved); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	t.built = true
	verbose.Infof("Template environment saved to %s", t.saved)
	return nil
}

// Provision restores the saved template into the live path.
func (t *Template) Provision(ctx context.Context) (*Env, error) {
	if !t.built {
		return nil, errors.NewStepError(errors.StepProvision, "", -1, fmt.Errorf("template environment has not been built"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := fs.RemoveAll(t.live); err != nil {
		return nil, errors.NewStepError(errors.StepProvision, "", -1, fmt.Errorf("failed to remove previous environment: %w", err))
	}
	if err := copyTree(fs, t.saved, t.live); err != nil {
		return nil, errors.NewStepError(errors.StepProvision, "", -1, fmt.Errorf("failed to restore template: %w", err))
	}
	verbose.Debugf("Environment restored at %s", t.live)
	return &Env{Dir: t.live}, nil
}

// Teardown removes a provisioned environment.
func (t *Template) Teardown(env *Env) error {
	if env == nil {
		return nil
	}
	if err := fs.RemoveAll(env.Dir); err != nil {
		return fmt.Errorf("failed to remove environment %s: %w", env.Dir, err)
	}
	return nil
}

// Close removes the live environment, the saved template and their parent.
func (t *Template) Close() error {
	if err := fs.RemoveAll(t.root); err != nil {
		warnings.Warnf("%s failed to remove %s: %v\n", constants.IconWarn, t.root, err)
		return err
	}
	return nil
}
