// Package prepare builds the local fixtures a suite installs from: a pip
// cache primed with VCS builds, a wheelhouse of prebuilt wheels and archives,
// and a git checkout for editable installs. Fixtures that already exist are
// left alone, so deleting a directory is how it gets rebuilt.
package prepare

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ajxudir/pipcheck/pkg/cases"
	"github.com/ajxudir/pipcheck/pkg/cmdexec"
	"github.com/ajxudir/pipcheck/pkg/errors"
	"github.com/ajxudir/pipcheck/pkg/verbose"
)

// Fixture names.
const (
	FixtureCache      = "cache"
	FixtureWheelhouse = "wheelhouse"
	FixtureSource     = "src"
)

// StepResult records what happened to one fixture.
//
// Fields:
//   - Fixture: One of the Fixture* constants
//   - Path: Directory the fixture lives in
//   - Skipped: The fixture already existed or nothing was configured
//   - Reason: Why it was skipped
//   - Commands: Number of commands run to build it
type StepResult struct {
	Fixture  string
	Path     string
	Skipped  bool
	Reason   string
	Commands int
}

// Run builds every configured fixture of the suite in order: cache,
// wheelhouse, source checkout. It stops at the first failing command and
// removes the fixture that was being built so the next run retries it.
//
// Parameters:
//   - ctx: Cancels the running command
//   - s: Loaded suite; a nil Prepare section builds nothing
//
// Returns:
//   - []StepResult: One entry per fixture handled before any failure
//   - error: A StepError for the failing command
func Run(ctx context.Context, s *cases.Suite) ([]StepResult, error) {
	cfg := s.Prepare
	if cfg == nil {
		verbose.Info("Prepare: suite has no prepare section")
		return nil, nil
	}

	python, err := cmdexec.Split(s.Python)
	if err != nil {
		return nil, errors.NewStepError(errors.StepPrepare, s.Python, -1, err)
	}
	p := &preparer{python: python, timeout: s.TimeoutSeconds}

	var results []StepResult

	cache, err := p.cache(ctx, s.CacheDir(), cfg.CacheRefs)
	results = append(results, cache)
	if err != nil {
		return results, err
	}

	wheelhouse, err := p.wheelhouse(ctx, s.WheelhouseDir(), cfg.WheelhouseRefs, cfg.DownloadRefs)
	results = append(results, wheelhouse)
	if err != nil {
		return results, err
	}

	if cfg.Source != nil {
		src, err := p.source(ctx, s.SrcDir(), cfg.Source)
		results = append(results, src)
		if err != nil {
			return results, err
		}
	}

	return results, nil
}

type preparer struct {
	python  []string
	timeout int
}

// pip builds "<python> -m pip <args...>".
func (p *preparer) pip(args ...string) cmdexec.Command {
	full := append([]string{}, p.python[1:]...)
	full = append(full, "-m", "pip")
	full = append(full, args...)
	return cmdexec.Command{Name: p.python[0], Args: full, TimeoutSeconds: p.timeout}
}

// run executes commands in order and removes cleanup on failure.
func (p *preparer) run(ctx context.Context, cleanup string, cmds []cmdexec.Command) error {
	for _, c := range cmds {
		res, err := cmdexec.Run(ctx, c)
		if err != nil {
			if cleanup != "" {
				_ = os.RemoveAll(cleanup)
			}
			return errors.NewStepError(errors.StepPrepare, c.String(), res.ExitCode, err)
		}
	}
	return nil
}

// cache primes the pip cache by building each ref into a throwaway wheel dir.
func (p *preparer) cache(ctx context.Context, dir string, refs []string) (StepResult, error) {
	result := StepResult{Fixture: FixtureCache, Path: dir}
	if skip, reason := shouldSkip(dir, len(refs)); skip {
		return skipped(result, reason), nil
	}

	tmp, err := os.MkdirTemp("", "pipcheck-wheels-")
	if err != nil {
		return result, fmt.Errorf("failed to create temporary wheel dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	cmds := make([]cmdexec.Command, 0, len(refs))
	for _, ref := range refs {
		cmds = append(cmds, p.pip("wheel", "--no-index", "--cache-dir", dir, "--wheel-dir", tmp, ref))
	}
	verbose.WithDocRef("prepare", fmt.Sprintf("Prepare: priming cache %s with %d refs", dir, len(refs)))
	result.Commands = len(cmds)
	return result, p.run(ctx, dir, cmds)
}

// wheelhouse builds wheels for wheelRefs and downloads downloadRefs as-is.
func (p *preparer) wheelhouse(ctx context.Context, dir string, wheelRefs, downloadRefs []string) (StepResult, error) {
	result := StepResult{Fixture: FixtureWheelhouse, Path: dir}
	if skip, reason := shouldSkip(dir, len(wheelRefs)+len(downloadRefs)); skip {
		return skipped(result, reason), nil
	}

	cmds := make([]cmdexec.Command, 0, len(wheelRefs)+len(downloadRefs))
	for _, ref := range wheelRefs {
		cmds = append(cmds, p.pip("wheel", "--no-index", "--no-cache", "--wheel-dir", dir, ref))
	}
	for _, ref := range downloadRefs {
		cmds = append(cmds, p.pip("download", "--no-deps", "--no-cache", "--dest", dir, ref))
	}
	verbose.WithDocRef("prepare", fmt.Sprintf("Prepare: building wheelhouse %s", dir))
	result.Commands = len(cmds)
	return result, p.run(ctx, dir, cmds)
}

// source clones the configured repository into dir/<src.Dir>.
func (p *preparer) source(ctx context.Context, dir string, src *cases.SourceCfg) (StepResult, error) {
	checkout := filepath.Join(dir, src.Dir)
	result := StepResult{Fixture: FixtureSource, Path: checkout}
	if skip, reason := shouldSkip(checkout, 1); skip {
		return skipped(result, reason), nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	args := []string{"clone"}
	if src.Ref != "" {
		args = append(args, "--branch", src.Ref)
	}
	args = append(args, src.URL, src.Dir)

	verbose.WithDocRef("prepare", fmt.Sprintf("Prepare: cloning %s into %s", src.URL, checkout))
	result.Commands = 1
	return result, p.run(ctx, checkout, []cmdexec.Command{{
		Name:           "git",
		Args:           args,
		Dir:            dir,
		TimeoutSeconds: p.timeout,
	}})
}

// shouldSkip reports whether a fixture is already present or has nothing to build.
func shouldSkip(dir string, work int) (bool, string) {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return true, "already exists"
	}
	if work == 0 {
		return true, "nothing configured"
	}
	return false, ""
}

func skipped(r StepResult, reason string) StepResult {
	verbose.Infof("Prepare: %s skipped (%s): %s", r.Fixture, reason, r.Path)
	r.Skipped = true
	r.Reason = reason
	return r
}
