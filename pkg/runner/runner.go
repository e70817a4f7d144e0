// Package runner executes suite cases: for every variant it provisions a
// clean environment, installs the package, attempts the reinstall and
// compares what pip did with what the variant expects.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ajxudir/pipcheck/pkg/cases"
	"github.com/ajxudir/pipcheck/pkg/cmdexec"
	"github.com/ajxudir/pipcheck/pkg/console"
	"github.com/ajxudir/pipcheck/pkg/constants"
	"github.com/ajxudir/pipcheck/pkg/errors"
	"github.com/ajxudir/pipcheck/pkg/pipout"
	"github.com/ajxudir/pipcheck/pkg/venv"
	"github.com/ajxudir/pipcheck/pkg/verbose"
	"github.com/ajxudir/pipcheck/pkg/warnings"
)

// Runner runs variants one at a time.
//
// Fields:
//   - Suite: Provides the package name, env, placeholders and timeout
//   - Provider: Hands out a clean environment per variant
//   - Console: Progress output; nil prints nothing
//   - PrintOutput: Echo pip output for passing variants too
//   - Target: Label of the pip under test, shown in progress and report
type Runner struct {
	Suite       *cases.Suite
	Provider    venv.Provider
	Console     *console.Console
	PrintOutput bool
	Target      string

	now func() time.Time
}

// New creates a Runner for the suite using provider for environments.
func New(s *cases.Suite, provider venv.Provider, con *console.Console) *Runner {
	if con == nil {
		con = console.Discard()
	}
	return &Runner{
		Suite:    s,
		Provider: provider,
		Console:  con,
		Target:   TargetLabel(s),
		now:      time.Now,
	}
}

// TargetLabel describes the pip pin of a suite, e.g. "pip==23.0.1".
func TargetLabel(s *cases.Suite) string {
	if len(s.Pip) == 0 {
		return "bundled pip"
	}
	return cmdexec.Join(s.ExpandAll(s.Pip)...)
}

// Run executes every variant of cs in order and returns one Result per
// variant. Execution errors never stop the run. When ctx is cancelled the
// remaining variants are recorded as errors without being executed.
func (r *Runner) Run(ctx context.Context, cs []cases.Case) *Report {
	if r.now == nil {
		r.now = time.Now
	}
	if r.Console == nil {
		r.Console = console.Discard()
	}

	report := &Report{
		Results: make([]Result, 0, cases.VariantCount(cs)),
		Target:  r.Target,
		Started: r.now(),
	}

	for _, c := range cs {
		for i, v := range c.Variants {
			res := r.runVariant(ctx, c, i, v)
			report.Results = append(report.Results, res)
		}
		r.Console.CaseEnd()
	}

	report.Finished = r.now()
	verbose.Infof("Run finished: %s", report.Summary())
	return report
}

// runVariant executes one variant and never returns without a Result.
func (r *Runner) runVariant(ctx context.Context, c cases.Case, index int, v cases.Variant) Result {
	start := r.now()
	res := Result{
		Case:     c.Name,
		Variant:  index,
		Options:  v.Options,
		Comment:  v.Comment,
		Expected: v.ExpectReinstall,
	}

	r.Console.VariantStart(c.Name, v.Options, r.Target)
	r.Console.Comment(v.Comment)

	if err := ctx.Err(); err != nil {
		r.fail(&res, fmt.Errorf("not run: %w", err), "")
		return res
	}

	env, err := r.Provider.Provision(ctx)
	if err != nil {
		r.fail(&res, err, "")
		res.Duration = r.now().Sub(start)
		return res
	}
	defer func() {
		if err := r.Provider.Teardown(env); err != nil {
			warnings.Warnf("%s %v\n", constants.IconWarn, err)
		}
	}()

	installArgs := r.Suite.ExpandAll(c.Install)
	r.Console.Step(installArgs, false)
	out, cmdLine, err := r.pip(ctx, env, installArgs, errors.StepInstall)
	res.InstallCommand = cmdLine
	if err != nil {
		r.fail(&res, err, out)
		res.Duration = r.now().Sub(start)
		return res
	}
	if first := pipout.Parse(r.Suite.Package, out); !first.Installed || first.Uninstalled || first.AlreadySatisfied {
		r.fail(&res, errors.NewStepError(errors.StepInstall, cmdLine, 0,
			fmt.Errorf("expected a fresh install of %s, got %s", r.Suite.Package, first.Summary())), out)
		res.Duration = r.now().Sub(start)
		return res
	}

	reinstallArgs := r.Suite.ExpandAll(c.ReinstallArgs(v))
	r.Console.Step(reinstallArgs, true)
	out, cmdLine, err = r.pip(ctx, env, reinstallArgs, errors.StepReinstall)
	res.ReinstallCommand = cmdLine
	res.Output = out
	if err != nil {
		r.Console.Observed("error")
		r.fail(&res, err, out)
		res.Duration = r.now().Sub(start)
		return res
	}

	obs := pipout.Parse(r.Suite.Package, out)
	r.Console.Observed(obs.Summary())
	res.Observed = obs.Reinstalled()
	res.Summary = obs.Summary()
	res.FromVersion = obs.FromVersion
	res.ToVersion = obs.ToVersion
	res.Status, res.Outcome = Evaluate(res.Expected, res.Observed)

	if res.Status != constants.StatusPass || r.PrintOutput {
		r.Console.Output(out)
	}
	r.Console.Outcome(res.Status, res.Outcome)
	res.Duration = r.now().Sub(start)
	return res
}

// pip runs "python -m pip install <args...>" in env with the suite's
// environment overrides.
func (r *Runner) pip(ctx context.Context, env *venv.Env, args []string, step string) (string, string, error) {
	c := env.Pip(append([]string{"install"}, args...)...)
	c.Env = r.Suite.ExpandedEnv()
	c.TimeoutSeconds = r.Suite.TimeoutSeconds

	res, err := cmdexec.Run(ctx, c)
	if err != nil {
		return string(res.Output), c.String(), errors.NewStepError(step, c.String(), res.ExitCode, err)
	}
	return string(res.Output), c.String(), nil
}

// fail records an execution error on res.
func (r *Runner) fail(res *Result, err error, output string) {
	res.Status = constants.StatusError
	res.Error = err.Error()
	res.Outcome = "error: " + err.Error()
	if output != "" {
		res.Output = output
		r.Console.Output(output)
	}
	verbose.Printf("Variant %s #%d errored: %v", res.Case, res.Variant, err)
	r.Console.Outcome(res.Status, res.Outcome)
}

// Evaluate compares an observation with the expectation.
//
// Returns:
//   - status: constants.StatusPass or constants.StatusFail
//   - outcome: The outcome comment
func Evaluate(expected, observed bool) (status, outcome string) {
	switch {
	case observed == expected && observed:
		return constants.StatusPass, constants.OutcomeReinstalled
	case observed == expected:
		return constants.StatusPass, constants.OutcomeNotReinstalled
	case observed:
		return constants.StatusFail, constants.OutcomeUnexpected
	default:
		return constants.StatusFail, constants.OutcomeMissingReinstall
	}
}
