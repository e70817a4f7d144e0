package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajxudir/pipcheck/pkg/cases"
	"github.com/ajxudir/pipcheck/pkg/cmdexec"
	"github.com/ajxudir/pipcheck/pkg/console"
	"github.com/ajxudir/pipcheck/pkg/constants"
	"github.com/ajxudir/pipcheck/pkg/errors"
	"github.com/ajxudir/pipcheck/pkg/output"
	"github.com/ajxudir/pipcheck/pkg/report"
	"github.com/ajxudir/pipcheck/pkg/runner"
	"github.com/ajxudir/pipcheck/pkg/venv"
	"github.com/ajxudir/pipcheck/pkg/verbose"
	"github.com/ajxudir/pipcheck/pkg/warnings"
)

var (
	runConfigFlag      string
	runReportFlag      string
	runSkipPrepareFlag bool
	runPrintOutputFlag bool
	runOutputFlag      string
	runQuietFlag       bool
)

// environmentTemplate is the part of venv.Template the run command uses.
type environmentTemplate interface {
	venv.Provider
	Build(ctx context.Context) error
	Close() error
}

var (
	newTemplateFunc = func(opts venv.Options) (environmentTemplate, error) {
		t, err := venv.New(opts)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	writeReportFunc = report.Write
	newRunIDFunc    = report.NewRunID
)

var runCmd = &cobra.Command{
	Use:   "run [case...]",
	Short: "Run the reinstall cases and write an HTML report",
	Long: `Run every case of the suite (or only the named ones). Each variant gets a
fresh virtual environment: the case's install step runs first, then the
reinstall step with the variant's options, and pip's output decides whether
the package was reinstalled.

Exit code 1 means at least one variant failed or errored; the report lists
which.`,
	SilenceUsage: true,
	RunE:         runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runConfigFlag, "config", "c", "", "Suite file path (default: .pipcheck.yml, then the built-in suite)")
	runCmd.Flags().StringVar(&runReportFlag, "report", constants.DefaultReportFile, "HTML report path")
	runCmd.Flags().BoolVar(&runSkipPrepareFlag, "skip-prepare", false, "Do not build missing fixtures before running")
	runCmd.Flags().BoolVar(&runPrintOutputFlag, "print-output", false, "Print pip output for every variant, not only failures")
	runCmd.Flags().StringVarP(&runOutputFlag, "output", "o", "", "Summary format: json, csv, xml (default: table)")
	runCmd.Flags().BoolVarP(&runQuietFlag, "quiet", "q", false, "Only list failing and errored variants in the summary")
}

// runRun executes the run command.
//
// Parameters:
//   - cmd: Cobra command instance
//   - args: Case names to run; empty runs every case
//
// Returns:
//   - error: PartialSuccessError when variants failed or errored; ExitError
//     when the run could not start
func runRun(cmd *cobra.Command, args []string) error {
	if err := output.ValidateFormatFlag(runOutputFlag); err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}
	format := output.ParseFormat(runOutputFlag)
	structured := output.IsStructuredFormat(format)

	// Progress goes to stderr when stdout carries a structured summary.
	var progress io.Writer = os.Stdout
	if structured {
		progress = os.Stderr
	}
	collector := &warnings.Collector{Forward: os.Stderr}
	restoreWarnings := warnings.SetWarningWriter(collector)
	defer restoreWarnings()

	s, err := loadSuite(runConfigFlag)
	if err != nil {
		return err
	}
	cs, err := selectCases(s, args)
	if err != nil {
		return err
	}

	lock, err := lockWorkspace(s)
	if err != nil {
		return err
	}
	defer releaseLock(lock)

	ctx, stop := signalContext()
	defer stop()

	if err := runPreflight(ctx, s); err != nil {
		return err
	}

	con := console.New(progress)
	if !runSkipPrepareFlag {
		if _, err := prepareFixtures(ctx, s, con); err != nil {
			return err
		}
	}

	tmpl, err := newTemplateFunc(venv.Options{
		Python:         s.Python,
		Bootstrap:      s.ExpandAll(s.Bootstrap),
		Pip:            s.ExpandAll(s.Pip),
		TimeoutSeconds: s.TimeoutSeconds,
	})
	if err != nil {
		return errors.NewExitError(errors.ExitFailure, err)
	}
	defer func() {
		if err := tmpl.Close(); err != nil {
			warnings.Warnf("%s  failed to remove environments: %v\n", constants.IconWarn, err)
		}
	}()

	con.Infof("Building template environment with %s (%s)", s.Python, runner.TargetLabel(s))
	if err := tmpl.Build(ctx); err != nil {
		verbose.WithDocRef("venv", fmt.Sprintf("Template environment failed: %v", err))
		return errors.NewExitError(errors.ExitFailure, fmt.Errorf("failed to build template environment: %w", err))
	}
	con.Infof("Running %d variants of %d cases from %s\n", cases.VariantCount(cs), len(cs), suiteLabel(s))

	r := runner.New(s, tmpl, con)
	r.PrintOutput = runPrintOutputFlag
	rep := r.Run(ctx, cs)

	runID := newRunIDFunc()
	doc := report.Build(rep, cs, report.Meta{RunID: runID, Suite: suiteLabel(s), Target: rep.Target})
	if err := writeReportFunc(runReportFlag, doc); err != nil {
		return errors.NewExitError(errors.ExitFailure, fmt.Errorf("failed to write report: %w", err))
	}
	verbose.Infof("Report written: %s", runReportFlag)

	if structured {
		if err := printRunStructured(rep, runID, collector.Messages(), format); err != nil {
			return err
		}
		return rep.Err()
	}

	if runQuietFlag {
		fmt.Print(rep.FormatResultsQuiet())
		if rep.Passed() {
			fmt.Println(rep.Summary())
		}
	} else {
		fmt.Print(rep.FormatResults())
	}
	fmt.Printf("\nReport: %s\n", runReportFlag)
	return rep.Err()
}

// printRunStructured writes one entry per variant in the requested format.
func printRunStructured(rep *runner.Report, runID string, warns []string, format output.Format) error {
	result := output.NewRunResult(runID, runReportFlag)
	for _, res := range rep.Results {
		result.Add(output.RunEntry{
			Case:     res.Case,
			Variant:  res.Variant,
			Options:  cmdexec.Join(res.Options...),
			Expected: res.Expected,
			Observed: res.Observed,
			Status:   res.Status,
			Detail:   resultDetail(res),
		})
	}
	result.Warnings = warns
	return output.WriteRunResult(os.Stdout, format, result)
}

// resultDetail is the one-line explanation shown for non-passing variants.
func resultDetail(res runner.Result) string {
	switch res.Status {
	case constants.StatusFail:
		return res.Outcome
	case constants.StatusError:
		return strings.SplitN(res.Error, "\n", 2)[0]
	}
	return ""
}
