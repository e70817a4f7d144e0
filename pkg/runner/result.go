package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/ajxudir/pipcheck/pkg/constants"
	"github.com/ajxudir/pipcheck/pkg/errors"
)

// Result is the outcome of one case variant.
type Result struct {
	// Case is the case name.
	Case string

	// Variant is the variant's index within the case.
	Variant int

	// Options are the variant's reinstall options.
	Options []string

	// Comment is the variant's free-text comment.
	Comment string

	// Expected is the variant's expect_reinstall flag.
	Expected bool

	// Observed is whether the reinstall step reinstalled the package.
	// Meaningless when Status is error.
	Observed bool

	// Status is one of constants.StatusPass, StatusFail, StatusError.
	Status string

	// Outcome is the closing comment, e.g. "ok: reinstalled, as expected".
	Outcome string

	// InstallCommand and ReinstallCommand are the pip command lines run.
	InstallCommand   string
	ReinstallCommand string

	// Summary describes the reinstall observation flags.
	Summary string

	// FromVersion and ToVersion are the versions pip reported replacing.
	FromVersion string
	ToVersion   string

	// Output is the pip output of the reinstall step, or of the step that failed.
	Output string

	// Error is the execution error message when Status is error.
	Error string

	// Duration covers provisioning through teardown.
	Duration time.Duration
}

// Report aggregates the results of a run.
type Report struct {
	// Results holds one entry per variant, in execution order.
	Results []Result

	// Target describes the pip the environments were pinned to.
	Target string

	// Started and Finished bound the run.
	Started  time.Time
	Finished time.Time
}

// Passed returns true if every variant passed.
func (r *Report) Passed() bool {
	return r.count(constants.StatusPass) == len(r.Results)
}

// PassedCount returns the number of variants whose observation matched.
func (r *Report) PassedCount() int {
	return r.count(constants.StatusPass)
}

// FailedCount returns the number of assertion mismatches.
func (r *Report) FailedCount() int {
	return r.count(constants.StatusFail)
}

// ErroredCount returns the number of variants that hit an execution error.
func (r *Report) ErroredCount() int {
	return r.count(constants.StatusError)
}

func (r *Report) count(status string) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// CaseCount returns the number of distinct cases in the results.
func (r *Report) CaseCount() int {
	seen := make(map[string]bool)
	for _, res := range r.Results {
		seen[res.Case] = true
	}
	return len(seen)
}

// Err returns a PartialSuccessError when any variant did not pass.
func (r *Report) Err() error {
	if r.Passed() {
		return nil
	}
	return errors.NewPartialSuccessError(r.PassedCount(), r.FailedCount(), r.ErroredCount())
}

// Summary returns a one-line summary of the run.
//
// Returns:
//   - string: e.g. "All 34 variants passed" or "30/34 variants passed (3 failed, 1 errored)"
func (r *Report) Summary() string {
	total := len(r.Results)
	if r.Passed() {
		return fmt.Sprintf("All %d variants passed", total)
	}
	return fmt.Sprintf("%d/%d variants passed (%d failed, %d errored)",
		r.PassedCount(), total, r.FailedCount(), r.ErroredCount())
}

// FormatResults returns every variant with its status icon and duration.
func (r *Report) FormatResults() string {
	return r.formatResults(true)
}

// FormatResultsQuiet returns only failed and errored variants, or "" when
// everything passed.
func (r *Report) FormatResultsQuiet() string {
	if r.Passed() {
		return ""
	}
	return r.formatResults(false)
}

func (r *Report) formatResults(showPassing bool) string {
	var sb strings.Builder

	header := "Results"
	if r.Target != "" {
		header += fmt.Sprintf(" (%s)", r.Target)
	}
	sb.WriteString(header + "\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n")

	for _, res := range r.Results {
		if !showPassing && res.Status == constants.StatusPass {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s %-50s [%s]\n", constants.StatusIcon(res.Status), res.Label(), formatDuration(res.Duration)))

		switch res.Status {
		case constants.StatusFail:
			sb.WriteString(fmt.Sprintf("    └─ %s\n", res.Outcome))
		case constants.StatusError:
			// first line only
			sb.WriteString(fmt.Sprintf("    └─ %s\n", strings.SplitN(res.Error, "\n", 2)[0]))
		}
	}

	sb.WriteString(strings.Repeat("─", 60) + "\n")
	sb.WriteString(r.Summary() + "\n")
	return sb.String()
}

// Label names a variant as "<case> <options>".
func (res Result) Label() string {
	if len(res.Options) == 0 {
		return res.Case
	}
	return res.Case + " " + strings.Join(res.Options, " ")
}

// formatDuration renders milliseconds below one second and seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d.Milliseconds()))
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
