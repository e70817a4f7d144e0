package output

import (
	"encoding/xml"

	"github.com/iancoleman/orderedmap"
)

// ListResult represents the output data for the list command.
//
// Fields:
//   - XMLName: XML root element name (used only for XML marshaling)
//   - Summary: Case and variant counts
//   - Cases: Case entries in suite order
type ListResult struct {
	XMLName xml.Name    `json:"-" xml:"listResult"`
	Summary ListSummary `json:"summary" xml:"summary"`
	Cases   []ListCase  `json:"cases" xml:"cases>case"`
}

// ListSummary holds summary statistics for list results.
type ListSummary struct {
	TotalCases    int `json:"total_cases" xml:"totalCases"`
	TotalVariants int `json:"total_variants" xml:"totalVariants"`
}

// ListCase is one case of the suite.
type ListCase struct {
	Name      string        `json:"name" xml:"name"`
	Install   []string      `json:"install" xml:"install>arg"`
	Reinstall []string      `json:"reinstall" xml:"reinstall>arg"`
	Variants  []ListVariant `json:"variants" xml:"variants>variant"`
}

// ListVariant is one variant of a case.
type ListVariant struct {
	Index           int      `json:"index" xml:"index,attr"`
	Options         []string `json:"options" xml:"options>option"`
	ExpectReinstall bool     `json:"expect_reinstall" xml:"expectReinstall"`
	Comment         string   `json:"comment,omitempty" xml:"comment,omitempty"`
}

// RunResult represents the output data for the run command.
//
// Fields:
//   - XMLName: XML root element name (used only for XML marshaling)
//   - RunID: Identifier shared with the HTML report
//   - Report: Path of the written HTML report
//   - Summary: Totals across all variants
//   - ByCase: Per-case status counts keyed by case name in suite order (JSON only)
//   - Results: One entry per variant
//   - Warnings: Non-fatal warnings collected during the run
type RunResult struct {
	XMLName  xml.Name               `json:"-" xml:"runResult"`
	RunID    string                 `json:"run_id" xml:"runId,attr"`
	Report   string                 `json:"report" xml:"report"`
	Summary  RunSummary             `json:"summary" xml:"summary"`
	ByCase   *orderedmap.OrderedMap `json:"by_case" xml:"-"`
	Results  []RunEntry             `json:"results" xml:"results>result"`
	Warnings []string               `json:"warnings,omitempty" xml:"warnings>warning,omitempty"`
}

// RunSummary holds totals for a run.
type RunSummary struct {
	Cases    int `json:"cases" xml:"cases"`
	Variants int `json:"variants" xml:"variants"`
	Passed   int `json:"passed" xml:"passed"`
	Failed   int `json:"failed" xml:"failed"`
	Errored  int `json:"errored" xml:"errored"`
}

// CaseCounts is the per-case value stored in RunResult.ByCase.
type CaseCounts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
}

// RunEntry is the outcome of one variant.
type RunEntry struct {
	Case     string `json:"case" xml:"case"`
	Variant  int    `json:"variant" xml:"variant"`
	Options  string `json:"options" xml:"options"`
	Expected bool   `json:"expected" xml:"expected"`
	Observed bool   `json:"observed" xml:"observed"`
	Status   string `json:"status" xml:"status"`
	Detail   string `json:"detail,omitempty" xml:"detail,omitempty"`
}

// NewRunResult creates a RunResult with an empty ByCase map.
func NewRunResult(runID, report string) *RunResult {
	return &RunResult{
		RunID:  runID,
		Report: report,
		ByCase: orderedmap.New(),
	}
}

// Add appends an entry and updates the summary and per-case counts.
// Cases are counted in the order their first entry is added.
func (r *RunResult) Add(entry RunEntry) {
	r.Results = append(r.Results, entry)
	r.Summary.Variants++

	counts := CaseCounts{}
	if existing, ok := r.ByCase.Get(entry.Case); ok {
		counts = existing.(CaseCounts)
	} else {
		r.Summary.Cases++
	}

	switch entry.Status {
	case "pass":
		r.Summary.Passed++
		counts.Passed++
	case "fail":
		r.Summary.Failed++
		counts.Failed++
	default:
		r.Summary.Errored++
		counts.Errored++
	}
	r.ByCase.Set(entry.Case, counts)
}
