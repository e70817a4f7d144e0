// Package report renders run results as a self-contained HTML document,
// grouped by case with one row per variant.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/ajxudir/pipcheck/pkg/cases"
	"github.com/ajxudir/pipcheck/pkg/cmdexec"
	"github.com/ajxudir/pipcheck/pkg/constants"
	"github.com/ajxudir/pipcheck/pkg/runner"
	"github.com/ajxudir/pipcheck/pkg/workspace"
)

//go:embed report.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("report.html.tmpl").Funcs(template.FuncMap{
	"icon": constants.StatusIcon,
	"yesno": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
	"timestamp": func(t time.Time) string {
		if t.IsZero() {
			return constants.PlaceholderNA
		}
		return t.Format(time.RFC3339)
	},
}).ParseFS(templateFS, "report.html.tmpl"))

var markdown = goldmark.New()

// Meta describes the run a document belongs to.
type Meta struct {
	RunID  string
	Suite  string
	Target string
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Document is the data rendered into the HTML template.
type Document struct {
	Meta
	Started  time.Time
	Finished time.Time
	Duration string
	Total    int
	Passed   int
	Failed   int
	Errored  int
	Cases    []CaseGroup
}

// CaseGroup holds the rows of one case.
type CaseGroup struct {
	Name      string
	Install   string
	Reinstall string
	Rows      []Row
	Passed    int
}

// Status is the worst status among the group's rows.
func (g CaseGroup) Status() string {
	status := constants.StatusPass
	for _, r := range g.Rows {
		switch r.Status {
		case constants.StatusError:
			return constants.StatusError
		case constants.StatusFail:
			status = constants.StatusFail
		}
	}
	return status
}

// Row is one variant.
type Row struct {
	runner.Result
	OptionsText string
	CommentHTML template.HTML
	Versions    string
	ShowOutput  bool
}

// Build groups results by case in the order of cs. Cases without results
// still get a group so the document lists every selected case.
func Build(rep *runner.Report, cs []cases.Case, meta Meta) *Document {
	doc := &Document{
		Meta:     meta,
		Started:  rep.Started,
		Finished: rep.Finished,
		Total:    len(rep.Results),
		Passed:   rep.PassedCount(),
		Failed:   rep.FailedCount(),
		Errored:  rep.ErroredCount(),
	}
	if doc.Target == "" {
		doc.Target = rep.Target
	}
	if !rep.Started.IsZero() && !rep.Finished.IsZero() {
		doc.Duration = rep.Finished.Sub(rep.Started).Round(time.Second).String()
	}

	index := make(map[string]int, len(cs))
	for _, c := range cs {
		index[c.Name] = len(doc.Cases)
		doc.Cases = append(doc.Cases, CaseGroup{
			Name:      c.Name,
			Install:   cmdexec.Join(c.Install...),
			Reinstall: cmdexec.Join(c.Reinstall...),
		})
	}

	for _, res := range rep.Results {
		i, ok := index[res.Case]
		if !ok {
			i = len(doc.Cases)
			index[res.Case] = i
			doc.Cases = append(doc.Cases, CaseGroup{Name: res.Case})
		}
		g := &doc.Cases[i]
		g.Rows = append(g.Rows, newRow(res))
		if res.Status == constants.StatusPass {
			g.Passed++
		}
	}
	return doc
}

func newRow(res runner.Result) Row {
	row := Row{
		Result:      res,
		OptionsText: constants.PlaceholderNone,
		CommentHTML: RenderInline(res.Comment),
		ShowOutput:  res.Status != constants.StatusPass && strings.TrimSpace(res.Output) != "",
	}
	if len(res.Options) > 0 {
		row.OptionsText = cmdexec.Join(res.Options...)
	}
	switch {
	case res.FromVersion != "" && res.ToVersion != "":
		row.Versions = res.FromVersion + " → " + res.ToVersion
	case res.ToVersion != "":
		row.Versions = res.ToVersion
	}
	return row
}

// RenderInline converts a short Markdown comment to HTML without the
// enclosing paragraph. Raw HTML in the comment is dropped.
func RenderInline(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	out := strings.TrimSpace(buf.String())
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") && strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return template.HTML(out)
}

// Render writes the HTML document to w.
func Render(w io.Writer, doc *Document) error {
	if err := pageTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// Write renders doc and writes it atomically to path.
func Write(path string, doc *Document) error {
	var buf bytes.Buffer
	if err := Render(&buf, doc); err != nil {
		return err
	}
	return workspace.AtomicWrite(path, buf.Bytes())
}
