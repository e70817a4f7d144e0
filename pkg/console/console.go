// Package console prints run progress: one block per variant with the pip
// commands, what was observed and the outcome.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/ajxudir/pipcheck/pkg/cmdexec"
	"github.com/ajxudir/pipcheck/pkg/constants"
)

// Console writes progress lines, coloured when the writer is a terminal.
type Console struct {
	out io.Writer

	heading *color.Color
	dim     *color.Color
	pass    *color.Color
	fail    *color.Color
	errored *color.Color
}

// New creates a Console for w. Colour is enabled only when w is a terminal
// and NO_COLOR is not set.
func New(w io.Writer) *Console {
	return NewWithColor(w, isTerminal(w) && os.Getenv("NO_COLOR") == "")
}

// NewWithColor creates a Console with colour forced on or off.
func NewWithColor(w io.Writer, enabled bool) *Console {
	c := &Console{
		out:     w,
		heading: color.New(color.FgBlue, color.Bold),
		dim:     color.New(color.Faint),
		pass:    color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		errored: color.New(color.FgYellow),
	}
	for _, col := range []*color.Color{c.heading, c.dim, c.pass, c.fail, c.errored} {
		if enabled {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

// Discard returns a Console that prints nothing.
func Discard() *Console {
	return NewWithColor(io.Discard, false)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// VariantStart prints the heading of a variant: case name, options and pip target.
func (c *Console) VariantStart(name string, options []string, target string) {
	line := name
	if len(options) > 0 {
		line += " " + strings.Join(options, " ")
	}
	if target != "" {
		line += " - " + target
	}
	_, _ = c.heading.Fprintln(c.out, line)
}

// Comment prints a variant comment dimmed.
func (c *Console) Comment(comment string) {
	if comment != "" {
		_, _ = c.dim.Fprintln(c.out, comment)
	}
}

// Step prints the pip install arguments of a step. The line is left open
// when more follows, e.g. the observation of the reinstall step.
func (c *Console) Step(args []string, open bool) {
	_, _ = fmt.Fprintf(c.out, "│ pip install %s", cmdexec.Join(args...))
	if !open {
		_, _ = fmt.Fprintln(c.out)
	}
}

// Observed completes an open Step line with the observation summary.
func (c *Console) Observed(summary string) {
	_, _ = fmt.Fprintf(c.out, " > %s\n", summary)
}

// Output prints pip output indented under the variant.
func (c *Console) Output(output string) {
	trimmed := strings.TrimRight(output, "\n")
	if trimmed == "" {
		return
	}
	for _, line := range strings.Split(trimmed, "\n") {
		_, _ = fmt.Fprint(c.out, "│ ")
		_, _ = c.dim.Fprintln(c.out, line)
	}
}

// Outcome prints the closing line of a variant.
func (c *Console) Outcome(status, comment string) {
	col := c.errored
	switch status {
	case constants.StatusPass:
		col = c.pass
	case constants.StatusFail:
		col = c.fail
	}
	_, _ = fmt.Fprint(c.out, "╰─> ")
	_, _ = col.Fprintf(c.out, "%s %s\n", constants.StatusIcon(status), comment)
}

// CaseEnd separates cases with a blank line.
func (c *Console) CaseEnd() {
	_, _ = fmt.Fprintln(c.out)
}

// Infof prints a plain line.
func (c *Console) Infof(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, strings.TrimRight(format, "\n")+"\n", args...)
}
