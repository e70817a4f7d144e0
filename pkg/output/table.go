package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/ajxudir/pipcheck/pkg/utils"
)

// Column describes one table column.
//
// Fields:
//   - Header: Column header text
//   - Width: Current display width (grows with content)
//   - MaxWidth: Cells are truncated beyond this width; 0 disables truncation
type Column struct {
	Header   string
	Width    int
	MaxWidth int
	hidden   bool
}

// Table buffers rows and prints them with aligned columns.
//
// Example:
//
//	t := output.NewTable().AddColumn("CASE").AddColumn("STATUS")
//	t.AddRow("vcs-same-commit", "pass")
//	t.Fprint(os.Stdout)
type Table struct {
	columns   []Column
	rows      [][]string
	separator string
}

// NewTable creates an empty table with a two-space column separator.
func NewTable() *Table {
	return &Table{
		columns:   make([]Column, 0),
		separator: "  ",
	}
}

// WithSeparator sets the column separator.
func (t *Table) WithSeparator(sep string) *Table {
	t.separator = sep
	return t
}

// AddColumn appends a visible column sized to its header.
func (t *Table) AddColumn(header string) *Table {
	return t.AddConditionalColumn(header, true)
}

// AddColumnWithMaxWidth appends a column whose cells are truncated to maxWidth.
func (t *Table) AddColumnWithMaxWidth(header string, maxWidth int) *Table {
	t.AddColumn(header)
	t.columns[len(t.columns)-1].MaxWidth = maxWidth
	return t
}

// AddConditionalColumn appends a column that is only printed when visible.
func (t *Table) AddConditionalColumn(header string, visible bool) *Table {
	t.columns = append(t.columns, Column{
		Header: header,
		Width:  utils.DisplayWidth(header),
		hidden: !visible,
	})
	return t
}

// SetColumnVisibleByHeader shows or hides the first column with the given header.
func (t *Table) SetColumnVisibleByHeader(header string, visible bool) *Table {
	for i := range t.columns {
		if t.columns[i].Header == header {
			t.columns[i].hidden = !visible
			break
		}
	}
	return t
}

// AddRow buffers a row and widens columns to fit it.
//
// Values beyond the column count are ignored; missing values print empty.
func (t *Table) AddRow(values ...string) *Table {
	row := make([]string, len(t.columns))
	for i := range t.columns {
		if i >= len(values) {
			continue
		}
		val := values[i]
		if t.columns[i].MaxWidth > 0 {
			val = utils.Truncate(val, t.columns[i].MaxWidth)
		}
		row[i] = val
		if w := utils.DisplayWidth(val); w > t.columns[i].Width {
			t.columns[i].Width = w
		}
	}
	t.rows = append(t.rows, row)
	return t
}

// HeaderRow returns the formatted header line.
func (t *Table) HeaderRow() string {
	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = col.Header
	}
	return t.FormatRow(headers...)
}

// SeparatorRow returns a dashed line matching the visible column widths.
func (t *Table) SeparatorRow() string {
	var parts []string
	for _, col := range t.columns {
		if !col.hidden {
			parts = append(parts, strings.Repeat("-", col.Width))
		}
	}
	return strings.Join(parts, t.separator)
}

// FormatRow pads values to the column widths, skipping hidden columns.
// Trailing whitespace is trimmed.
func (t *Table) FormatRow(values ...string) string {
	var parts []string
	for i, col := range t.columns {
		if col.hidden {
			continue
		}
		val := ""
		if i < len(values) {
			val = values[i]
		}
		parts = append(parts, utils.ToWidth(val, col.Width))
	}
	return strings.TrimRight(strings.Join(parts, t.separator), " ")
}

// ColumnCount returns the number of columns, hidden ones included.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// RowCount returns the number of buffered rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// GetColumnWidth returns the current width of a column, or 0 when out of range.
func (t *Table) GetColumnWidth(index int) int {
	if index >= 0 && index < len(t.columns) {
		return t.columns[index].Width
	}
	return 0
}

// IsColumnHidden reports whether a column is hidden; out-of-range counts as hidden.
func (t *Table) IsColumnHidden(index int) bool {
	if index >= 0 && index < len(t.columns) {
		return t.columns[index].hidden
	}
	return true
}

// Fprint writes the header, separator and all buffered rows to w.
func (t *Table) Fprint(w io.Writer) {
	_, _ = fmt.Fprintln(w, t.HeaderRow())
	_, _ = fmt.Fprintln(w, t.SeparatorRow())
	for _, row := range t.rows {
		_, _ = fmt.Fprintln(w, t.FormatRow(row...))
	}
}

// String renders the table to a string.
func (t *Table) String() string {
	var sb strings.Builder
	t.Fprint(&sb)
	return sb.String()
}
