package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteListResult writes a ListResult in a structured format.
func WriteListResult(w io.Writer, format Format, result *ListResult) error {
	formatter := NewFormatter(format, w)

	switch format {
	case FormatJSON:
		return formatter.WriteJSON(result)
	case FormatXML:
		return formatter.WriteXML(result)
	case FormatCSV:
		return writeListCSV(formatter, result)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// writeListCSV flattens cases to one row per variant.
func writeListCSV(f *Formatter, result *ListResult) error {
	headers := []string{"CASE", "VARIANT", "INSTALL", "REINSTALL", "OPTIONS", "EXPECT_REINSTALL", "COMMENT"}
	var rows [][]string
	for _, c := range result.Cases {
		for _, v := range c.Variants {
			rows = append(rows, []string{
				c.Name,
				strconv.Itoa(v.Index),
				strings.Join(c.Install, " "),
				strings.Join(c.Reinstall, " "),
				strings.Join(v.Options, " "),
				strconv.FormatBool(v.ExpectReinstall),
				v.Comment,
			})
		}
	}
	return f.WriteCSV(headers, rows)
}

// WriteRunResult writes a RunResult in a structured format.
func WriteRunResult(w io.Writer, format Format, result *RunResult) error {
	formatter := NewFormatter(format, w)

	switch format {
	case FormatJSON:
		return formatter.WriteJSON(result)
	case FormatXML:
		return formatter.WriteXML(result)
	case FormatCSV:
		return writeRunCSV(formatter, result)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeRunCSV(f *Formatter, result *RunResult) error {
	headers := []string{"CASE", "VARIANT", "OPTIONS", "EXPECTED", "OBSERVED", "STATUS", "DETAIL"}
	rows := make([][]string, 0, len(result.Results))
	for _, e := range result.Results {
		rows = append(rows, []string{
			e.Case,
			strconv.Itoa(e.Variant),
			e.Options,
			strconv.FormatBool(e.Expected),
			strconv.FormatBool(e.Observed),
			e.Status,
			e.Detail,
		})
	}
	return f.WriteCSV(headers, rows)
}
