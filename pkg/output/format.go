// Package output renders command results as terminal tables or structured
// formats (CSV, JSON, XML) for scripting.
package output

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Format identifies an output format.
type Format string

const (
	// FormatTable is the default terminal table output.
	FormatTable Format = "table"
	// FormatCSV outputs data as comma-separated values.
	FormatCSV Format = "csv"
	// FormatJSON outputs data as JSON.
	FormatJSON Format = "json"
	// FormatXML outputs data as XML.
	FormatXML Format = "xml"
)

// ParseFormat converts a flag value to a Format, case-insensitively.
// Unknown values fall back to FormatTable.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV
	case "json":
		return FormatJSON
	case "xml":
		return FormatXML
	default:
		return FormatTable
	}
}

// ValidateFormatFlag rejects values that are neither empty nor a known format,
// so a typo does not silently print a table.
func ValidateFormatFlag(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table", "csv", "json", "xml":
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (use table, json, csv or xml)", s)
	}
}

// IsStructuredFormat reports whether f is a machine-readable format.
func IsStructuredFormat(f Format) bool {
	return f == FormatCSV || f == FormatJSON || f == FormatXML
}

// Formatter writes structured data to a writer.
type Formatter struct {
	format Format
	writer io.Writer
}

// NewFormatter creates a Formatter for the given format and writer.
func NewFormatter(format Format, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
	}
}

// Format returns the formatter's format.
func (f *Formatter) Format() Format {
	return f.format
}

// WriteCSV writes a header row followed by the data rows.
func (f *Formatter) WriteCSV(headers []string, rows [][]string) error {
	w := csv.NewWriter(f.writer)

	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteJSON writes data as indented JSON.
func (f *Formatter) WriteJSON(data interface{}) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteXML writes data as indented XML with the standard header.
func (f *Formatter) WriteXML(data interface{}) error {
	_, _ = fmt.Fprint(f.writer, xml.Header)
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(f.writer)
	return nil
}
