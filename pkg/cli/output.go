package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is aligned plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// Table is tabular command output. Data carries the underlying values
// for formats that serialize structure rather than rows (JSON).
type Table struct {
	Headers []string
	Rows    [][]string
	Data    interface{}
}

// Formatter renders a table to a writer.
type Formatter interface {
	FormatTo(w io.Writer, table *Table) error
}

// TextFormatter renders aligned columns.
type TextFormatter struct{}

// FormatTo writes the table with tab-aligned columns.
func (f *TextFormatter) FormatTo(w io.Writer, table *Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if len(table.Headers) > 0 {
		if err := writeRow(tw, table.Headers); err != nil {
			return err
		}
	}
	for _, row := range table.Rows {
		if err := writeRow(tw, row); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) error {
	for i, cell := range cells {
		if i > 0 {
			if _, err := fmt.Fprint(w, "\t"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, cell); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// JSONFormatter renders the table's underlying data as indented JSON.
type JSONFormatter struct{}

// FormatTo writes table.Data (or the rows, when Data is nil) as JSON.
func (f *JSONFormatter) FormatTo(w io.Writer, table *Table) error {
	data := table.Data
	if data == nil {
		data = table.Rows
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// CSVFormatter renders headers and rows as CSV records.
type CSVFormatter struct{}

// FormatTo writes the table as CSV.
func (f *CSVFormatter) FormatTo(w io.Writer, table *Table) error {
	csvWriter := csv.NewWriter(w)

	if len(table.Headers) > 0 {
		if err := csvWriter.Write(table.Headers); err != nil {
			return err
		}
	}
	for _, row := range table.Rows {
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// NewFormatter creates a formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}
