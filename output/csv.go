package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/munge/dataset"
)

// CSVFormatter outputs rows as delimited text with a header row
type CSVFormatter struct {
	writer    io.Writer
	delimiter rune
	safe      bool
	header    []string
}

// NewCSVFormatter creates a new CSV formatter. With safe set, cells that
// spreadsheet applications would evaluate as formulas are quoted.
func NewCSVFormatter(w io.Writer, delimiter rune, safe bool) *CSVFormatter {
	return &CSVFormatter{writer: w, delimiter: delimiter, safe: safe}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes the dataset as delimited text. The first row's keys are the
// header; keys missing from a later row are written empty and extra keys are
// dropped. Without rows only the configured header, if any, is written.
func (c *CSVFormatter) Format(ds dataset.Dataset) error {
	csvWriter := csv.NewWriter(c.writer)
	if c.delimiter != 0 {
		csvWriter.Comma = c.delimiter
	}

	columns := columnsOf(ds, c.header)
	if len(columns) > 0 {
		if err := csvWriter.Write(columns); err != nil {
			return err
		}
	}

	record := make([]string, len(columns))
	for _, row := range ds {
		for i, col := range columns {
			record[i] = c.formatValue(cell(row, col))
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	// Flush and check for errors
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return nil
}

// formatValue converts a value to its text form for CSV output
func (c *CSVFormatter) formatValue(v dataset.Value) string {
	s := v.Text()
	if !c.safe || v.Kind() != dataset.KindString || s == "" {
		return s
	}

	// Sanitize against CSV injection by prefixing dangerous characters
	// that could trigger formula execution in spreadsheet applications
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		return "'" + strings.ReplaceAll(s, "'", "''")
	}
	return s
}
