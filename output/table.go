package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/munge/dataset"
)

// TableFormatter outputs the dataset as an aligned text table for terminals
type TableFormatter struct {
	writer io.Writer
	header []string
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format renders the dataset with the first row's keys as header. Null
// cells are left blank.
func (t *TableFormatter) Format(ds dataset.Dataset) error {
	columns := columnsOf(ds, t.header)

	table := tablewriter.NewWriter(t.writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	if len(columns) > 0 {
		table.SetHeader(columns)
	}

	for _, row := range ds {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = cell(row, col).Text()
		}
		table.Append(record)
	}

	table.Render()
	return nil
}
