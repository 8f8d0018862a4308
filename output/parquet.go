package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/munge/dataset"
)

// ParquetFormatter outputs the dataset as a parquet file with one optional
// string column per field. Parquet groups order their columns by name.
type ParquetFormatter struct {
	writer io.Writer
	header []string
}

// NewParquetFormatter creates a new parquet formatter
func NewParquetFormatter(w io.Writer) *ParquetFormatter {
	return &ParquetFormatter{writer: w}
}

// SetOutput sets the output writer
func (p *ParquetFormatter) SetOutput(w io.Writer) {
	p.writer = w
}

// Format writes every row. Values are stored as their text form and null as
// a parquet null.
func (p *ParquetFormatter) Format(ds dataset.Dataset) error {
	columns := columnsOf(ds, p.header)

	group := parquet.Group{}
	for _, col := range columns {
		group[col] = parquet.Optional(parquet.String())
	}
	schema := parquet.NewSchema("munge", group)

	// Leaf column indexes follow the sorted field names of the group.
	leaves := make([]string, len(columns))
	copy(leaves, columns)
	sort.Strings(leaves)

	writer := parquet.NewWriter(p.writer, schema)

	rows := make([]parquet.Row, 0, len(ds))
	for _, row := range ds {
		pr := make(parquet.Row, len(leaves))
		for i, col := range leaves {
			v := cell(row, col)
			if v.IsNull() {
				pr[i] = parquet.Value{}.Level(0, 0, i)
				continue
			}
			pr[i] = parquet.ValueOf(v.Text()).Level(0, 1, i)
		}
		rows = append(rows, pr)
	}

	if _, err := writer.WriteRows(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
