package output

import (
	"io"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
)

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to encode a dataset in the target format
// and SetOutput to change the output destination.
type Formatter interface {
	// Format writes the dataset in the formatter's specific format
	Format(ds dataset.Dataset) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Options tunes how a dataset is encoded. Zero values select the format's
// defaults.
type Options struct {
	// Delimiter separates fields in delimited text. Defaults to ',' for csv
	// and '\t' for tsv.
	Delimiter rune
	// Sheet names the spreadsheet worksheet. Defaults to "Sheet1".
	Sheet string
	// Table names the sqlite table. Defaults to "data".
	Table string
	// Compression is the codec applied to the output bytes.
	Compression munge.Compression
	// SafeCSV prefixes cells that spreadsheets would run as formulas.
	SafeCSV bool
	// Columns is the header written when the dataset has no rows. Formats
	// with a header (csv, tsv, excel, parquet, table, sqlite) use it.
	Columns []string
}

// NewFormatter returns the formatter for a byte-stream format. Formats that
// need a file of their own, such as sqlite, are rejected.
func NewFormatter(format munge.Format, w io.Writer, opts Options) (Formatter, error) {
	switch format {
	case munge.FormatCSV:
		f := NewCSVFormatter(w, withDelimiter(opts.Delimiter, ','), opts.SafeCSV)
		f.header = opts.Columns
		return f, nil
	case munge.FormatTSV:
		f := NewCSVFormatter(w, withDelimiter(opts.Delimiter, '\t'), opts.SafeCSV)
		f.header = opts.Columns
		return f, nil
	case munge.FormatJSON:
		return NewJSONFormatter(w), nil
	case munge.FormatJSONL:
		return NewJSONLinesFormatter(w), nil
	case munge.FormatExcel:
		f := NewExcelFormatter(w, opts.Sheet)
		f.header = opts.Columns
		return f, nil
	case munge.FormatParquet:
		f := NewParquetFormatter(w)
		f.header = opts.Columns
		return f, nil
	case munge.FormatTable:
		f := NewTableFormatter(w)
		f.header = opts.Columns
		return f, nil
	case munge.FormatSQLite:
		return nil, munge.FormatErr("format cannot be written to a stream", map[string]any{
			"format": format,
		})
	default:
		return nil, munge.FormatErr("unsupported output format", map[string]any{
			"format": format,
		})
	}
}

func withDelimiter(d, fallback rune) rune {
	if d == 0 {
		return fallback
	}
	return d
}

// columnsOf returns the first row's keys, or header when ds has no rows.
func columnsOf(ds dataset.Dataset, header []string) []string {
	if len(ds) == 0 {
		return header
	}
	return ds.Columns()
}

// cell returns the value stored under col, or null when the row lacks it.
func cell(row *dataset.Row, col string) dataset.Value {
	v, _ := row.Get(col)
	return v
}
