package reader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVReader reads delimited text. The first record is the header; every
// value is kept as a string.
type CSVReader struct {
	opts Options
}

func (r *CSVReader) Read(path string) (dataset.Dataset, error) {
	return readStream(path, r.opts.Compression, r.Decode)
}

// ReadHeader reads path and also returns the header row.
func (r *CSVReader) ReadHeader(path string) (dataset.Dataset, []string, error) {
	var columns []string
	ds, err := readStream(path, r.opts.Compression, func(in io.Reader) (dataset.Dataset, error) {
		ds, cols, err := r.decode(in)
		columns = cols
		return ds, err
	})
	if err != nil {
		return nil, nil, err
	}
	return ds, columns, nil
}

// Decode reads delimited text from in.
func (r *CSVReader) Decode(in io.Reader) (dataset.Dataset, error) {
	ds, _, err := r.decode(in)
	return ds, err
}

func (r *CSVReader) decode(in io.Reader) (dataset.Dataset, []string, error) {
	cr := csv.NewReader(skipBOM(in))
	cr.Comma = r.delimiter()
	// Record widths are checked against the header below.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, munge.ParseErr("input has no header row", nil)
	}
	if err != nil {
		return nil, nil, csvErr(err)
	}
	columns := normalizeHeader(header)

	ds := dataset.Dataset{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, csvErr(err)
		}

		if len(record) > len(columns) {
			line, _ := cr.FieldPos(0)
			return nil, nil, munge.ParseErr("record has more fields than the header", map[string]any{
				"line":   line,
				"fields": len(record),
				"header": len(columns),
			})
		}

		row := dataset.NewRow()
		for i, col := range columns {
			v := ""
			if i < len(record) {
				v = record[i]
			}
			row.Set(col, dataset.String(v))
		}
		ds = append(ds, row)
	}

	return ds, columns, nil
}

func (r *CSVReader) delimiter() rune {
	if r.opts.Delimiter == 0 {
		return ','
	}
	return r.opts.Delimiter
}

// skipBOM drops a leading UTF-8 byte order mark, which spreadsheet exports
// like to emit and which would otherwise end up in the first column name.
func skipBOM(in io.Reader) io.Reader {
	br := bufio.NewReader(in)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// normalizeHeader trims the names and brings them into NFC so that
// expressions can reference them reliably.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = norm.NFC.String(strings.TrimSpace(name))
	}
	return columns
}

func csvErr(err error) error {
	data := map[string]any{"error": err}

	var pe *csv.ParseError
	if errors.As(err, &pe) {
		data["line"] = pe.Line
		data["column"] = pe.Column
	}

	return munge.ParseErr("malformed delimited text", data)
}
