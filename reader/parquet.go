package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/segmentio/encoding/json"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
)

// ParquetReader reads every row of a parquet file. Columns come out in
// schema order.
//
// Parquet needs random access, so compressed or piped input is buffered in
// memory before it is opened.
type ParquetReader struct {
	opts Options
}

func (r *ParquetReader) Read(path string) (dataset.Dataset, error) {
	if path != Stdin && r.opts.Compression == munge.CompressionNone {
		return r.readFile(path)
	}

	return readStream(path, r.opts.Compression, func(in io.Reader) (dataset.Dataset, error) {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, munge.IOErr("cannot read input", map[string]any{"error": err})
		}
		return decodeParquet(bytes.NewReader(data), int64(len(data)))
	})
}

func (r *ParquetReader) readFile(path string) (dataset.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, openErr(path, err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, munge.IOErr("failed to stat file", map[string]any{
			"path":  path,
			"error": err,
		})
	}

	ds, err := decodeParquet(file, stat.Size())
	if err != nil {
		return nil, withPath(err, path)
	}
	return ds, nil
}

func decodeParquet(in io.ReaderAt, size int64) (dataset.Dataset, error) {
	pqFile, err := parquet.OpenFile(in, size)
	if err != nil {
		return nil, munge.ParseErr("failed to open parquet file", map[string]any{"error": err})
	}

	columns := make([]string, 0, len(pqFile.Schema().Fields()))
	for _, field := range pqFile.Schema().Fields() {
		columns = append(columns, field.Name())
	}

	pr := parquet.NewReader(pqFile)
	defer func() { _ = pr.Close() }()

	ds := dataset.Dataset{}
	for {
		values := make(map[string]interface{})
		err := pr.Read(&values)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, munge.ParseErr("failed to read row", map[string]any{
				"row":   len(ds),
				"error": err,
			})
		}

		row := dataset.NewRow()
		for _, col := range columns {
			v, err := nativeValue(values[col])
			if err != nil {
				return nil, munge.ParseErr("cannot convert parquet value", map[string]any{
					"row":    len(ds),
					"column": col,
					"error":  err,
				})
			}
			row.Set(col, v)
		}
		ds = append(ds, row)
	}

	return ds, nil
}

// nativeValue converts a decoded parquet value. Groups and repeated fields
// become compact JSON text, like nested JSON input does.
func nativeValue(v interface{}) (dataset.Value, error) {
	switch val := v.(type) {
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return dataset.Null(), fmt.Errorf("failed to encode nested value: %w", err)
		}
		return dataset.String(string(b)), nil
	default:
		return dataset.FromAny(val), nil
	}
}
