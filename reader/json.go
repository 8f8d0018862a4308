package reader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
)

// JSONReader reads a top-level array of objects. Object key order is kept.
type JSONReader struct {
	opts Options
}

func (r *JSONReader) Read(path string) (dataset.Dataset, error) {
	return readStream(path, r.opts.Compression, r.Decode)
}

// Decode reads a JSON array of objects from in.
func (r *JSONReader) Decode(in io.Reader) (dataset.Dataset, error) {
	dec := json.NewDecoder(in)

	tok, err := dec.Token()
	if err != nil {
		return nil, jsonErr(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, munge.ParseErr("input is not a JSON array", map[string]any{
			"found": fmt.Sprint(tok),
		})
	}

	ds := dataset.Dataset{}
	for dec.More() {
		row, err := decodeObject(dec)
		if err != nil {
			return nil, munge.ParseErr("array element is not an object", map[string]any{
				"index": len(ds),
				"error": err,
			})
		}
		ds = append(ds, row)
	}

	if _, err := dec.Token(); err != nil {
		return nil, munge.ParseErr("unterminated JSON array", map[string]any{"error": err})
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}

	return ds, nil
}

// JSONLReader reads one JSON object per line. Blank lines are skipped.
type JSONLReader struct {
	opts Options
}

func (r *JSONLReader) Read(path string) (dataset.Dataset, error) {
	return readStream(path, r.opts.Compression, r.Decode)
}

// maxLineSize bounds a single JSON lines record.
const maxLineSize = 64 << 20

// Decode reads JSON lines from in.
func (r *JSONLReader) Decode(in io.Reader) (dataset.Dataset, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	ds := dataset.Dataset{}
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(text))
		row, err := decodeObject(dec)
		if err == nil {
			err = expectEOF(dec)
		}
		if err != nil {
			return nil, munge.ParseErr("line is not a JSON object", map[string]any{
				"line":  line,
				"error": err,
			})
		}
		ds = append(ds, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, munge.ParseErr("cannot scan JSON lines", map[string]any{
			"line":  line + 1,
			"error": err,
		})
	}

	return ds, nil
}

// decodeObject consumes one object from dec, keeping its keys in order.
func decodeObject(dec *json.Decoder) (*dataset.Row, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, found %v", tok)
	}

	row := dataset.NewRow()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, found %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		v, err := valueFromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		row.Set(key, v)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return row, nil
}

// valueFromJSON maps one encoded JSON value onto a Value. Arrays and
// objects are kept as compact JSON text.
func valueFromJSON(raw json.RawMessage) (dataset.Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return dataset.Null(), errors.New("empty value")
	}

	switch raw[0] {
	case 'n':
		return dataset.Null(), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return dataset.Null(), err
		}
		return dataset.Bool(b), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return dataset.Null(), err
		}
		return dataset.String(s), nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return dataset.Null(), err
		}
		return dataset.String(buf.String()), nil
	default:
		return dataset.ParseNumber(string(raw))
	}
}

func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return munge.ParseErr("unexpected data after JSON value", nil)
	}
	return nil
}

func jsonErr(err error) error {
	if errors.Is(err, io.EOF) {
		return munge.ParseErr("input is empty", nil)
	}
	return munge.ParseErr("input is not a JSON array", map[string]any{"error": err})
}
