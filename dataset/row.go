package dataset

import (
	"bytes"

	"github.com/segmentio/encoding/json"
)

// Row is an ordered mapping from column name to Value. Keys keep the order in
// which they were first set.
type Row struct {
	keys   []string
	values map[string]Value
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]Value)}
}

// RowOf builds a row from alternating column names and native values, which
// keeps literal rows in tests and examples readable:
//
//	RowOf("g", "a", "v", 10)
func RowOf(pairs ...any) *Row {
	if len(pairs)%2 != 0 {
		panic("dataset.RowOf: odd number of arguments")
	}
	r := NewRow()
	for i := 0; i < len(pairs); i += 2 {
		r.Set(pairs[i].(string), FromAny(pairs[i+1]))
	}
	return r
}

// Set stores v under key. An existing key keeps its position.
func (r *Row) Set(key string, v Value) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key and whether it exists.
func (r *Row) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Row) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Keys returns the column names in order. The slice must not be modified.
func (r *Row) Keys() []string {
	return r.keys
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.keys)
}

// Clone returns an independent copy of r.
func (r *Row) Clone() *Row {
	c := &Row{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]Value, len(r.values)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Map returns the row as a plain map of native scalars.
func (r *Row) Map() map[string]any {
	m := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		m[k] = r.values[k].Any()
	}
	return m
}

// MarshalJSON encodes the row as an object with keys in row order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(k); err != nil {
			return nil, err
		}
		trimNewline(&buf)
		buf.WriteByte(':')
		if lit, ok := r.values[k].Literal(); ok {
			buf.WriteString(lit)
			continue
		}
		if err := enc.Encode(r.values[k].Any()); err != nil {
			return nil, err
		}
		trimNewline(&buf)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Encoder.Encode terminates every value with a newline.
func trimNewline(buf *bytes.Buffer) {
	if b := buf.Bytes(); len(b) > 0 && b[len(b)-1] == '\n' {
		buf.Truncate(len(b) - 1)
	}
}
