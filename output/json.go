package output

import (
	"io"

	"github.com/segmentio/encoding/json"

	"github.com/vegasq/munge/dataset"
)

// JSONFormatter outputs the dataset as one indented JSON array of objects
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON array formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes the dataset as a JSON array. Every row keeps its own keys in
// row order; an empty dataset is written as [].
func (j *JSONFormatter) Format(ds dataset.Dataset) error {
	if ds == nil {
		ds = dataset.Dataset{}
	}

	encoder := json.NewEncoder(j.writer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ds)
}

// JSONLinesFormatter outputs rows as JSON Lines format
type JSONLinesFormatter struct {
	writer io.Writer
}

// NewJSONLinesFormatter creates a new JSON Lines formatter
func NewJSONLinesFormatter(w io.Writer) *JSONLinesFormatter {
	return &JSONLinesFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONLinesFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes rows as JSON Lines (one JSON object per line)
func (j *JSONLinesFormatter) Format(ds dataset.Dataset) error {
	encoder := json.NewEncoder(j.writer)
	encoder.SetEscapeHTML(false)
	for _, row := range ds {
		if err := encoder.Encode(row); err != nil {
			return err
		}
	}
	return nil
}
