// Package output encodes a dataset.Dataset into the supported file formats.
//
// This package defines the Formatter interface and provides implementations
// for every byte-stream format. WriteFile picks the formatter for a format,
// applies compression and stages the result next to the destination so a
// failed write never leaves a partial file behind.
//
// # Supported Formats
//
//   - csv, tsv: delimited text with a header row
//   - json: one indented array of objects
//   - jsonl: one compact object per line
//   - excel: a single-sheet xlsx workbook
//   - parquet: optional string columns
//   - table: an aligned text table for terminals
//   - sqlite: a new database with one TEXT column per field (WriteFile only)
//
// Formats with a header take their field list from the first row. Later rows
// missing a field are written empty and extra keys are dropped. json and
// jsonl write every key of every row. A dataset without rows is written with
// Options.Columns as its header, so an empty result still reads back.
//
// Numbers are written in their shortest exact decimal form: an aggregate of
// 30 is written as 30, not 30.0, and 2.50 as 2.5. Integers read from a
// literal too large for a float64, such as 64-bit ids, are written back
// unchanged.
//
// # Basic Usage
//
//	err := output.WriteFile(ctx, "out.csv", munge.FormatCSV, ds, output.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Writing to a buffer:
//
//	var buf bytes.Buffer
//	formatter := output.NewCSVFormatter(&buf, ',', false)
//	if err := formatter.Format(ds); err != nil {
//	    log.Fatal(err)
//	}
//	csvString := buf.String()
//
// # Formatter Interface
//
// Implement custom formatters by satisfying the Formatter interface:
//
//	type Formatter interface {
//	    Format(ds dataset.Dataset) error
//	    SetOutput(w io.Writer)
//	}
package output
