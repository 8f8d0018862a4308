// Package reader loads tabular files into a dataset.Dataset.
//
// One Reader exists per input format. Each reads the whole file into memory,
// keeps the column order of the source and always closes the file, also on
// failure.
//
// # Supported Formats
//
//   - csv, tsv: delimited text, first record is the header, values are strings
//   - json: a top-level array of objects, key order preserved
//   - jsonl: one object per line
//   - excel: one worksheet of an xlsx workbook, typed cells
//   - parquet: every row of the file, columns in schema order
//   - sqlite: every row of one table
//
// # Basic Usage
//
//	ds, err := reader.ReadFile("data.csv", munge.FormatCSV, reader.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, row := range ds {
//	    v, _ := row.Get("name")
//	    fmt.Println(v.Text())
//	}
//
// # Compression
//
// Byte-stream formats can be wrapped in gzip, zstd, brotli or lz4. The codec
// is never guessed from the file name:
//
//	ds, err := reader.ReadFile("data.csv.gz", munge.FormatCSV, reader.Options{
//	    Compression: munge.CompressionGzip,
//	})
//
// # Errors
//
// A missing or unreadable file is a munge IOErr, malformed content a
// ParseErr, and an unknown format or a format that cannot be read a
// FormatErr, reported before the file is touched.
package reader
