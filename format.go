package munge

import "strings"

// Format names a tabular file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatJSON    Format = "json"
	FormatJSONL   Format = "jsonl"
	FormatExcel   Format = "excel"
	FormatParquet Format = "parquet"
	FormatSQLite  Format = "sqlite"
	FormatTable   Format = "table"
)

// Formats lists every accepted format tag, in help-text order.
var Formats = []Format{
	FormatCSV, FormatTSV, FormatJSON, FormatJSONL, FormatExcel, FormatParquet, FormatSQLite, FormatTable,
}

var formatAliases = map[string]Format{
	"xlsx":   FormatExcel,
	"ndjson": FormatJSONL,
}

// ParseFormat resolves a user supplied format tag.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := formatAliases[name]; ok {
		return alias, nil
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}

	return "", FormatErr("unsupported format", map[string]any{
		"format":    s,
		"supported": Formats,
	})
}

// Readable reports whether rows can be read from this format.
func (f Format) Readable() bool {
	return f != FormatTable
}

// Streamable reports whether the format is a plain byte stream, which is
// what compression and stdout output require.
func (f Format) Streamable() bool {
	return f != FormatSQLite
}

// Compression names a byte-stream codec applied around a file.
type Compression string

const (
	CompressionNone   Compression = "none"
	CompressionGzip   Compression = "gzip"
	CompressionZstd   Compression = "zstd"
	CompressionBrotli Compression = "brotli"
	CompressionLZ4    Compression = "lz4"
)

// Compressions lists every accepted compression tag.
var Compressions = []Compression{
	CompressionNone, CompressionGzip, CompressionZstd, CompressionBrotli, CompressionLZ4,
}

// ParseCompression resolves a user supplied compression tag. The empty
// string means no compression.
func ParseCompression(s string) (Compression, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return CompressionNone, nil
	}
	for _, c := range Compressions {
		if string(c) == name {
			return c, nil
		}
	}

	return "", FormatErr("unsupported compression", map[string]any{
		"compression": s,
		"supported":   Compressions,
	})
}
