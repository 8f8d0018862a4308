package munge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{" tsv ", FormatTSV, false},
		{"json", FormatJSON, false},
		{"jsonl", FormatJSONL, false},
		{"ndjson", FormatJSONL, false},
		{"excel", FormatExcel, false},
		{"xlsx", FormatExcel, false},
		{"parquet", FormatParquet, false},
		{"sqlite", FormatSQLite, false},
		{"table", FormatTable, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ErrIs(err, CodeFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCapabilities(t *testing.T) {
	assert.False(t, FormatTable.Readable())
	assert.True(t, FormatCSV.Readable())
	assert.True(t, FormatSQLite.Readable())

	assert.False(t, FormatSQLite.Streamable())
	assert.True(t, FormatParquet.Streamable())
	assert.True(t, FormatTable.Streamable())
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    Compression
		wantErr bool
	}{
		{"", CompressionNone, false},
		{"none", CompressionNone, false},
		{"GZIP", CompressionGzip, false},
		{"zstd", CompressionZstd, false},
		{"brotli", CompressionBrotli, false},
		{"lz4", CompressionLZ4, false},
		{"bzip2", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCompression(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ErrIs(err, CodeFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
