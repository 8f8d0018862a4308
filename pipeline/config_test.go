package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/munge"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "csv", cfg.InputFormat)
	assert.Equal(t, "csv", cfg.OutputFormat)
	assert.Equal(t, "none", cfg.InputCompression)
	assert.Equal(t, "none", cfg.OutputCompression)
	assert.Empty(t, cfg.Delimiter)
	assert.False(t, cfg.Aggregates())
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "job.yaml", `
input: people.csv
output: out.json
output_format: json
output_compression: gzip
filter: age > 30
group_by: [city, team]
agg_column: salary
agg_function: avg
transforms:
  - "k=avg_salary / 1000"
  - "label=concat(city, '-', team)"
safe_csv: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "people.csv", cfg.Input)
	assert.Equal(t, "out.json", cfg.Output)
	assert.Equal(t, "csv", cfg.InputFormat, "unset keys keep their defaults")
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "gzip", cfg.OutputCompression)
	assert.Equal(t, "age > 30", cfg.Filter)
	assert.Equal(t, []string{"city", "team"}, cfg.GroupBy)
	assert.Equal(t, "salary", cfg.AggColumn)
	assert.Equal(t, "avg", cfg.AggFunction)
	assert.Equal(t, []string{"k=avg_salary / 1000", "label=concat(city, '-', team)"}, cfg.Transforms)
	assert.True(t, cfg.SafeCSV)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigEmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		wantCode string
	}{
		{
			name:     "missing file",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantCode: munge.CodeIO,
		},
		{
			name:     "unknown key",
			path:     func(t *testing.T) string { return writeFile(t, "c.yaml", "input: a.csv\nfilters: x\n") },
			wantCode: munge.CodeConfig,
		},
		{
			name:     "malformed yaml",
			path:     func(t *testing.T) string { return writeFile(t, "c.yaml", "input: [a\n") },
			wantCode: munge.CodeConfig,
		},
		{
			name:     "wrong type",
			path:     func(t *testing.T) string { return writeFile(t, "c.yaml", "group_by: {a: 1}\n") },
			wantCode: munge.CodeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path(t))
			require.Error(t, err)
			assert.True(t, munge.ErrIs(err, tt.wantCode), "got %v", err)
		})
	}
}

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Input = "in.csv"
	cfg.Output = "out.csv"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		wantCode string
	}{
		{"valid", func(c *Config) {}, ""},
		{"aggregation complete", func(c *Config) {
			c.GroupBy, c.AggColumn, c.AggFunction = []string{"g"}, "v", "sum"
		}, ""},
		{"tab by name", func(c *Config) { c.Delimiter = "tab" }, ""},
		{"escaped tab", func(c *Config) { c.Delimiter = `\t` }, ""},
		{"semicolon", func(c *Config) { c.Delimiter = ";" }, ""},
		{"output tab", func(c *Config) { c.OutputDelimiter = "tab" }, ""},
		{"xlsx alias", func(c *Config) { c.OutputFormat = "xlsx" }, ""},
		{"empty compression", func(c *Config) { c.InputCompression = "" }, ""},

		{"no input", func(c *Config) { c.Input = "" }, munge.CodeConfig},
		{"no output", func(c *Config) { c.Output = " " }, munge.CodeConfig},
		{"unknown input format", func(c *Config) { c.InputFormat = "xml" }, munge.CodeFormat},
		{"unknown output format", func(c *Config) { c.OutputFormat = "yaml" }, munge.CodeFormat},
		{"write-only input format", func(c *Config) { c.InputFormat = "table" }, munge.CodeFormat},
		{"unknown compression", func(c *Config) { c.OutputCompression = "zip" }, munge.CodeFormat},
		{"long delimiter", func(c *Config) { c.Delimiter = ";;" }, munge.CodeConfig},
		{"quote delimiter", func(c *Config) { c.Delimiter = `"` }, munge.CodeConfig},
		{"long output delimiter", func(c *Config) { c.OutputDelimiter = "ab" }, munge.CodeConfig},
		{"group-by only", func(c *Config) { c.GroupBy = []string{"g"} }, munge.CodeConfig},
		{"agg-column only", func(c *Config) { c.AggColumn = "v" }, munge.CodeConfig},
		{"no agg-function", func(c *Config) {
			c.GroupBy, c.AggColumn = []string{"g"}, "v"
		}, munge.CodeConfig},
		{"unknown agg-function", func(c *Config) {
			c.GroupBy, c.AggColumn, c.AggFunction = []string{"g"}, "v", "median"
		}, munge.CodeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, munge.ErrIs(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestConfigDelimiter(t *testing.T) {
	tests := []struct {
		in   string
		want rune
	}{
		{"", 0},
		{"tab", '\t'},
		{`\t`, '\t'},
		{"\t", '\t'},
		{"|", '|'},
		{"§", '§'},
	}

	for _, tt := range tests {
		cfg := Config{Delimiter: tt.in}
		got, err := cfg.delimiter()
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestConfigOutputDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		format munge.Format
		want   rune
	}{
		{"nothing set", Config{}, munge.FormatCSV, 0},
		{"csv inherits", Config{Delimiter: ";"}, munge.FormatCSV, ';'},
		{"tsv ignores input delimiter", Config{Delimiter: ";"}, munge.FormatTSV, 0},
		{"json ignores input delimiter", Config{Delimiter: ";"}, munge.FormatJSON, 0},
		{"explicit wins", Config{Delimiter: ";", OutputDelimiter: "|"}, munge.FormatCSV, '|'},
		{"explicit tsv", Config{OutputDelimiter: ","}, munge.FormatTSV, ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.outputDelimiter(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
