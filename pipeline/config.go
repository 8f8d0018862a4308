package pipeline

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/query"
)

// Config describes one run. It is filled from flags, from a YAML file, or
// both.
type Config struct {
	Input             string   `yaml:"input"`
	Output            string   `yaml:"output"`
	InputFormat       string   `yaml:"input_format"`
	OutputFormat      string   `yaml:"output_format"`
	InputCompression  string   `yaml:"input_compression"`
	OutputCompression string   `yaml:"output_compression"`
	Delimiter         string   `yaml:"delimiter"`
	OutputDelimiter   string   `yaml:"output_delimiter"`
	Sheet             string   `yaml:"sheet"`
	Table             string   `yaml:"table"`
	Filter            string   `yaml:"filter"`
	Match             string   `yaml:"match"`
	GroupBy           []string `yaml:"group_by"`
	AggColumn         string   `yaml:"agg_column"`
	AggFunction       string   `yaml:"agg_function"`
	Transforms        []string `yaml:"transforms"`
	SafeCSV           bool     `yaml:"safe_csv"`
}

// DefaultConfig returns csv in, csv out, no compression. The delimiter is
// left empty so each format uses its own default.
func DefaultConfig() Config {
	return Config{
		InputFormat:       string(munge.FormatCSV),
		OutputFormat:      string(munge.FormatCSV),
		InputCompression:  string(munge.CompressionNone),
		OutputCompression: string(munge.CompressionNone),
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig. Unknown keys
// are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		title := "cannot read config file"
		if errors.Is(err, fs.ErrNotExist) {
			title = "config file does not exist"
		}
		return Config{}, munge.IOErr(title, map[string]any{
			"path":  path,
			"error": err,
		})
	}

	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, munge.ConfigErr("cannot parse config file", map[string]any{
			"path":  path,
			"error": err,
		})
	}

	return cfg, nil
}

// Aggregates reports whether any aggregation setting is present
func (c *Config) Aggregates() bool {
	return len(c.GroupBy) > 0 || c.AggColumn != "" || c.AggFunction != ""
}

// Validate checks the config without touching the filesystem
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return munge.ConfigErr("input path is required", nil)
	}
	if strings.TrimSpace(c.Output) == "" {
		return munge.ConfigErr("output path is required", nil)
	}

	inFormat, err := munge.ParseFormat(c.InputFormat)
	if err != nil {
		return err
	}
	if !inFormat.Readable() {
		return munge.FormatErr("format cannot be read", map[string]any{"format": inFormat})
	}
	if _, err := munge.ParseFormat(c.OutputFormat); err != nil {
		return err
	}
	if _, err := munge.ParseCompression(c.InputCompression); err != nil {
		return err
	}
	if _, err := munge.ParseCompression(c.OutputCompression); err != nil {
		return err
	}
	if _, err := c.delimiter(); err != nil {
		return err
	}
	if _, err := ParseDelimiter(c.OutputDelimiter); err != nil {
		return err
	}

	if c.Aggregates() {
		if len(c.GroupBy) == 0 || c.AggColumn == "" || c.AggFunction == "" {
			return munge.ConfigErr("aggregation needs group-by, agg-column and agg-function together", map[string]any{
				"group_by":     c.GroupBy,
				"agg_column":   c.AggColumn,
				"agg_function": c.AggFunction,
			})
		}
		if _, err := query.ParseAggFunc(c.AggFunction); err != nil {
			return err
		}
	}

	return nil
}

// delimiter resolves the delimiter setting
func (c *Config) delimiter() (rune, error) {
	return ParseDelimiter(c.Delimiter)
}

// outputDelimiter resolves the delimiter the writer uses. Without an
// explicit OutputDelimiter, Delimiter carries over to csv output only; tsv
// keeps its tab.
func (c *Config) outputDelimiter(format munge.Format) (rune, error) {
	if c.OutputDelimiter != "" {
		return ParseDelimiter(c.OutputDelimiter)
	}
	if format != munge.FormatCSV {
		return 0, nil
	}
	return c.delimiter()
}

// ParseDelimiter resolves a delimiter flag. "tab" and `\t` name a tab;
// anything else must be a single character. The empty string yields 0,
// leaving the format default in place.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}

	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, munge.ConfigErr("delimiter must be a single character", map[string]any{
			"delimiter": s,
		})
	}
	return r, nil
}
