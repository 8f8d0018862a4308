package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/munge"
)

const salesCSV = "region,amount\neu,10\neu,20\nus,5\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// run executes the CLI with args and returns the exit code with both streams
func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.True(t, strings.HasPrefix(cmd.Use, "munge"))
	assert.Contains(t, cmd.Long, "--transform")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"schema", "version"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "Command %s should exist", name)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)
}

func TestRootFlags(t *testing.T) {
	cmd := NewRootCommand()

	defaults := map[string]string{
		"input-format":       "csv",
		"output-format":      "csv",
		"input-compression":  "none",
		"output-compression": "none",
		"delimiter":          "",
		"output-delimiter":   "",
		"filter":             "",
		"match":              "",
		"agg-column":         "",
		"agg-function":       "",
		"config":             "",
		"safe-csv":           "false",
	}
	for name, def := range defaults {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, def, flag.DefValue, name)
	}

	assert.Equal(t, "stringArray", cmd.Flags().Lookup("group-by").Value.Type())
	assert.Equal(t, "stringArray", cmd.Flags().Lookup("transform").Value.Type())
}

func TestRunPipeline(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "sales.csv", salesCSV)
	out := filepath.Join(dir, "totals.json")

	code, stdout, stderr := run(t, in, out,
		"--output-format", "json",
		"--filter", "amount > 1",
		"--group-by", "region",
		"--agg-column", "amount",
		"--agg-function", "sum",
		"--transform", "k=sum_amount / 10",
	)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "Processed data written to "+out+"\n", stdout)
	assert.JSONEq(t, `[
		{"region": "eu", "sum_amount": 30, "k": 3},
		{"region": "us", "sum_amount": 5, "k": 0.5}
	]`, readFile(t, out))
}

func TestRunTransformsKeepCommas(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "a,b\nx,y\n")
	out := filepath.Join(dir, "out.csv")

	code, _, stderr := run(t, in, out,
		"--transform", "ab=concat(a, '-', b)",
		"--transform", "n=len(ab)",
	)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "a,b,ab,n\nx,y,x-y,3\n", readFile(t, out))
}

func TestRunGroupByList(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "a,b,v\n1,x,2\n1,x,3\n1,y,4\n")
	out := filepath.Join(dir, "out.csv")

	code, _, stderr := run(t, in, out, "--group-by", "a", "--group-by", "b", "--agg-column", "v", "--agg-function", "max")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "a,b,max_v\n1,x,3\n1,y,4\n", readFile(t, out))
}

func TestRunGroupByKeepsCommas(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "\"city,state\",v\n\"Austin,TX\",2\n\"Austin,TX\",3\n\"Reno,NV\",4\n")
	out := filepath.Join(dir, "out.csv")

	code, _, stderr := run(t, in, out, "--group-by", "city,state", "--agg-column", "v", "--agg-function", "sum")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "\"city,state\",sum_v\n\"Austin,TX\",5\n\"Reno,NV\",4\n", readFile(t, out))
}

func TestRunOutputDelimiter(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "a;b\n1;2\n")

	tests := []struct {
		name string
		out  string
		args []string
		want string
	}{
		{"csv keeps input delimiter", "out.csv", nil, "a;b\n1;2\n"},
		{"tsv uses tab", "out.tsv", []string{"--output-format", "tsv"}, "a\tb\n1\t2\n"},
		{"explicit output delimiter", "out2.csv", []string{"--output-delimiter", "|"}, "a|b\n1|2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.out)
			args := append([]string{in, out, "--delimiter", ";"}, tt.args...)
			code, _, stderr := run(t, args...)
			require.Equal(t, ExitSuccess, code, stderr)
			assert.Equal(t, tt.want, readFile(t, out))
		})
	}
}

func TestRunHeaderOnlyInput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "region,amount\n")
	mid := filepath.Join(dir, "mid.csv")
	out := filepath.Join(dir, "out.csv")

	code, _, stderr := run(t, in, mid)
	require.Equal(t, ExitSuccess, code, stderr)
	code, _, stderr = run(t, mid, out)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "region,amount\n", readFile(t, out))
}

func TestRunWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "sales.csv", salesCSV)
	out := filepath.Join(dir, "out.jsonl")
	cfg := writeFile(t, dir, "job.yaml", `
input: `+in+`
output: `+out+`
output_format: jsonl
filter: amount > 100
`)

	// --filter was given explicitly so it wins over the file; output_format
	// comes from the file because its flag was left alone.
	code, _, stderr := run(t, "--config", cfg, "--filter", "region == 'us'")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "{\"region\":\"us\",\"amount\":\"5\"}\n", readFile(t, out))
}

func TestRunPositionalsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "sales.csv", salesCSV)
	cfg := writeFile(t, dir, "job.yaml", "input: nope.csv\noutput: nope.out\nfilter: region == 'eu'\n")
	out := filepath.Join(dir, "eu.csv")

	code, _, stderr := run(t, "--config", cfg, in, out)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "region,amount\neu,10\neu,20\n", readFile(t, out))
}

func TestRunVerboseLogs(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "sales.csv", salesCSV)
	out := filepath.Join(dir, "out.csv")

	code, _, stderr := run(t, "-v", in, out, "--filter", "amount >= 10")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stderr, "stage=filter rows_in=3 rows_out=2")
	assert.Contains(t, stderr, "level=INFO")

	code, _, stderr = run(t, in, out)
	require.Equal(t, ExitSuccess, code)
	assert.Empty(t, stderr)
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "sales.csv", salesCSV)
	out := filepath.Join(dir, "out.csv")

	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr string
	}{
		{"no arguments", nil, ExitUsage, "input and output paths are required"},
		{"one argument", []string{in}, ExitUsage, "expected both"},
		{"three arguments", []string{in, out, "extra"}, ExitUsage, "invalid arguments"},
		{"unknown flag", []string{in, out, "--nope"}, ExitUsage, "invalid flags"},
		{"unknown format", []string{in, out, "--output-format", "xml"}, ExitUsage, "unsupported format"},
		{"bad delimiter", []string{in, out, "--delimiter", ";;"}, ExitUsage, "delimiter"},
		{"partial aggregation", []string{in, out, "--group-by", "region"}, ExitUsage, "aggregation"},
		{"missing config", []string{"--config", filepath.Join(dir, "nope.yaml")}, ExitFailure, "config file does not exist"},
		{"missing input", []string{filepath.Join(dir, "nope.csv"), out}, ExitFailure, "does not exist"},
		{"bad filter", []string{in, out, "--filter", "amount >"}, ExitFailure, "invalid expression"},
		{"unknown column", []string{in, out, "--filter", "price > 1"}, ExitFailure, "cannot evaluate expression"},
		{"bad transform", []string{in, out, "--transform", "nothing"}, ExitUsage, "transform"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := run(t, tt.args...)
			assert.Equal(t, tt.want, code, stderr)
			assert.Empty(t, stdout)
			assert.True(t, strings.HasPrefix(stderr, "Error: "), stderr)
			assert.Contains(t, stderr, tt.wantErr)
			assert.NoFileExists(t, out)
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"exit error", NewExitError(ExitUsage, "bad"), ExitUsage},
		{"wrapped exit error", WrapExitError(ExitFailure, "outer", NewExitError(ExitUsage, "inner")), ExitFailure},
		{"config", munge.ConfigErr("bad config", nil), ExitUsage},
		{"format", munge.FormatErr("bad format", nil), ExitUsage},
		{"io", munge.IOErr("cannot open", nil), ExitFailure},
		{"evaluation", munge.EvaluationErr("cannot evaluate expression", nil), ExitFailure},
		{"plain", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError(t *testing.T) {
	cause := errors.New("cause")
	err := WrapExitError(ExitUsage, "invalid flags", cause)
	assert.Equal(t, "invalid flags: cause", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}
