package output

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
)

// people has heterogeneous rows: the second lacks "note" and carries an
// extra key, the third holds a null.
func people() dataset.Dataset {
	return dataset.Dataset{
		dataset.RowOf("name", "alice", "age", "30", "note", "likes, commas"),
		dataset.RowOf("name", "bob", "age", 25, "extra", "dropped"),
		dataset.RowOf("name", nil, "age", 1.5, "note", `say "hi"`),
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestFormatters_Golden(t *testing.T) {
	tests := []struct {
		name   string
		format munge.Format
		ds     dataset.Dataset
	}{
		{"csv", munge.FormatCSV, people()},
		{"tsv", munge.FormatTSV, people()},
		{"json", munge.FormatJSON, people()},
		{"jsonl", munge.FormatJSONL, people()},
		{"json_empty", munge.FormatJSON, dataset.Dataset{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatter, err := NewFormatter(tt.format, &buf, Options{})
			require.NoError(t, err)
			require.NoError(t, formatter.Format(tt.ds))

			newGoldie(t).Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestFormatters_EmptyDataset(t *testing.T) {
	tests := []struct {
		format munge.Format
		want   string
	}{
		{munge.FormatCSV, ""},
		{munge.FormatJSONL, ""},
		{munge.FormatJSON, "[]\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			formatter, err := NewFormatter(tt.format, &buf, Options{})
			require.NoError(t, err)
			require.NoError(t, formatter.Format(nil))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatters_HeaderWithoutRows(t *testing.T) {
	tests := []struct {
		format munge.Format
		want   string
	}{
		{munge.FormatCSV, "g,sum_v\n"},
		{munge.FormatTSV, "g\tsum_v\n"},
		{munge.FormatJSON, "[]\n"},
		{munge.FormatJSONL, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			formatter, err := NewFormatter(tt.format, &buf, Options{Columns: []string{"g", "sum_v"}})
			require.NoError(t, err)
			require.NoError(t, formatter.Format(dataset.Dataset{}))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatters_RowsWinOverHeader(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter(munge.FormatCSV, &buf, Options{Columns: []string{"ignored"}})
	require.NoError(t, err)
	require.NoError(t, formatter.Format(dataset.Dataset{dataset.RowOf("a", 1)}))
	assert.Equal(t, "a\n1\n", buf.String())
}

func TestTableFormatter_HeaderWithoutRows(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter(munge.FormatTable, &buf, Options{Columns: []string{"region", "total"}})
	require.NoError(t, err)
	require.NoError(t, formatter.Format(nil))
	assert.Contains(t, buf.String(), "region")
	assert.Contains(t, buf.String(), "total")
}

func TestCSVFormatter_SafeCSV(t *testing.T) {
	ds := dataset.Dataset{
		dataset.RowOf("v", "=SUM(A1:A2)"),
		dataset.RowOf("v", "@cmd"),
		dataset.RowOf("v", "+it's"),
		dataset.RowOf("v", -5),
		dataset.RowOf("v", "plain"),
	}

	var safe bytes.Buffer
	require.NoError(t, NewCSVFormatter(&safe, ',', true).Format(ds))
	assert.Equal(t, "v\n'=SUM(A1:A2)\n'@cmd\n'+it''s\n-5\nplain\n", safe.String())

	var raw bytes.Buffer
	require.NoError(t, NewCSVFormatter(&raw, ',', false).Format(ds))
	assert.Equal(t, "v\n=SUM(A1:A2)\n@cmd\n+it's\n-5\nplain\n", raw.String())
}

func TestCSVFormatter_CustomDelimiter(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter(munge.FormatCSV, &buf, Options{Delimiter: ';'})
	require.NoError(t, err)
	require.NoError(t, formatter.Format(dataset.Dataset{dataset.RowOf("a", "x;y", "b", true)}))
	assert.Equal(t, "a;b\n\"x;y\";true\n", buf.String())
}

func TestCSVFormatter_SetOutput(t *testing.T) {
	var first, second bytes.Buffer
	formatter := NewCSVFormatter(&first, ',', false)
	formatter.SetOutput(&second)
	require.NoError(t, formatter.Format(dataset.Dataset{dataset.RowOf("a", 1)}))

	assert.Empty(t, first.String())
	assert.Equal(t, "a\n1\n", second.String())
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter, err := NewFormatter(munge.FormatTable, &buf, Options{})
	require.NoError(t, err)
	require.NoError(t, formatter.Format(people()))

	out := buf.String()
	// headers are not upper-cased
	assert.Contains(t, out, "name")
	assert.NotContains(t, out, "NAME")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "likes, commas")
	assert.NotContains(t, out, "dropped")
}

func TestNewFormatter_Rejects(t *testing.T) {
	_, err := NewFormatter(munge.FormatSQLite, &bytes.Buffer{}, Options{})
	assert.True(t, munge.ErrIs(err, munge.CodeFormat))

	_, err = NewFormatter(munge.Format("xml"), &bytes.Buffer{}, Options{})
	assert.True(t, munge.ErrIs(err, munge.CodeFormat))
}
