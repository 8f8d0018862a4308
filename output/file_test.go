package output

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
	"github.com/vegasq/munge/reader"
)

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func assertSameRows(t *testing.T, want, got dataset.Dataset) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Keys(), got[i].Keys(), "row %d keys", i)
		for _, k := range want[i].Keys() {
			w, _ := want[i].Get(k)
			g, _ := got[i].Get(k)
			assert.True(t, w.Equal(g), "row %d column %q: want %v, got %v", i, k, w, g)
		}
	}
}

// strings only, so text formats reproduce them exactly
func textRows() dataset.Dataset {
	return dataset.Dataset{
		dataset.RowOf("name", "alice", "age", "30", "city", "Zürich"),
		dataset.RowOf("name", "bob, jr", "age", "25", "city", "line\nbreak"),
		dataset.RowOf("name", "carol", "age", "", "city", `"quoted"`),
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		format munge.Format
		opts   Options
	}{
		{"csv", munge.FormatCSV, Options{}},
		{"tsv", munge.FormatTSV, Options{}},
		{"json", munge.FormatJSON, Options{}},
		{"jsonl", munge.FormatJSONL, Options{}},
		{"excel", munge.FormatExcel, Options{}},
		{"excel named sheet", munge.FormatExcel, Options{Sheet: "people"}},
		{"csv gzip", munge.FormatCSV, Options{Compression: munge.CompressionGzip}},
		{"json zstd", munge.FormatJSON, Options{Compression: munge.CompressionZstd}},
		{"jsonl brotli", munge.FormatJSONL, Options{Compression: munge.CompressionBrotli}},
		{"excel lz4", munge.FormatExcel, Options{Compression: munge.CompressionLZ4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "out")

			require.NoError(t, WriteFile(context.Background(), path, tt.format, textRows(), tt.opts))
			assert.Equal(t, []string{"out"}, dirEntries(t, dir))

			got, err := reader.ReadFile(path, tt.format, reader.Options{
				Sheet:       tt.opts.Sheet,
				Compression: tt.opts.Compression,
			})
			require.NoError(t, err)

			want := textRows()
			if tt.format == munge.FormatExcel {
				// empty cells read back as null
				want[2].Set("age", dataset.Null())
			}
			assertSameRows(t, want, got)
		})
	}
}

func TestWriteFile_JSONKeepsKinds(t *testing.T) {
	ds := dataset.Dataset{
		dataset.RowOf("n", 30, "f", 1.25, "b", true, "z", nil, "s", "x"),
	}
	path := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, WriteFile(context.Background(), path, munge.FormatJSON, ds, Options{}))

	got, err := reader.ReadFile(path, munge.FormatJSON, reader.Options{})
	require.NoError(t, err)
	assertSameRows(t, ds, got)
}

func TestWriteFile_Parquet(t *testing.T) {
	ds := dataset.Dataset{
		dataset.RowOf("a", "x", "b", 30),
		dataset.RowOf("a", nil, "b", 2.5),
	}
	path := filepath.Join(t.TempDir(), "out.parquet")

	require.NoError(t, WriteFile(context.Background(), path, munge.FormatParquet, ds, Options{}))

	got, err := reader.ReadFile(path, munge.FormatParquet, reader.Options{})
	require.NoError(t, err)
	assertSameRows(t, dataset.Dataset{
		dataset.RowOf("a", "x", "b", "30"),
		dataset.RowOf("a", nil, "b", "2.5"),
	}, got)
}

func TestWriteFile_SQLite(t *testing.T) {
	ds := dataset.Dataset{
		dataset.RowOf("name", "alice", "age", 30),
		dataset.RowOf("name", nil, "age", 1.5),
	}
	path := filepath.Join(t.TempDir(), "out.db")

	require.NoError(t, WriteFile(context.Background(), path, munge.FormatSQLite, ds, Options{Table: "people"}))

	got, err := reader.ReadFile(path, munge.FormatSQLite, reader.Options{Table: "people"})
	require.NoError(t, err)
	assertSameRows(t, dataset.Dataset{
		dataset.RowOf("name", "alice", "age", "30"),
		dataset.RowOf("name", nil, "age", "1.5"),
	}, got)
}

func TestWriteFile_HeaderOnlyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Columns: []string{"g", "v"}}

	for _, format := range []munge.Format{munge.FormatCSV, munge.FormatTSV, munge.FormatExcel, munge.FormatSQLite} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(dir, "empty."+string(format))
			require.NoError(t, WriteFile(context.Background(), path, format, dataset.Dataset{}, opts))

			r, err := reader.New(format, reader.Options{})
			require.NoError(t, err)
			ds, columns, err := reader.ReadWithHeader(r, path)
			require.NoError(t, err)
			assert.Empty(t, ds)
			assert.Equal(t, []string{"g", "v"}, columns)
		})
	}
}

func TestWriteFile_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old contents that are longer than the new ones\n"), 0o644))

	require.NoError(t, WriteFile(context.Background(), path, munge.FormatCSV, dataset.Dataset{dataset.RowOf("a", 1)}, Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(data))
}

func TestWriteFile_FailureLeavesTargetUntouched(t *testing.T) {
	tests := []struct {
		name   string
		format munge.Format
		ds     dataset.Dataset
		opts   Options
	}{
		{"unencodable json", munge.FormatJSON, dataset.Dataset{dataset.RowOf("v", math.NaN())}, Options{}},
		{"invalid sheet name", munge.FormatExcel, dataset.Dataset{dataset.RowOf("v", 1)}, Options{Sheet: "bad/name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "out")
			require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o644))

			err := WriteFile(context.Background(), path, tt.format, tt.ds, tt.opts)
			require.Error(t, err)
			assert.True(t, munge.ErrIs(err, munge.CodeIO), "got %v", err)

			data, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			assert.Equal(t, "keep me", string(data))
			assert.Equal(t, []string{"out"}, dirEntries(t, dir))
		})
	}
}

func TestWriteFile_RejectsBeforeTouchingFilesystem(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		format munge.Format
		opts   Options
	}{
		{"unknown format", "out.xml", munge.Format("xml"), Options{}},
		{"unknown compression", "out.csv", munge.FormatCSV, Options{Compression: "rar"}},
		{"compressed sqlite", "out.db", munge.FormatSQLite, Options{Compression: munge.CompressionGzip}},
		{"sqlite to stdout", Stdout, munge.FormatSQLite, Options{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := tt.path
			if path != Stdout {
				path = filepath.Join(dir, path)
			}

			err := WriteFile(context.Background(), path, tt.format, textRows(), tt.opts)
			require.Error(t, err)
			assert.True(t, munge.ErrIs(err, munge.CodeFormat), "got %v", err)
			assert.Empty(t, dirEntries(t, dir))
		})
	}
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "out.csv")

	err := WriteFile(context.Background(), path, munge.FormatCSV, textRows(), Options{})
	require.Error(t, err)
	assert.True(t, munge.ErrIs(err, munge.CodeIO))
}

func TestWriteFile_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WriteFile(ctx, filepath.Join(dir, "out.csv"), munge.FormatCSV, textRows(), Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dirEntries(t, dir))
}

func TestWriteFile_Stdout(t *testing.T) {
	var buf bytes.Buffer
	stdout = &buf
	t.Cleanup(func() { stdout = os.Stdout })

	require.NoError(t, WriteFile(context.Background(), Stdout, munge.FormatCSV, dataset.Dataset{dataset.RowOf("a", "b")}, Options{}))
	assert.Equal(t, "a\nb\n", buf.String())
}

func TestTempPath(t *testing.T) {
	p := tempPath(filepath.Join("some", "dir", "out.csv"))
	assert.Equal(t, filepath.Join("some", "dir"), filepath.Dir(p))
	assert.Regexp(t, `^\.out\.csv\.[0-9a-f-]{36}\.tmp$`, filepath.Base(p))
}
