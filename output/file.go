package output

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
	"github.com/vegasq/munge/internal/codec"
)

// Stdout is the output path that writes to standard output.
const Stdout = "-"

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

// WriteFile writes ds to path in the given format.
//
// The format, the compression and the destination are checked before the
// filesystem is touched. Files are written to a hidden sibling first and
// renamed over path only once everything succeeded, so a failed write never
// leaves a partial or truncated output behind.
func WriteFile(ctx context.Context, path string, format munge.Format, ds dataset.Dataset, opts Options) error {
	if err := CheckTarget(path, format, opts); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if path == Stdout {
		if err := encode(stdout, format, ds, opts); err != nil {
			return writeErr(path, err)
		}
		return nil
	}

	tmp := tempPath(path)
	var err error
	if format == munge.FormatSQLite {
		err = writeSQLite(ctx, tmp, opts.Table, ds, opts.Columns)
	} else {
		err = writeStreamFile(tmp, format, ds, opts)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return writeErr(path, err)
	}

	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return munge.IOErr("cannot replace output file", map[string]any{
			"path":  path,
			"error": err,
		})
	}
	return nil
}

// CheckTarget reports whether rows could be written to path in format with
// opts, without touching the filesystem.
func CheckTarget(path string, format munge.Format, opts Options) error {
	switch format {
	case munge.FormatCSV, munge.FormatTSV, munge.FormatJSON, munge.FormatJSONL,
		munge.FormatExcel, munge.FormatParquet, munge.FormatTable, munge.FormatSQLite:
	default:
		return munge.FormatErr("unsupported output format", map[string]any{
			"format": format,
		})
	}

	if _, err := munge.ParseCompression(string(opts.Compression)); err != nil {
		return err
	}

	if format.Streamable() {
		return nil
	}
	if opts.Compression != "" && opts.Compression != munge.CompressionNone {
		return munge.FormatErr("compression is not supported for this format", map[string]any{
			"format":      format,
			"compression": opts.Compression,
		})
	}
	if path == Stdout {
		return munge.FormatErr("format cannot be written to stdout", map[string]any{
			"format": format,
		})
	}
	return nil
}

// tempPath names the hidden sibling a file is staged in.
func tempPath(path string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, "."+name+"."+uuid.NewString()+".tmp")
}

func writeStreamFile(path string, format munge.Format, ds dataset.Dataset, opts Options) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if err := encode(file, format, ds, opts); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// encode runs the formatter for format over w, compressed as requested.
func encode(w io.Writer, format munge.Format, ds dataset.Dataset, opts Options) error {
	cw, err := codec.NewWriter(w, opts.Compression)
	if err != nil {
		return err
	}

	formatter, err := NewFormatter(format, cw, opts)
	if err != nil {
		_ = cw.Close()
		return err
	}
	if err := formatter.Format(ds); err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}

func writeErr(path string, err error) error {
	var e munge.Err
	if errors.As(err, &e) {
		return err
	}
	return munge.IOErr("cannot write output", map[string]any{
		"path":  path,
		"error": err,
	})
}
