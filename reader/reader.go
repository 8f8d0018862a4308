package reader

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
	"github.com/vegasq/munge/internal/codec"
)

// Stdin is the input path that reads from standard input.
const Stdin = "-"

// Options tunes how an input file is decoded. Zero values select the
// format's defaults.
type Options struct {
	// Delimiter separates fields in delimited text. Defaults to ',' for csv
	// and '\t' for tsv.
	Delimiter rune
	// Sheet selects the spreadsheet worksheet. Defaults to the first one.
	Sheet string
	// Table selects the sqlite table. Defaults to DefaultTable.
	Table string
	// Compression is the codec wrapped around the input bytes.
	Compression munge.Compression
}

// DefaultTable is the sqlite table read when Options.Table is empty.
const DefaultTable = "data"

// Reader loads a whole file into memory.
type Reader interface {
	Read(path string) (dataset.Dataset, error)
}

// HeaderReader is implemented by readers whose format names the columns
// apart from the rows, so a file holding only a header still has columns.
type HeaderReader interface {
	Reader
	ReadHeader(path string) (dataset.Dataset, []string, error)
}

// ReadWithHeader reads path with r and returns the rows with their column
// list. Readers without a header of their own report the first row's keys.
func ReadWithHeader(r Reader, path string) (dataset.Dataset, []string, error) {
	if hr, ok := r.(HeaderReader); ok {
		return hr.ReadHeader(path)
	}
	ds, err := r.Read(path)
	if err != nil {
		return nil, nil, err
	}
	return ds, ds.Columns(), nil
}

// New returns the Reader for format. Write-only and unknown formats, and
// compression combined with a format that is not a byte stream, fail here
// before any file is opened.
func New(format munge.Format, opts Options) (Reader, error) {
	if opts.Compression == "" {
		opts.Compression = munge.CompressionNone
	}
	if opts.Compression != munge.CompressionNone && !format.Streamable() {
		return nil, munge.FormatErr("compression is not supported for this format", map[string]any{
			"format":      format,
			"compression": opts.Compression,
		})
	}

	switch format {
	case munge.FormatCSV:
		if opts.Delimiter == 0 {
			opts.Delimiter = ','
		}
		return &CSVReader{opts: opts}, nil
	case munge.FormatTSV:
		if opts.Delimiter == 0 {
			opts.Delimiter = '\t'
		}
		return &CSVReader{opts: opts}, nil
	case munge.FormatJSON:
		return &JSONReader{opts: opts}, nil
	case munge.FormatJSONL:
		return &JSONLReader{opts: opts}, nil
	case munge.FormatExcel:
		return &ExcelReader{opts: opts}, nil
	case munge.FormatParquet:
		return &ParquetReader{opts: opts}, nil
	case munge.FormatSQLite:
		if opts.Table == "" {
			opts.Table = DefaultTable
		}
		return &SQLiteReader{opts: opts}, nil
	case munge.FormatTable:
		return nil, munge.FormatErr("format cannot be read", map[string]any{
			"format": format,
		})
	default:
		return nil, munge.FormatErr("unsupported input format", map[string]any{
			"format": format,
		})
	}
}

// ReadFile reads path with the Reader for format.
func ReadFile(path string, format munge.Format, opts Options) (dataset.Dataset, error) {
	r, err := New(format, opts)
	if err != nil {
		return nil, err
	}
	return r.Read(path)
}

// decodeFunc turns a decompressed byte stream into rows.
type decodeFunc func(io.Reader) (dataset.Dataset, error)

// readStream opens path, applies the codec and hands the stream to decode.
// The file is closed on every path.
func readStream(path string, c munge.Compression, decode decodeFunc) (dataset.Dataset, error) {
	in, err := openInput(path, c)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()

	ds, err := decode(in)
	if err != nil {
		return nil, withPath(err, path)
	}
	return ds, nil
}

type inputFile struct {
	io.Reader
	closers []io.Closer
}

func (f *inputFile) Close() error {
	var errs []error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openInput(path string, c munge.Compression) (io.ReadCloser, error) {
	var src io.Reader
	in := &inputFile{}

	if path == Stdin {
		src = os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, openErr(path, err)
		}
		src = file
		in.closers = append(in.closers, file)
	}

	dec, err := codec.NewReader(src, c)
	if err != nil {
		_ = in.Close()
		return nil, munge.ParseErr("cannot decompress input", map[string]any{
			"path":        path,
			"compression": c,
			"error":       err,
		})
	}
	in.Reader = dec
	in.closers = append(in.closers, dec)

	return in, nil
}

func openErr(path string, err error) error {
	title := "cannot open input"
	if errors.Is(err, fs.ErrNotExist) {
		title = "input file does not exist"
	}
	return munge.IOErr(title, map[string]any{
		"path":  path,
		"error": err,
	})
}

// withPath attaches the input path to a decoding failure. Errors that are not
// already classified are content errors.
func withPath(err error, path string) error {
	var e munge.Err
	if !errors.As(err, &e) {
		return munge.ParseErr("malformed input", map[string]any{
			"path":  path,
			"error": err,
		})
	}

	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	data["path"] = path
	e.Data = data

	return e
}
