// Package codec wraps byte streams with the compression selected by a
// munge.Compression tag.
package codec

import (
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/vegasq/munge"
)

// NewReader returns a reader that decompresses r. Closing it releases the
// decoder but never closes r.
func NewReader(r io.Reader, c munge.Compression) (io.ReadCloser, error) {
	switch c {
	case munge.CompressionNone, "":
		return io.NopCloser(r), nil
	case munge.CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return zr, nil
	case munge.CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return zstdReadCloser{zr}, nil
	case munge.CompressionBrotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	case munge.CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, munge.FormatErr("unsupported compression", map[string]any{
			"compression": c,
		})
	}
}

// NewWriter returns a writer that compresses into w. Close must be called
// to flush the trailing frame; it never closes w.
func NewWriter(w io.Writer, c munge.Compression) (io.WriteCloser, error) {
	switch c {
	case munge.CompressionNone, "":
		return nopWriteCloser{w}, nil
	case munge.CompressionGzip:
		return gzip.NewWriter(w), nil
	case munge.CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		return zw, nil
	case munge.CompressionBrotli:
		return brotli.NewWriter(w), nil
	case munge.CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, munge.FormatErr("unsupported compression", map[string]any{
			"compression": c,
		})
	}
}

type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
