package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/munge"
)

func TestRoundTrip(t *testing.T) {
	payload := strings.Repeat("name,age\nalice,30\nbob,25\n", 50)

	for _, c := range munge.Compressions {
		t.Run(string(c), func(t *testing.T) {
			var buf bytes.Buffer

			w, err := NewWriter(&buf, c)
			require.NoError(t, err)
			_, err = io.WriteString(w, payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			if c != munge.CompressionNone {
				assert.NotEqual(t, payload, buf.String())
			}

			r, err := NewReader(&buf, c)
			require.NoError(t, err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, string(got))
		})
	}
}

func TestGzipReaderRejectsPlainText(t *testing.T) {
	_, err := NewReader(strings.NewReader("not gzip at all"), munge.CompressionGzip)
	assert.Error(t, err)
}

func TestUnknownCompression(t *testing.T) {
	_, err := NewReader(strings.NewReader(""), munge.Compression("rar"))
	require.Error(t, err)
	assert.True(t, munge.ErrIs(err, munge.CodeFormat))

	_, err = NewWriter(io.Discard, munge.Compression("rar"))
	require.Error(t, err)
	assert.True(t, munge.ErrIs(err, munge.CodeFormat))
}
