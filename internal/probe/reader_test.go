package probe

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
)

type trackingBody struct {
	r      io.Reader
	closes atomic.Int32
}

func (b *trackingBody) Read(p []byte) (int, error) { return b.r.Read(p) }

func (b *trackingBody) Close() error {
	b.closes.Add(1)
	return nil
}

func newTrackedResponse(r io.Reader, contentType string) (*Response, *trackingBody) {
	body := &trackingBody{r: r}
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return NewResponse("http://localhost:9080/converter/", http.StatusOK, header, body), body
}

func TestReadBody_ConcatenatesLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lf", in: "<p>one</p>\n<p>two</p>\n", want: "<p>one</p><p>two</p>"},
		{name: "crlf", in: "a\r\nb\r\nc", want: "abc"},
		{name: "cr", in: "a\rb\rc\r", want: "abc"},
		{name: "no trailing newline", in: "line1\nline2", want: "line1line2"},
		{name: "blank lines", in: "\n\nx\n\n", want: "x"},
		{name: "spaces kept", in: "0    feet\n3    inches\n", want: "0    feet3    inches"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := newTrackedResponse(strings.NewReader(tt.in), "text/html; charset=utf-8")

			got, err := ReadBody(resp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.EqualValues(t, 1, body.closes.Load())
		})
	}
}

func TestReadBody_LongBody(t *testing.T) {
	line := strings.Repeat("x", 100)
	in := strings.Repeat(line+"\n", 500)

	resp, _ := newTrackedResponse(strings.NewReader(in), "text/plain")
	got, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat(line, 500), got)
}

func TestReadBody_EmptyBody(t *testing.T) {
	resp, body := newTrackedResponse(strings.NewReader(""), "")

	got, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.EqualValues(t, 1, body.closes.Load())

	err = ExpectContains(resp.URL(), got, "Enter the height in centimeters")
	require.Error(t, err)
	assert.Equal(t, KindAssertion, KindOf(err))
}

func TestReadBody_ReadErrorClosesStream(t *testing.T) {
	reset := errors.New("connection reset by peer")
	in := io.MultiReader(strings.NewReader("partial\n"), iotest.ErrReader(reset))
	resp, body := newTrackedResponse(in, "text/html")

	_, err := ReadBody(resp)
	require.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))
	assert.ErrorIs(t, err, reset)
	assert.EqualValues(t, 1, body.closes.Load())
}

func TestReadBody_TruncatedStreamIsAnError(t *testing.T) {
	in := io.MultiReader(strings.NewReader("<p>0    feet</p>\n"), iotest.ErrReader(io.ErrUnexpectedEOF))
	resp, body := newTrackedResponse(in, "text/html")

	_, err := ReadBody(resp)
	require.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.EqualValues(t, 1, body.closes.Load())
}

func TestReadBody_ReadErrorAfterPreview(t *testing.T) {
	reset := errors.New("connection reset by peer")
	in := io.MultiReader(strings.NewReader(strings.Repeat("y", 4096)), iotest.ErrReader(reset))
	resp, body := newTrackedResponse(in, "text/html; charset=utf-8")

	_, err := ReadBody(resp)
	require.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))
	assert.EqualValues(t, 1, body.closes.Load())
}

func TestReadBody_SecondReadIsRejected(t *testing.T) {
	resp, body := newTrackedResponse(strings.NewReader("once\n"), "")

	_, err := ReadBody(resp)
	require.NoError(t, err)

	_, err = ReadBody(resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBodyConsumed)
	assert.EqualValues(t, 1, body.closes.Load())
}

func TestReadBody_CloseAfterReadIsNoop(t *testing.T) {
	resp, body := newTrackedResponse(strings.NewReader("x"), "")

	_, err := ReadBody(resp)
	require.NoError(t, err)
	require.NoError(t, resp.Close())
	require.NoError(t, resp.Close())

	assert.EqualValues(t, 1, body.closes.Load())
}

func TestReadBody_DecodesDeclaredCharset(t *testing.T) {
	resp, _ := newTrackedResponse(strings.NewReader("caf\xe9\n"), "text/html; charset=iso-8859-1")

	got, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, "café", got)
}

func TestReadBody_MalformedUTF8IsAnError(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "in first line", in: "ok\xff\xfe\n"},
		{name: "after preview", in: strings.Repeat("a", 2*previewSize) + "\xc3(\n"},
		{name: "cut rune at end", in: "caf\xc3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := newTrackedResponse(strings.NewReader(tt.in), "text/html; charset=utf-8")

			_, err := ReadBody(resp)
			require.Error(t, err)
			assert.Equal(t, KindIO, KindOf(err))
			assert.ErrorIs(t, err, encoding.ErrInvalidUTF8)
			assert.EqualValues(t, 1, body.closes.Load())
		})
	}
}

func TestReadBody_MultiByteRunesAcrossChunks(t *testing.T) {
	in := strings.Repeat("é", previewSize) + "\n3    inches\n"
	resp, _ := newTrackedResponse(iotest.OneByteReader(strings.NewReader(in)), "text/html; charset=utf-8")

	got, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", previewSize)+"3    inches", got)
}
