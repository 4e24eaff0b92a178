package probe

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// previewSize is how much of the body is sniffed to pick a charset.
const previewSize = 1024

var lineTerminators = strings.NewReplacer("\r", "", "\n", "")

// ReadBody drains the response body and returns its lines concatenated
// without terminators ("\n", "\r\n" and "\r" all end a line). Content that
// spans a line break therefore cannot be matched afterwards.
//
// The body is closed before ReadBody returns, whatever the outcome.
func ReadBody(resp *Response) (string, error) {
	if !resp.take() {
		return "", newError(KindIO, resp.URL(), "read body", ErrBodyConsumed)
	}
	defer resp.Close()

	r, err := decodingReader(resp.body, resp.Header().Get("Content-Type"))
	if err != nil {
		return "", newError(KindIO, resp.URL(), "read body", err)
	}

	var sb strings.Builder
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		sb.WriteString(lineTerminators.Replace(line))
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", newError(KindIO, resp.URL(), "read body", err)
		}
	}

	return sb.String(), nil
}

// decodingReader sniffs the start of body and returns a reader yielding
// UTF-8. Unlike io.ReadFull, a truncated stream is reported as an error
// rather than treated as a short body. Malformed UTF-8 fails the read with
// encoding.ErrInvalidUTF8.
func decodingReader(body io.Reader, contentType string) (io.Reader, error) {
	preview := make([]byte, previewSize)
	n, err := readPreview(body, preview)
	if err != nil && err != io.EOF {
		return nil, err
	}
	preview = preview[:n]

	var r io.Reader = bytes.NewReader(preview)
	if err == nil {
		r = io.MultiReader(r, body)
	}

	enc, name, _ := charset.DetermineEncoding(preview, contentType)
	if name == "utf-8" {
		return transform.NewReader(r, encoding.UTF8Validator), nil
	}
	return enc.NewDecoder().Reader(r), nil
}

func readPreview(r io.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
