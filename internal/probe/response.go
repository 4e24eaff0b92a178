package probe

import (
	"io"
	"net/http"
	"sync"
)

// Response is a handle to an HTTP response whose body has not been read yet.
// The body can be drained once with ReadBody.
type Response struct {
	url    string
	status int
	header http.Header
	body   io.ReadCloser

	mu       sync.Mutex
	consumed bool

	closeOnce sync.Once
	closeErr  error
}

// NewResponse wraps a status, headers and body stream received from url.
func NewResponse(url string, status int, header http.Header, body io.ReadCloser) *Response {
	if header == nil {
		header = http.Header{}
	}
	if body == nil {
		body = http.NoBody
	}
	return &Response{
		url:    url,
		status: status,
		header: header,
		body:   body,
	}
}

func (r *Response) URL() string         { return r.url }
func (r *Response) StatusCode() int     { return r.status }
func (r *Response) Header() http.Header { return r.header }

// Close releases the body stream. The underlying stream is closed only once
// no matter how many times Close is called.
func (r *Response) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.body.Close()
	})
	return r.closeErr
}

// take marks the body as consumed and reports whether it was still unread.
func (r *Response) take() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.consumed {
		return false
	}
	r.consumed = true
	return true
}
