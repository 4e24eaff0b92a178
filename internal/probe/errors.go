package probe

import (
	"errors"
	"fmt"
)

// Kind classifies why a probe step failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindConnection
	KindProtocol
	KindIO
	KindAssertion
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConnection:
		return "connection"
	case KindProtocol:
		return "protocol"
	case KindIO:
		return "io"
	case KindAssertion:
		return "assertion"
	default:
		return "unknown"
	}
}

// ErrBodyConsumed is returned when a response body is read a second time.
var ErrBodyConsumed = errors.New("response body already consumed")

// Error is a failure of a single probe step against URL.
type Error struct {
	Kind Kind
	URL  string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error for %s: %s", e.Kind, e.URL, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

func newError(kind Kind, url, msg string, err error) *Error {
	return &Error{Kind: kind, URL: url, Msg: msg, Err: err}
}
