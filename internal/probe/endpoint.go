package probe

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultScheme = "http"
	defaultHost   = "localhost"
	defaultApp    = "converter"
)

// Target identifies the application under test. Only Port has no default.
type Target struct {
	Scheme string
	Host   string
	Port   string
	App    string
}

// BaseURL renders the base URL without validating it.
func (t Target) BaseURL() string {
	scheme := t.Scheme
	if scheme == "" {
		scheme = defaultScheme
	}
	host := t.Host
	if host == "" {
		host = defaultHost
	}
	app := strings.Trim(t.App, "/")
	if app == "" {
		app = defaultApp
	}
	return fmt.Sprintf("%s://%s:%s/%s/", scheme, host, t.Port, app)
}

// Endpoint is a validated base URL of the application under test.
type Endpoint struct {
	base *url.URL
}

// NewEndpoint validates the target and returns its base endpoint
func NewEndpoint(t Target) (*Endpoint, error) {
	raw := t.BaseURL()

	port, err := strconv.Atoi(t.Port)
	if err != nil || port < 1 || port > 65535 {
		return nil, newError(KindConfiguration, raw, fmt.Sprintf("invalid port %q", t.Port), nil)
	}

	base, err := parseURL(raw)
	if err != nil {
		return nil, err
	}

	return &Endpoint{base: base}, nil
}

// String returns the base URL.
func (e *Endpoint) String() string {
	return e.base.String()
}

// Resolve appends a page or action suffix, e.g. "heights.jsp?heightCm=10".
func (e *Endpoint) Resolve(suffix string) (string, error) {
	raw := e.base.String() + strings.TrimPrefix(suffix, "/")
	u, err := parseURL(raw)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, newError(KindConfiguration, raw, "malformed url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, newError(KindConfiguration, raw, fmt.Sprintf("unsupported scheme %q", u.Scheme), nil)
	}
	if u.Hostname() == "" {
		return nil, newError(KindConfiguration, raw, "missing host", nil)
	}
	if p := u.Port(); strings.HasSuffix(u.Host, ":") || (p != "" && !isDigits(p)) {
		return nil, newError(KindConfiguration, raw, "malformed port", nil)
	}
	return u, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
