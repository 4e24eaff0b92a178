package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var supportedMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodPost:    {},
	http.MethodHead:    {},
	http.MethodOptions: {},
	http.MethodPut:     {},
	http.MethodDelete:  {},
	http.MethodTrace:   {},
}

// Issuer opens HTTP requests against the application under test.
type Issuer struct {
	client *resty.Client
}

// NewIssuer creates an issuer. A zero timeout leaves requests unbounded,
// only the caller's context can stop them.
func NewIssuer(timeout time.Duration, logger *zap.Logger) *Issuer {
	return newIssuer(resty.New(), timeout, logger)
}

// NewIssuerWithClient creates an issuer on top of an existing http.Client.
func NewIssuerWithClient(hc *http.Client, logger *zap.Logger) *Issuer {
	return newIssuer(resty.NewWithClient(hc), 0, logger)
}

func newIssuer(c *resty.Client, timeout time.Duration, logger *zap.Logger) *Issuer {
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c.SetLogger(logger.Named("resty").Sugar())
	return &Issuer{client: c}
}

// Issue sends a request with no body and returns the response without
// reading its body. Non-2xx statuses are not errors.
func (i *Issuer) Issue(ctx context.Context, method, rawURL string) (*Response, error) {
	u, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}
	target := u.String()

	method = strings.ToUpper(strings.TrimSpace(method))
	if _, ok := supportedMethods[method]; !ok {
		return nil, newError(KindProtocol, target, fmt.Sprintf("unsupported method %q", method), nil)
	}

	resp, err := i.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Execute(method, target)
	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			_ = resp.RawBody().Close()
		}
		return nil, newError(KindConnection, target, "request failed", err)
	}

	return NewResponse(target, resp.StatusCode(), resp.Header(), resp.RawBody()), nil
}
