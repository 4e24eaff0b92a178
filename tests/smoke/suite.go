package smoke

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/converter-smoke/internal/config"
	"github.com/prperemyshlev/converter-smoke/internal/fakeconverter"
	"github.com/prperemyshlev/converter-smoke/internal/probe"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// Suite runs the smoke scenarios against TARGET_PORT when it is set, and
// against an in-process converter otherwise.
type Suite struct {
	suite.Suite
	Config   *config.Config
	Endpoint *probe.Endpoint
	Issuer   *probe.Issuer
	Logger   *zap.Logger

	server *http.Server
}

func (s *Suite) SetupSuite() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		s.T().Fatalf("Failed to load configuration: %v", err)
	}

	s.Logger = zap.NewNop()
	gin.SetMode(gin.TestMode)

	if cfg.Target.Port == "" {
		port, err := s.startConverter(cfg.Target.App)
		if err != nil {
			s.T().Fatalf("Failed to start converter: %v", err)
		}
		cfg.Target.Host = "127.0.0.1"
		cfg.Target.Port = port
	}

	endpoint, err := probe.NewEndpoint(cfg.Target.Probe())
	if err != nil {
		s.T().Fatalf("Invalid target: %v", err)
	}

	s.Config = cfg
	s.Endpoint = endpoint
	s.Issuer = probe.NewIssuer(cfg.Client.Timeout.Duration, s.Logger)
}

func (s *Suite) TearDownSuite() {
	if s.server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.T().Logf("Failed to shutdown converter: %v", err)
	}
}

func (s *Suite) startConverter(app string) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to create listener: %w", err)
	}

	s.server = &http.Server{
		Handler:           fakeconverter.NewRouter(fakeconverter.Options{App: app, Logger: s.Logger}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.Logger.Error("Converter stopped", zap.Error(err))
		}
	}()

	return fmt.Sprintf("%d", listener.Addr().(*net.TCPAddr).Port), nil
}

// request resolves path against the application and issues method on it.
func (s *Suite) request(path, method string) (*probe.Response, string) {
	url, err := s.Endpoint.Resolve(path)
	s.Require().NoError(err)

	resp, err := s.Issuer.Issue(context.Background(), method, url)
	s.Require().NoError(err, "Request to %s failed", url)

	return resp, url
}

// body drains resp, failing the test on a read error.
func (s *Suite) body(resp *probe.Response) string {
	text, err := probe.ReadBody(resp)
	s.Require().NoError(err, "Failed to read response from %s", resp.URL())
	return text
}
