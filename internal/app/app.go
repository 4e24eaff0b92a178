package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/converter-smoke/internal/config"
	"github.com/prperemyshlev/converter-smoke/internal/handler"
	"github.com/prperemyshlev/converter-smoke/internal/probe"
	"github.com/prperemyshlev/converter-smoke/internal/scenario"
	"github.com/prperemyshlev/converter-smoke/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// ErrSmokeFailed is returned by a single run when any scenario failed.
var ErrSmokeFailed = errors.New("smoke run failed")

type App struct {
	infra     Infrastructure
	config    *config.Config
	runner    *scenario.Runner
	scenarios []scenario.Scenario
	health    *HealthChecker
	router    *gin.Engine
	server    *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	issuer := probe.NewIssuer(cfg.Client.Timeout.Duration, infra.Logger())
	runner := scenario.NewRunner(
		cfg.Target.Probe(),
		issuer,
		infra.Logger(),
		metricsRecorder{metrics: infra.ScenarioMetrics()},
	)
	healthChecker := NewHealthChecker()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(infra.Logger()))

	setupRoutes(router, healthChecker, infra.MetricsHandler())

	a := &App{
		infra:     infra,
		config:    cfg,
		runner:    runner,
		scenarios: scenario.Defaults(),
		health:    healthChecker,
		router:    router,
	}

	if cfg.Metrics.Addr != "" {
		a.server = &http.Server{
			Addr:         cfg.Metrics.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Metrics.ReadTimeout.Duration,
			WriteTimeout: cfg.Metrics.WriteTimeout.Duration,
		}
	}

	return a
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(router *gin.Engine, healthChecker *HealthChecker, metricsHandler http.Handler) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)
}

// RunOnce executes every scenario once and publishes the report to /health.
func (a *App) RunOnce(ctx context.Context) scenario.Report {
	report := a.runner.RunAll(ctx, a.scenarios)
	a.health.Update(report)
	return report
}

// Run executes the smoke scenarios once, or on every SMOKE_INTERVAL tick
// until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	interval := a.config.Smoke.Interval.Duration
	if interval == 0 {
		report := a.RunOnce(ctx)

		var runErr error
		if !report.Passed() {
			runErr = fmt.Errorf("%w: %d of %d scenarios failed", ErrSmokeFailed, len(report.Failures()), len(report.Results))
		}
		return errors.Join(runErr, a.Shutdown())
	}

	errChan := make(chan error, 1)
	if a.server != nil {
		go func() {
			a.infra.Logger().Info("Metrics server starting", zap.String("addr", a.server.Addr))

			if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.infra.Logger().Error("Metrics server error", zap.Error(err))
				errChan <- err
			}
		}()
	}

	a.infra.Logger().Info("Smoke monitor starting", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var serverErr error
	a.RunOnce(ctx)
loop:
	for {
		select {
		case <-ticker.C:
			a.RunOnce(ctx)
		case err := <-errChan:
			serverErr = err
			break loop
		case <-ctx.Done():
			a.infra.Logger().Info("Smoke monitor stopped by context")
			break loop
		}
	}

	if err := a.Shutdown(); err != nil {
		return errors.Join(serverErr, err)
	}
	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var serverErr error
	if a.server != nil {
		serverErr = a.server.Shutdown(ctx)
	}

	err := errors.Join(serverErr, a.infra.Shutdown(ctx))
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	return nil
}

type metricsRecorder struct {
	metrics *observability.ScenarioMetrics
}

func (r metricsRecorder) Record(ctx context.Context, res scenario.Result) {
	if r.metrics == nil {
		return
	}
	r.metrics.Observe(ctx, res.Scenario, res.Outcome(), res.Duration)
}
