package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prperemyshlev/converter-smoke/internal/config"
	"github.com/prperemyshlev/converter-smoke/pkg/observability"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const serviceName = "converter-smoke"

type Infrastructure interface {
	Logger() *zap.Logger
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider
	ScenarioMetrics() *observability.ScenarioMetrics

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	logger          *zap.Logger
	metricsHandler  http.Handler
	meterProvider   *metric.MeterProvider
	scenarioMetrics *observability.ScenarioMetrics
}

var _ Infrastructure = &infrastructure{}

func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	meterProvider, metricsHandler, err := observability.InitTelemetry(serviceName)
	if err != nil {
		_ = i.logger.Sync()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.meterProvider = meterProvider
	i.metricsHandler = metricsHandler

	scenarioMetrics, err := observability.NewScenarioMetrics(meterProvider.Meter(serviceName))
	if err != nil {
		_ = meterProvider.Shutdown(ctx)
		_ = i.logger.Sync()
		return nil, fmt.Errorf("failed to initialize scenario metrics: %w", err)
	}
	i.scenarioMetrics = scenarioMetrics

	return i, nil
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *infrastructure) ScenarioMetrics() *observability.ScenarioMetrics {
	return i.scenarioMetrics
}

// Shutdown flushes telemetry, then the logger.
func (i *infrastructure) Shutdown(ctx context.Context) error {
	return observability.Shutdown(ctx, i.meterProvider, i.logger)
}
