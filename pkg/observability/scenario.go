package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

const (
	scenarioRunsMetric     = "smoke.scenario.runs"
	scenarioDurationMetric = "smoke.scenario.duration"
)

// ScenarioMetrics counts smoke scenario runs by outcome and records their
// latency.
type ScenarioMetrics struct {
	runs     otelmetric.Int64Counter
	duration otelmetric.Float64Histogram
}

// NewScenarioMetrics registers the scenario instruments on meter.
func NewScenarioMetrics(meter otelmetric.Meter) (*ScenarioMetrics, error) {
	runs, err := meter.Int64Counter(scenarioRunsMetric,
		otelmetric.WithDescription("Smoke scenario runs by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", scenarioRunsMetric, err)
	}

	duration, err := meter.Float64Histogram(scenarioDurationMetric,
		otelmetric.WithDescription("Smoke scenario latency"),
		otelmetric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s histogram: %w", scenarioDurationMetric, err)
	}

	return &ScenarioMetrics{runs: runs, duration: duration}, nil
}

// Observe records one scenario run. outcome is "pass" or the failure kind.
func (m *ScenarioMetrics) Observe(ctx context.Context, scenario, outcome string, d time.Duration) {
	m.runs.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("scenario", scenario),
		attribute.String("outcome", outcome),
	))
	m.duration.Record(ctx, d.Seconds(), otelmetric.WithAttributes(
		attribute.String("scenario", scenario),
	))
}
