package scenario

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/converter-smoke/internal/probe"
	"go.uber.org/zap"
)

// Recorder receives every scenario result, e.g. to export metrics.
type Recorder interface {
	Record(ctx context.Context, res Result)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Result) {}

// Runner executes scenarios against one target.
type Runner struct {
	target   probe.Target
	endpoint *probe.Endpoint
	// endpointErr is reported by every scenario when the target is invalid.
	endpointErr error

	issuer   *probe.Issuer
	logger   *zap.Logger
	recorder Recorder
}

// NewRunner creates a runner for target. An invalid target does not fail
// here: every scenario run reports it as a configuration failure.
func NewRunner(target probe.Target, issuer *probe.Issuer, logger *zap.Logger, recorder Recorder) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if issuer == nil {
		issuer = probe.NewIssuer(0, logger)
	}

	endpoint, err := probe.NewEndpoint(target)

	return &Runner{
		target:      target,
		endpoint:    endpoint,
		endpointErr: err,
		issuer:      issuer,
		logger:      logger,
		recorder:    recorder,
	}
}

// Run executes a single scenario. Any failing step ends the scenario.
func (r *Runner) Run(ctx context.Context, sc Scenario) Result {
	return r.run(ctx, sc, r.logger)
}

func (r *Runner) run(ctx context.Context, sc Scenario, logger *zap.Logger) Result {
	start := time.Now()
	res := Result{
		Scenario: sc.Name,
		Method:   sc.Method,
	}

	res.Err = r.execute(ctx, sc, &res)
	res.Duration = time.Since(start)

	fields := []zap.Field{
		zap.String("scenario", res.Scenario),
		zap.String("method", res.Method),
		zap.String("url", res.URL),
		zap.Int("status", res.StatusCode),
		zap.Duration("latency", res.Duration),
	}
	if res.Passed() {
		logger.Info("Scenario passed", fields...)
	} else {
		logger.Warn("Scenario failed", append(fields, zap.String("kind", res.Kind().String()), zap.Error(res.Err))...)
	}

	r.recorder.Record(ctx, res)
	return res
}

func (r *Runner) execute(ctx context.Context, sc Scenario, res *Result) error {
	if r.endpointErr != nil {
		res.URL = r.target.BaseURL() + sc.Path
		return r.endpointErr
	}

	url, err := r.endpoint.Resolve(sc.Path)
	if err != nil {
		res.URL = r.endpoint.String() + sc.Path
		return err
	}
	res.URL = url

	resp, err := r.issuer.Issue(ctx, sc.Method, url)
	if err != nil {
		return err
	}
	defer resp.Close()
	res.StatusCode = resp.StatusCode()

	if sc.Status != 0 {
		if err := probe.ExpectStatus(resp, sc.Status); err != nil {
			return err
		}
	}

	body, err := probe.ReadBody(resp)
	if err != nil {
		return err
	}

	if sc.Contains != "" {
		if err := probe.ExpectContains(url, body, sc.Contains); err != nil {
			return err
		}
	}

	for _, sel := range sc.Selectors {
		if err := probe.ExpectSelector(url, body, sel); err != nil {
			return err
		}
	}

	return nil
}

// RunAll runs every scenario in order. A failing scenario does not stop the
// ones after it.
func (r *Runner) RunAll(ctx context.Context, scenarios []Scenario) Report {
	report := Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Results: make([]Result, 0, len(scenarios)),
	}

	logger := r.logger.With(zap.String("run_id", report.RunID))
	logger.Info("Smoke run starting",
		zap.String("target", r.target.BaseURL()),
		zap.Int("scenarios", len(scenarios)),
	)

	for _, sc := range scenarios {
		report.Results = append(report.Results, r.run(ctx, sc, logger))
	}

	failures := report.Failures()
	if len(failures) > 0 {
		logger.Error("Smoke run failed",
			zap.Int("failed", len(failures)),
			zap.Int("total", len(report.Results)),
		)
	} else {
		logger.Info("Smoke run passed", zap.Int("total", len(report.Results)))
	}

	return report
}
