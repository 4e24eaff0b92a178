package config

import (
	"context"
	"fmt"

	"github.com/prperemyshlev/converter-smoke/internal/probe"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Target  TargetConfig  `env:",prefix=TARGET_"`
	Client  ClientConfig  `env:",prefix=CLIENT_"`
	Metrics MetricsConfig `env:",prefix=METRICS_"`
	Smoke   SmokeConfig   `env:",prefix=SMOKE_"`
	Env     string        `env:"ENV,default=development"`
}

// TargetConfig locates the application under test. PORT has no default: a
// missing port is reported by every scenario, not at load time.
type TargetConfig struct {
	Scheme string `env:"SCHEME,default=http"`
	Host   string `env:"HOST,default=localhost"`
	Port   string `env:"PORT"`
	App    string `env:"APP,default=converter"`
}

type ClientConfig struct {
	// Timeout bounds each request; zero means no timeout.
	Timeout Duration `env:"TIMEOUT,default=0s"`
}

type MetricsConfig struct {
	// Addr enables the /metrics and /health server when set.
	Addr         string   `env:"ADDR"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type SmokeConfig struct {
	// Interval repeats the smoke run; zero runs it once.
	Interval Duration `env:"INTERVAL,default=0s"`
}

// Probe returns the target as a probe.Target
func (t TargetConfig) Probe() probe.Target {
	return probe.Target{
		Scheme: t.Scheme,
		Host:   t.Host,
		Port:   t.Port,
		App:    t.App,
	}
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var config Config

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &config,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if config.Metrics.Addr != "" && config.Smoke.Interval.Duration == 0 {
		return nil, fmt.Errorf("METRICS_ADDR requires SMOKE_INTERVAL to be set")
	}

	return &config, nil
}
