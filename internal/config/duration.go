package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration extends time.Duration with a "d" (days) suffix. Negative values
// are rejected.
type Duration struct {
	time.Duration
}

// EnvDecode implements envconfig.Decoder
func (d *Duration) EnvDecode(ctx context.Context, v string) error {
	v = strings.TrimSpace(v)
	if v == "" || v == "0" {
		d.Duration = 0
		return nil
	}

	var parsed time.Duration
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return fmt.Errorf("invalid days value %q: %w", v, err)
		}
		parsed = time.Duration(n) * 24 * time.Hour
	} else {
		var err error
		parsed, err = time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
	}

	if parsed < 0 {
		return fmt.Errorf("duration %q must not be negative", v)
	}
	d.Duration = parsed
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	return d.EnvDecode(context.Background(), string(text))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d Duration) String() string {
	return d.Duration.String()
}
