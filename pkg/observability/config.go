package observability

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultMetricsInterval = 10 * time.Second
	defaultSampleRatio     = 1.0
	shutdownTimeout        = 5 * time.Second
	runtimeStatsInterval   = time.Second

	tracingComponent = "tracing"
	metricsComponent = "metrics"
)

type Config struct {
	// OtelCollectorEndpoint is the OTLP gRPC host:port. Tracing without it
	// samples spans locally; metrics require it.
	OtelCollectorEndpoint string        `mapstructure:"otel-collector-endpoint"`
	Tracing               TracingConfig `mapstructure:"tracing"`
	Metrics               MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	SampleRatio float64 `mapstructure:"sample-ratio"`
}

type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

func loadConfig(o *options, v *viper.Viper, log *zap.Logger) (Config, error) {
	var cfg Config
	switch {
	case o.static != nil:
		cfg = *o.static
	case v.IsSet("observability"):
		if err := v.UnmarshalKey("observability", &cfg); err != nil {
			return Config{}, fmt.Errorf("decode observability config: %w", err)
		}
	}

	if cfg.Metrics.Interval == 0 {
		cfg.Metrics.Interval = defaultMetricsInterval
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = defaultSampleRatio
	}
	cfg.Tracing.Enabled = cfg.Tracing.Enabled && !o.noTracing
	cfg.Metrics.Enabled = cfg.Metrics.Enabled && !o.noMetrics

	if r := cfg.Tracing.SampleRatio; r < 0 || r > 1 {
		return Config{}, fmt.Errorf("tracing sample-ratio must be within [0, 1], got %v", r)
	}
	if cfg.Metrics.Enabled && cfg.OtelCollectorEndpoint == "" {
		return Config{}, fmt.Errorf("metrics enabled without otel-collector-endpoint")
	}

	log.Info("observability config",
		zap.Bool("tracing", cfg.Tracing.Enabled),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.String("collector", cfg.OtelCollectorEndpoint),
	)
	return cfg, nil
}
