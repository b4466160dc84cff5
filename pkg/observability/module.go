// Package observability wires OpenTelemetry tracing and metrics. Both are off
// unless enabled in the observability section. When off, the providers are
// noops, so Kafka and Mongo instrumentation always has one to call.
package observability

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

type options struct {
	static    *Config
	noTracing bool
	noMetrics bool
}

type Option func(*options)

// WithConfig replaces the observability section of the config file.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.static = &cfg }
}

// WithoutTracing forces a noop TracerProvider.
func WithoutTracing() Option {
	return func(o *options) { o.noTracing = true }
}

// WithoutMetrics forces a noop MeterProvider. The sweep CLI runs one job and
// exits, so it never starts the periodic exporter.
func WithoutMetrics() Option {
	return func(o *options) { o.noMetrics = true }
}

// NewObservabilityModule provides Config, trace.TracerProvider and
// metric.MeterProvider.
func NewObservabilityModule(opts ...Option) fx.Option {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return fx.Module("observability",
		fx.Supply(o),
		fx.Provide(loadConfig, provideTracerProvider, provideMeterProvider),
		fx.Invoke(func(trace.TracerProvider, metric.MeterProvider) {}),
	)
}
