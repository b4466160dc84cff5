package observability

import (
	"context"
	"fmt"

	appconfig "github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/health"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type providerDeps struct {
	fx.In
	Lc        fx.Lifecycle
	Log       *zap.Logger
	Cfg       Config
	App       appconfig.AppConfig
	Readiness health.ComponentManager
}

func serviceResource(ctx context.Context, app appconfig.AppConfig) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(app.ServiceName),
			semconv.ServiceVersionKey.String(app.ServiceVersion),
			semconv.DeploymentEnvironmentNameKey.String(app.Environment),
		),
	)
}

func provideTracerProvider(d providerDeps) (trace.TracerProvider, error) {
	if !d.Cfg.Tracing.Enabled {
		return tracenoop.NewTracerProvider(), nil
	}
	ctx := context.Background()
	res, err := serviceResource(ctx, d.App)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(d.Cfg.Tracing.SampleRatio))),
	}
	if d.Cfg.OtelCollectorEndpoint != "" {
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(d.Cfg.OtelCollectorEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("otlp trace exporter: %w", err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)

	// otelmongo reads the global provider when the client is built, so it is
	// installed here rather than in a start hook.
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	markReady := d.Readiness.AddComponent(tracingComponent)
	d.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return tp.Shutdown(ctx)
		},
	})
	return tp, nil
}

func provideMeterProvider(d providerDeps) (metric.MeterProvider, error) {
	if !d.Cfg.Metrics.Enabled {
		return metricnoop.NewMeterProvider(), nil
	}
	ctx := context.Background()
	res, err := serviceResource(ctx, d.App)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}
	exp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(d.Cfg.OtelCollectorEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(d.Cfg.Metrics.Interval))),
	)

	otel.SetMeterProvider(mp)

	markReady := d.Readiness.AddComponent(metricsComponent)
	d.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := otelruntime.Start(
				otelruntime.WithMeterProvider(mp),
				otelruntime.WithMinimumReadMemStatsInterval(runtimeStatsInterval),
			); err != nil {
				d.Log.Warn("runtime metrics not started", zap.Error(err))
			}
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return mp.Shutdown(ctx)
		},
	})
	return mp, nil
}
