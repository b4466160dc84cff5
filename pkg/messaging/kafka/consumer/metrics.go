package consumer

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/consumer"

// Metrics counts loop outcomes per consumer.
type Metrics struct {
	processed metric.Int64Counter
	skipped   metric.Int64Counter
	failed    metric.Int64Counter
	restarts  metric.Int64Counter
}

// NewMetrics registers the counters on mp. A nil mp records nothing.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter(meterName)

	processed, err := meter.Int64Counter("consumer.messages.processed",
		metric.WithDescription("Messages handled successfully"))
	if err != nil {
		return nil, err
	}
	skipped, err := meter.Int64Counter("consumer.messages.skipped",
		metric.WithDescription("Messages skipped as undecodable, unrouted or after exhausted retries"))
	if err != nil {
		return nil, err
	}
	failed, err := meter.Int64Counter("consumer.messages.failed",
		metric.WithDescription("Handler failures"))
	if err != nil {
		return nil, err
	}
	restarts, err := meter.Int64Counter("consumer.supervisor.restarts",
		metric.WithDescription("Dispatch loop restarts"))
	if err != nil {
		return nil, err
	}
	return &Metrics{processed: processed, skipped: skipped, failed: failed, restarts: restarts}, nil
}

func noopMetrics() *Metrics {
	m, _ := NewMetrics(nil)
	return m
}

func attrs(consumer, eventType string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("consumer", consumer),
		attribute.String("event_type", eventType),
	)
}

func (m *Metrics) recordProcessed(ctx context.Context, consumer, eventType string) {
	m.processed.Add(ctx, 1, attrs(consumer, eventType))
}

func (m *Metrics) recordSkipped(ctx context.Context, consumer, eventType, reason string) {
	m.skipped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("consumer", consumer),
		attribute.String("event_type", eventType),
		attribute.String("reason", reason),
	))
}

func (m *Metrics) recordFailed(ctx context.Context, consumer, eventType string) {
	m.failed.Add(ctx, 1, attrs(consumer, eventType))
}

func (m *Metrics) recordRestart(ctx context.Context, consumer string) {
	m.restarts.Add(ctx, 1, metric.WithAttributes(attribute.String("consumer", consumer)))
}
