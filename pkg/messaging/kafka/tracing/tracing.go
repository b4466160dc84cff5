// Package tracing propagates OpenTelemetry context through Kafka headers.
package tracing

import (
	"context"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka"

// HeaderEventType carries the envelope event_type so tooling can filter
// without decoding the payload.
const HeaderEventType = "event-type"

// MessageTracer starts spans for produced and consumed messages.
type MessageTracer interface {
	// StartConsumerSpan continues the producer's trace (if any) for one message.
	StartConsumerSpan(ctx context.Context, message *kafka.Message, eventType string) (context.Context, trace.Span)
	// StartProducerSpan starts a span and injects its context into message headers.
	StartProducerSpan(ctx context.Context, message *kafka.Message, eventType string) (context.Context, trace.Span)
}

type messageTracer struct {
	tracer trace.Tracer
}

// NewMessageTracer builds a tracer from tp. A nil tp uses the global provider.
func NewMessageTracer(tp trace.TracerProvider) MessageTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &messageTracer{tracer: tp.Tracer(instrumentationName)}
}

func (t *messageTracer) StartConsumerSpan(ctx context.Context, message *kafka.Message, eventType string) (context.Context, trace.Span) {
	ctx = Extract(ctx, message)
	return t.tracer.Start(ctx, topicOf(message)+" process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(append(messageAttributes(message),
			attribute.String("messaging.operation.type", "process"),
			attribute.String("messaging.event_type", eventType),
		)...),
	)
}

func (t *messageTracer) StartProducerSpan(ctx context.Context, message *kafka.Message, eventType string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, topicOf(message)+" publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", topicOf(message)),
			attribute.String("messaging.operation.type", "publish"),
			attribute.String("messaging.event_type", eventType),
		),
	)
	Inject(ctx, message)
	return ctx, span
}

// Extract returns ctx carrying the remote span context found in message headers.
func Extract(ctx context.Context, message *kafka.Message) context.Context {
	if len(message.Headers) == 0 {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, &headerCarrier{message: message})
}

// Inject writes the span context of ctx into message headers, replacing
// existing values for the same keys.
func Inject(ctx context.Context, message *kafka.Message) {
	otel.GetTextMapPropagator().Inject(ctx, &headerCarrier{message: message})
}

// Header returns the value of the first header named key.
func Header(message *kafka.Message, key string) string {
	for _, h := range message.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// SetHeader replaces or appends a header.
func SetHeader(message *kafka.Message, key, value string) {
	for i, h := range message.Headers {
		if h.Key == key {
			message.Headers[i].Value = []byte(value)
			return
		}
	}
	message.Headers = append(message.Headers, kafka.Header{Key: key, Value: []byte(value)})
}

type headerCarrier struct {
	message *kafka.Message
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)

func (c *headerCarrier) Get(key string) string { return Header(c.message, key) }

func (c *headerCarrier) Set(key, value string) { SetHeader(c.message, key, value) }

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.message.Headers))
	for _, h := range c.message.Headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func topicOf(message *kafka.Message) string {
	if message.TopicPartition.Topic == nil {
		return ""
	}
	return *message.TopicPartition.Topic
}

func messageAttributes(message *kafka.Message) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination.name", topicOf(message)),
		attribute.Int("messaging.destination.partition.id", int(message.TopicPartition.Partition)),
		attribute.Int64("messaging.kafka.offset", int64(message.TopicPartition.Offset)),
		attribute.String("messaging.kafka.message.key", string(message.Key)),
	}
}
