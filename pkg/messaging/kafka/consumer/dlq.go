package consumer

import (
	"context"
	"strconv"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/producer"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// DLQ header keys.
const (
	HeaderDLQID                = "dlq.id"
	HeaderDLQOriginalTopic     = "dlq.original.topic"
	HeaderDLQOriginalPartition = "dlq.original.partition"
	HeaderDLQOriginalOffset    = "dlq.original.offset"
	HeaderDLQError             = "dlq.error"
	HeaderDLQTimestamp         = "dlq.timestamp"
)

// DLQHandler receives messages skipped after exhausted retries.
type DLQHandler interface {
	SendToDLQ(ctx context.Context, message *kafka.Message, processingErr error)
}

type dlqHandler struct {
	producer producer.Producer
	dlqTopic string
	tracer   tracing.MessageTracer
	log      *zap.Logger
}

// NewDLQHandler forwards to dlqTopic through the shared producer. Failures
// are logged; the original message is skipped either way.
func NewDLQHandler(p producer.Producer, dlqTopic string, tracer tracing.MessageTracer, log *zap.Logger) DLQHandler {
	return &dlqHandler{producer: p, dlqTopic: dlqTopic, tracer: tracer, log: log}
}

func (h *dlqHandler) SendToDLQ(ctx context.Context, message *kafka.Message, processingErr error) {
	dlqTopic := h.dlqTopic
	dlqMessage := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &dlqTopic, Partition: kafka.PartitionAny},
		Key:            message.Key,
		Value:          message.Value,
		Headers:        append([]kafka.Header(nil), message.Headers...),
	}
	tracing.SetHeader(dlqMessage, HeaderDLQID, uuid.NewString())
	tracing.SetHeader(dlqMessage, HeaderDLQOriginalTopic, topicOf(message))
	tracing.SetHeader(dlqMessage, HeaderDLQOriginalPartition, strconv.Itoa(int(message.TopicPartition.Partition)))
	tracing.SetHeader(dlqMessage, HeaderDLQOriginalOffset, strconv.FormatInt(int64(message.TopicPartition.Offset), 10))
	tracing.SetHeader(dlqMessage, HeaderDLQError, processingErr.Error())
	tracing.SetHeader(dlqMessage, HeaderDLQTimestamp, time.Now().UTC().Format(time.RFC3339))

	ctx, span := h.tracer.StartProducerSpan(ctx, dlqMessage, tracing.Header(message, tracing.HeaderEventType))
	defer span.End()

	fields := []zap.Field{
		zap.String("dlq_topic", h.dlqTopic),
		zap.ByteString("key", message.Key),
		zap.Int32("original_partition", message.TopicPartition.Partition),
		zap.Int64("original_offset", int64(message.TopicPartition.Offset)),
	}
	if err := h.producer.ProduceMessage(context.WithoutCancel(ctx), dlqMessage); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send message to DLQ")
		h.log.Error("failed to send message to DLQ", append(fields, zap.Error(err))...)
		return
	}
	span.SetStatus(codes.Ok, "message sent to DLQ")
	h.log.Info("message sent to DLQ", fields...)
}

type noopDLQHandler struct {
	log *zap.Logger
}

func newNoopDLQHandler(log *zap.Logger) DLQHandler {
	return &noopDLQHandler{log: log}
}

func (h *noopDLQHandler) SendToDLQ(_ context.Context, message *kafka.Message, _ error) {
	h.log.Debug("no DLQ configured, message dropped",
		zap.ByteString("key", message.Key),
		zap.Int32("partition", message.TopicPartition.Partition),
		zap.Int64("offset", int64(message.TopicPartition.Offset)))
}
