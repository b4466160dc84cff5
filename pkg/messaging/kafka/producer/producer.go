package producer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/logger"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/envelope"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/tracing"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var (
	// ErrDeliveryTimeout is returned when the broker did not acknowledge a
	// message within the configured delivery timeout.
	ErrDeliveryTimeout = errors.New("kafka delivery timeout")
	// ErrClosed is returned by Produce after Close.
	ErrClosed = errors.New("kafka producer is closed")
)

// Producer publishes envelopes and blocks until the broker acknowledges them.
type Producer interface {
	// Produce encodes env and publishes it to topic keyed by key.
	Produce(ctx context.Context, topic, key string, env envelope.Envelope) error
	// ProduceMessage publishes a prepared message, used for DLQ forwarding.
	ProduceMessage(ctx context.Context, message *kafka.Message) error
	Close()
}

// kafkaProducer is the subset of *kafka.Producer used here.
type kafkaProducer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Events() chan kafka.Event
	Flush(timeoutMs int) int
	Close()
}

type producer struct {
	kp              kafkaProducer
	log             *zap.Logger
	throttler       *logger.LogThrottler
	tracer          tracing.MessageTracer
	deliveryTimeout time.Duration
	flushTimeout    time.Duration

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
	drained   chan struct{}
}

// New wraps kp. It starts a goroutine draining producer-level events until Close.
func New(kp kafkaProducer, conf config.ProducerConfig, log *zap.Logger, tracer tracing.MessageTracer) Producer {
	p := &producer{
		kp:              kp,
		log:             log,
		throttler:       logger.NewLogThrottler(log, 0),
		tracer:          tracer,
		deliveryTimeout: conf.DeliveryTimeout,
		flushTimeout:    conf.FlushTimeout,
		done:            make(chan struct{}),
		drained:         make(chan struct{}),
	}
	go p.drainEvents()
	return p
}

func (p *producer) Produce(ctx context.Context, topic, key string, env envelope.Envelope) error {
	value, err := envelope.Encode(env)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", env.EventType, err)
	}

	message := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          value,
	}
	if key != "" {
		message.Key = []byte(key)
	}
	tracing.SetHeader(message, tracing.HeaderEventType, env.EventType)

	ctx, span := p.tracer.StartProducerSpan(ctx, message, env.EventType)
	defer span.End()

	if err := p.ProduceMessage(ctx, message); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (p *producer) ProduceMessage(ctx context.Context, message *kafka.Message) error {
	if p.closed.Load() {
		return ErrClosed
	}
	topic := ""
	if message.TopicPartition.Topic != nil {
		topic = *message.TopicPartition.Topic
	}

	deliveryChan := make(chan kafka.Event, 1)
	if err := p.kp.Produce(message, deliveryChan); err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}

	timer := time.NewTimer(p.deliveryTimeout)
	defer timer.Stop()

	select {
	case e := <-deliveryChan:
		return deliveryResult(topic, e)
	case <-timer.C:
		return fmt.Errorf("%w: topic %s, waited %v", ErrDeliveryTimeout, topic, p.deliveryTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func deliveryResult(topic string, e kafka.Event) error {
	switch ev := e.(type) {
	case *kafka.Message:
		if ev.TopicPartition.Error != nil {
			return fmt.Errorf("delivery to topic %s failed: %w", topic, ev.TopicPartition.Error)
		}
		return nil
	case kafka.Error:
		return fmt.Errorf("delivery to topic %s failed: %w", topic, ev)
	default:
		return fmt.Errorf("unexpected delivery event for topic %s: %v", topic, e)
	}
}

// drainEvents logs events not bound to a delivery channel.
func (p *producer) drainEvents() {
	defer close(p.drained)
	events := p.kp.Events()
	for {
		select {
		case <-p.done:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			switch ev := e.(type) {
			case kafka.Error:
				p.throttler.Error("producer-"+ev.Code().String(), "kafka producer error",
					zap.Error(ev), zap.Bool("fatal", ev.IsFatal()))
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					p.throttler.Warn("producer-delivery", "untracked delivery failed",
						zap.String("topic_partition", ev.TopicPartition.String()),
						zap.Error(ev.TopicPartition.Error))
				}
			default:
				p.log.Debug("producer event", zap.String("event", e.String()))
			}
		}
	}
}

func (p *producer) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		if remaining := p.kp.Flush(int(p.flushTimeout.Milliseconds())); remaining > 0 {
			p.log.Warn("producer closed with undelivered messages", zap.Int("remaining", remaining))
		}
		close(p.done)
		<-p.drained
		p.kp.Close()
		p.log.Info("producer closed")
	})
}
