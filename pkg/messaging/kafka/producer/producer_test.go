package producer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/envelope"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// mockKafkaProducer is a mock implementation of kafkaProducer interface for testing.
type mockKafkaProducer struct {
	mu          sync.Mutex
	produceFunc func(msg *kafka.Message, deliveryChan chan kafka.Event) error
	events      chan kafka.Event
	produced    []*kafka.Message
	flushed     int
	closed      int
}

func newMockKafkaProducer() *mockKafkaProducer {
	return &mockKafkaProducer{events: make(chan kafka.Event, 10)}
}

// ack acknowledges every message immediately.
func ack(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	deliveryChan <- msg
	return nil
}

func (m *mockKafkaProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	m.mu.Lock()
	m.produced = append(m.produced, msg)
	m.mu.Unlock()
	if m.produceFunc != nil {
		return m.produceFunc(msg, deliveryChan)
	}
	return ack(msg, deliveryChan)
}

func (m *mockKafkaProducer) Events() chan kafka.Event { return m.events }

func (m *mockKafkaProducer) Flush(int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushed++
	return 0
}

func (m *mockKafkaProducer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
}

func newTestProducer(kp *mockKafkaProducer, log *zap.Logger, timeout time.Duration) Producer {
	conf := config.ProducerConfig{DeliveryTimeout: timeout, FlushTimeout: time.Second}
	return New(kp, conf, log, tracing.NewMessageTracer(noop.NewTracerProvider()))
}

func mustEnvelope(t *testing.T, eventType string, payload any) envelope.Envelope {
	t.Helper()
	env, err := envelope.New(eventType, payload)
	require.NoError(t, err)
	return env
}

func TestProducer_Produce(t *testing.T) {
	t.Run("waits for acknowledgement and sets headers", func(t *testing.T) {
		kp := newMockKafkaProducer()
		p := newTestProducer(kp, zap.NewNop(), time.Second)
		defer p.Close()

		err := p.Produce(context.Background(), "storage_event", "42", mustEnvelope(t, "unit_allocated", []map[string]int{{"meal_id": 7}}))

		require.NoError(t, err)
		require.Len(t, kp.produced, 1)
		msg := kp.produced[0]
		assert.Equal(t, "storage_event", *msg.TopicPartition.Topic)
		assert.Equal(t, kafka.PartitionAny, msg.TopicPartition.Partition)
		assert.Equal(t, []byte("42"), msg.Key)
		assert.Equal(t, "unit_allocated", tracing.Header(msg, tracing.HeaderEventType))
		assert.JSONEq(t, `{"event_type":"unit_allocated","data":[{"meal_id":7}]}`, string(msg.Value))
	})

	t.Run("empty key leaves message unkeyed", func(t *testing.T) {
		kp := newMockKafkaProducer()
		p := newTestProducer(kp, zap.NewNop(), time.Second)
		defer p.Close()

		require.NoError(t, p.Produce(context.Background(), "meal_event", "", mustEnvelope(t, "meal_cancelled", map[string]int{"meal_id": 1})))

		assert.Nil(t, kp.produced[0].Key)
	})

	t.Run("returns delivery timeout when broker never acknowledges", func(t *testing.T) {
		kp := newMockKafkaProducer()
		kp.produceFunc = func(*kafka.Message, chan kafka.Event) error { return nil }
		p := newTestProducer(kp, zap.NewNop(), 20*time.Millisecond)
		defer p.Close()

		err := p.Produce(context.Background(), "meal_event", "1", mustEnvelope(t, "meal_cancelled", nil))

		assert.ErrorIs(t, err, ErrDeliveryTimeout)
		assert.Contains(t, err.Error(), "meal_event")
	})

	t.Run("returns context error on cancel", func(t *testing.T) {
		kp := newMockKafkaProducer()
		kp.produceFunc = func(*kafka.Message, chan kafka.Event) error { return nil }
		p := newTestProducer(kp, zap.NewNop(), time.Minute)
		defer p.Close()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := p.Produce(ctx, "meal_event", "1", mustEnvelope(t, "meal_cancelled", nil))

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("wraps enqueue error with topic", func(t *testing.T) {
		kp := newMockKafkaProducer()
		kp.produceFunc = func(*kafka.Message, chan kafka.Event) error {
			return kafka.NewError(kafka.ErrQueueFull, "queue full", false)
		}
		p := newTestProducer(kp, zap.NewNop(), time.Second)
		defer p.Close()

		err := p.Produce(context.Background(), "meal_event", "1", mustEnvelope(t, "meal_cancelled", nil))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send message to topic meal_event")
		var kerr kafka.Error
		require.True(t, errors.As(err, &kerr))
		assert.Equal(t, kafka.ErrQueueFull, kerr.Code())
	})

	t.Run("returns broker delivery error", func(t *testing.T) {
		kp := newMockKafkaProducer()
		kp.produceFunc = func(msg *kafka.Message, deliveryChan chan kafka.Event) error {
			failed := *msg
			failed.TopicPartition.Error = kafka.NewError(kafka.ErrMsgTimedOut, "timed out", false)
			deliveryChan <- &failed
			return nil
		}
		p := newTestProducer(kp, zap.NewNop(), time.Second)
		defer p.Close()

		err := p.Produce(context.Background(), "meal_event", "1", mustEnvelope(t, "meal_cancelled", nil))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "delivery to topic meal_event failed")
	})

	t.Run("rejects envelope without event type", func(t *testing.T) {
		kp := newMockKafkaProducer()
		p := newTestProducer(kp, zap.NewNop(), time.Second)
		defer p.Close()

		err := p.Produce(context.Background(), "meal_event", "1", envelope.Envelope{})

		assert.ErrorIs(t, err, envelope.ErrMalformed)
		assert.Empty(t, kp.produced)
	})
}

func TestProducer_Close(t *testing.T) {
	kp := newMockKafkaProducer()
	p := newTestProducer(kp, zap.NewNop(), time.Second)

	p.Close()
	p.Close()

	assert.Equal(t, 1, kp.flushed)
	assert.Equal(t, 1, kp.closed)
	err := p.Produce(context.Background(), "meal_event", "1", mustEnvelope(t, "meal_cancelled", nil))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestProducer_DrainLogsProducerErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	kp := newMockKafkaProducer()
	p := newTestProducer(kp, zap.New(core), time.Second)

	kp.events <- kafka.NewError(kafka.ErrAllBrokersDown, "all brokers down", false)

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("kafka producer error").Len() == 1
	}, time.Second, 5*time.Millisecond)
	p.Close()
}

type recordingProducer struct {
	err   error
	calls []envelope.Envelope
}

func (r *recordingProducer) Produce(_ context.Context, _, _ string, env envelope.Envelope) error {
	r.calls = append(r.calls, env)
	return r.err
}

func (r *recordingProducer) ProduceMessage(context.Context, *kafka.Message) error { return r.err }

func (r *recordingProducer) Close() {}

func TestPublisher(t *testing.T) {
	t.Run("publishes typed payload", func(t *testing.T) {
		rp := &recordingProducer{}
		pub := NewPublisher(rp, zap.NewNop())

		err := pub.Publish(context.Background(), "storage_event", "42", "storage_units_expired", map[string]any{"group_id": 42})

		require.NoError(t, err)
		require.Len(t, rp.calls, 1)
		assert.Equal(t, "storage_units_expired", rp.calls[0].EventType)
		assert.JSONEq(t, `{"group_id":42}`, string(rp.calls[0].Data))
	})

	t.Run("best effort logs and swallows failure", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		rp := &recordingProducer{err: ErrDeliveryTimeout}
		pub := NewPublisher(rp, zap.New(core))

		pub.PublishBestEffort(context.Background(), "storage_event", "42", "storage_units_expired", nil)

		entries := logs.FilterMessage("failed to publish event").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "storage_event", entries[0].ContextMap()["topic"])
		assert.Equal(t, "storage_units_expired", entries[0].ContextMap()["event_type"])
	})

	t.Run("returns error to caller", func(t *testing.T) {
		pub := NewPublisher(&recordingProducer{err: ErrDeliveryTimeout}, zap.NewNop())

		err := pub.Publish(context.Background(), "t", "", "e", nil)

		assert.ErrorIs(t, err, ErrDeliveryTimeout)
	})
}
