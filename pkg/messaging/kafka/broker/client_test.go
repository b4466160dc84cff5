package broker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/envelope"
	kafkaconfig "github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/producer"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type fakeAdmin struct {
	mu      sync.Mutex
	brokers int
	err     error
	calls   int
	closed  int
}

func (f *fakeAdmin) GetMetadata(*string, bool, int) (*kafka.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	meta := &kafka.Metadata{}
	for i := 0; i < f.brokers; i++ {
		meta.Brokers = append(meta.Brokers, kafka.BrokerMetadata{ID: int32(i + 1)})
	}
	return meta, nil
}

func (f *fakeAdmin) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
}

type fakeProducer struct {
	closed int
}

func (f *fakeProducer) Produce(context.Context, string, string, envelope.Envelope) error { return nil }
func (f *fakeProducer) ProduceMessage(context.Context, *kafka.Message) error            { return nil }
func (f *fakeProducer) Close()                                                         { f.closed++ }

type fakeConsumer struct {
	closed int
}

func (f *fakeConsumer) ReadMessage(time.Duration) (*kafka.Message, error)            { return nil, nil }
func (f *fakeConsumer) StoreMessage(*kafka.Message) ([]kafka.TopicPartition, error) { return nil, nil }
func (f *fakeConsumer) Commit() ([]kafka.TopicPartition, error)                     { return nil, nil }
func (f *fakeConsumer) GetMetadata(*string, bool, int) (*kafka.Metadata, error)     { return nil, nil }
func (f *fakeConsumer) Close() error                                                { f.closed++; return nil }

type harness struct {
	client    *Client
	admin     *fakeAdmin
	producers []*fakeProducer
	consumers []*fakeConsumer
	maps      []*kafka.ConfigMap
	topics    []string
}

func newHarness(t *testing.T, conf kafkaconfig.Config) *harness {
	t.Helper()
	h := &harness{admin: &fakeAdmin{brokers: 1}}
	h.client = New(conf, zap.NewNop(), tracing.NewMessageTracer(noop.NewTracerProvider()))
	h.client.newAdmin = func(*kafka.ConfigMap) (adminClient, error) { return h.admin, nil }
	h.client.newProducer = func(cm *kafka.ConfigMap) (producer.Producer, error) {
		p := &fakeProducer{}
		h.producers = append(h.producers, p)
		h.maps = append(h.maps, cm)
		return p, nil
	}
	h.client.newConsumer = func(cm *kafka.ConfigMap, topic string, _ kafka.RebalanceCb) (Consumer, error) {
		c := &fakeConsumer{}
		h.consumers = append(h.consumers, c)
		h.maps = append(h.maps, cm)
		h.topics = append(h.topics, topic)
		return c, nil
	}
	return h
}

func testConfig() kafkaconfig.Config {
	return kafkaconfig.Config{
		Brokers:  "localhost:9092",
		ClientID: "meal-service",
		ProducerConfig: kafkaconfig.ProducerConfig{
			DeliveryTimeout:         10 * time.Second,
			Acks:                    "all",
			ReadinessTimeoutSeconds: 1,
			FailOnBrokerError:       true,
		},
	}
}

func TestClient_BeforeSetup(t *testing.T) {
	h := newHarness(t, testConfig())

	_, err := h.client.Producer()
	assert.ErrorIs(t, err, ErrNotSetUp)

	_, err = h.client.NewConsumer("meal_event", "g")
	assert.ErrorIs(t, err, ErrNotSetUp)
	assert.Contains(t, ErrNotSetUp.Error(), "call Setup")
}

func TestClient_Setup(t *testing.T) {
	t.Run("runs once", func(t *testing.T) {
		h := newHarness(t, testConfig())

		require.NoError(t, h.client.Setup(context.Background()))
		require.NoError(t, h.client.Setup(context.Background()))

		assert.Equal(t, 1, h.admin.calls)
	})

	t.Run("rejects missing brokers", func(t *testing.T) {
		conf := testConfig()
		conf.Brokers = " "
		h := newHarness(t, conf)

		err := h.client.Setup(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no bootstrap brokers")
		_, err = h.client.Producer()
		assert.ErrorIs(t, err, ErrNotSetUp)
	})

	t.Run("fails when brokers unreachable and fail-on-broker-error", func(t *testing.T) {
		h := newHarness(t, testConfig())
		h.admin.err = errors.New("connection refused")

		err := h.client.Setup(context.Background())

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		h.client.Close()
		assert.Equal(t, 1, h.admin.closed)
	})

	t.Run("continues when brokers unreachable without fail-on-broker-error", func(t *testing.T) {
		conf := testConfig()
		conf.ProducerConfig.FailOnBrokerError = false
		h := newHarness(t, conf)
		h.admin.err = errors.New("connection refused")

		require.NoError(t, h.client.Setup(context.Background()))

		_, err := h.client.Producer()
		assert.NoError(t, err)
	})

	t.Run("admin client creation error", func(t *testing.T) {
		h := newHarness(t, testConfig())
		h.client.newAdmin = func(*kafka.ConfigMap) (adminClient, error) { return nil, errors.New("bad config") }

		err := h.client.Setup(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create kafka admin client")
		assert.NotPanics(t, h.client.Close)
	})
}

func TestClient_Producer(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.client.Setup(context.Background()))

	first, err := h.client.Producer()
	require.NoError(t, err)
	second, err := h.client.Producer()
	require.NoError(t, err)

	assert.Same(t, first, second)
	require.Len(t, h.producers, 1)
	cm := h.maps[0]
	acks, _ := cm.Get("acks", nil)
	idempotence, _ := cm.Get("enable.idempotence", nil)
	clientID, _ := cm.Get("client.id", nil)
	assert.Equal(t, "all", acks)
	assert.Equal(t, true, idempotence)
	assert.Equal(t, "meal-service", clientID)
}

func TestClient_NewConsumer(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.client.Setup(context.Background()))

	a, err := h.client.NewConsumer("storage_event", "meal-service.storage-events", WithAutoOffsetReset("latest"))
	require.NoError(t, err)
	b, err := h.client.NewConsumer("storage_event", "meal-service.storage-events")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, []string{"storage_event", "storage_event"}, h.topics)
	cm := h.maps[0]
	group, _ := cm.Get("group.id", nil)
	autoCommit, _ := cm.Get("enable.auto.commit", nil)
	offsetStore, _ := cm.Get("enable.auto.offset.store", nil)
	reset, _ := cm.Get("auto.offset.reset", nil)
	assert.Equal(t, "meal-service.storage-events", group)
	assert.Equal(t, true, autoCommit)
	assert.Equal(t, false, offsetStore)
	assert.Equal(t, "latest", reset)

	require.NoError(t, a.Close())
	h.client.Close()

	assert.Equal(t, 1, h.consumers[0].closed, "closed by owner only once")
	assert.Equal(t, 1, h.consumers[1].closed, "closed by client")
}

func TestClient_Close(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.client.Setup(context.Background()))
	_, err := h.client.Producer()
	require.NoError(t, err)

	h.client.Close()
	h.client.Close()

	assert.Equal(t, 1, h.producers[0].closed)
	assert.Equal(t, 1, h.admin.closed)
	_, err = h.client.Producer()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = h.client.NewConsumer("meal_event", "g")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLazyProducer(t *testing.T) {
	h := newHarness(t, testConfig())
	lp := provideProducer(h.client)
	env, err := envelope.New("meal_cancelled", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, lp.Produce(context.Background(), "meal_event", "1", env), ErrNotSetUp)

	require.NoError(t, h.client.Setup(context.Background()))
	assert.NoError(t, lp.Produce(context.Background(), "meal_event", "1", env))

	h.client.Close()
	assert.ErrorIs(t, lp.Produce(context.Background(), "meal_event", "1", env), ErrClosed)
}
