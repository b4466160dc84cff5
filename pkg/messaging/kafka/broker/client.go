// Package broker owns the Kafka connections of a process: one admin client
// for metadata, one shared producer and any number of consumers.
package broker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	kafkaconfig "github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/producer"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/tracing"
	"go.uber.org/zap"
)

var (
	// ErrNotSetUp is returned when the client is used before Setup succeeded.
	ErrNotSetUp = errors.New("kafka broker client is not set up: call Setup before requesting a producer or consumer")
	// ErrClosed is returned when the client is used after Close.
	ErrClosed = errors.New("kafka broker client is closed")
)

// Consumer is the part of *kafka.Consumer the dispatch loop needs.
type Consumer interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	StoreMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
	Commit() ([]kafka.TopicPartition, error)
	GetMetadata(topic *string, allTopics bool, timeoutMs int) (*kafka.Metadata, error)
	Close() error
}

// metadataProvider is the interface for getting Kafka metadata.
type metadataProvider interface {
	GetMetadata(topic *string, allTopics bool, timeoutMs int) (*kafka.Metadata, error)
}

type adminClient interface {
	metadataProvider
	Close()
}

type (
	adminFactory    func(cm *kafka.ConfigMap) (adminClient, error)
	producerFactory func(cm *kafka.ConfigMap) (producer.Producer, error)
	consumerFactory func(cm *kafka.ConfigMap, topic string, rebalance kafka.RebalanceCb) (Consumer, error)
)

// Client is constructed explicitly and injected; there is no package-level instance.
type Client struct {
	conf   kafkaconfig.Config
	log    *zap.Logger
	tracer tracing.MessageTracer

	newAdmin    adminFactory
	newProducer producerFactory
	newConsumer consumerFactory

	setupOnce sync.Once
	setupErr  error

	mu        sync.Mutex
	ready     bool
	closed    bool
	admin     adminClient
	producer  producer.Producer
	consumers map[*trackedConsumer]struct{}
}

// New creates an unconnected client.
func New(conf kafkaconfig.Config, log *zap.Logger, tracer tracing.MessageTracer) *Client {
	c := &Client{
		conf:      conf,
		log:       log.With(zap.String("component", "kafka-broker")),
		tracer:    tracer,
		consumers: make(map[*trackedConsumer]struct{}),
	}
	c.newAdmin = func(cm *kafka.ConfigMap) (adminClient, error) {
		return kafka.NewAdminClient(cm)
	}
	c.newProducer = func(cm *kafka.ConfigMap) (producer.Producer, error) {
		kp, err := kafka.NewProducer(cm)
		if err != nil {
			return nil, err
		}
		return producer.New(kp, conf.ProducerConfig, c.log.With(zap.String("component", "producer")), tracer), nil
	}
	c.newConsumer = func(cm *kafka.ConfigMap, topic string, rebalance kafka.RebalanceCb) (Consumer, error) {
		kc, err := kafka.NewConsumer(cm)
		if err != nil {
			return nil, err
		}
		if err := kc.SubscribeTopics([]string{topic}, rebalance); err != nil {
			_ = kc.Close()
			return nil, fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
		}
		return kc, nil
	}
	return c
}

// Setup connects the admin client and waits for brokers. Only the first call
// does work; later calls return its result.
func (c *Client) Setup(ctx context.Context) error {
	c.setupOnce.Do(func() {
		c.setupErr = c.setup(ctx)
	})
	return c.setupErr
}

func (c *Client) setup(ctx context.Context) error {
	if strings.TrimSpace(c.conf.Brokers) == "" {
		return errors.New("kafka broker client: no bootstrap brokers configured")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	admin, err := c.newAdmin(c.baseConfigMap())
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to create kafka admin client: %w", err)
	}
	c.admin = admin
	c.mu.Unlock()

	pc := c.conf.ProducerConfig
	if err := waitForBrokers(ctx, admin, c.log, pc.ReadinessTimeoutSeconds, pc.FailOnBrokerError); err != nil {
		return fmt.Errorf("kafka brokers not reachable: %w", err)
	}

	c.mu.Lock()
	c.ready = true
	c.mu.Unlock()
	c.log.Info("kafka broker client set up", zap.String("brokers", c.conf.Brokers))
	return nil
}

func (c *Client) usable() error {
	if c.closed {
		return ErrClosed
	}
	if !c.ready {
		return ErrNotSetUp
	}
	return nil
}

// Producer returns the shared producer, creating it on first use.
func (c *Client) Producer() (producer.Producer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable(); err != nil {
		return nil, err
	}
	if c.producer != nil {
		return c.producer, nil
	}

	cm := c.baseConfigMap()
	acks := c.conf.ProducerConfig.Acks
	_ = cm.SetKey("acks", acks)
	_ = cm.SetKey("enable.idempotence", acks == "all")
	_ = cm.SetKey("message.timeout.ms", int(c.conf.ProducerConfig.DeliveryTimeout.Milliseconds()))

	p, err := c.newProducer(cm)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	c.producer = p
	return p, nil
}

// ConsumerOption adjusts a consumer before it is created.
type ConsumerOption func(*kafka.ConfigMap)

// WithAutoOffsetReset sets where a new group starts reading.
func WithAutoOffsetReset(reset string) ConsumerOption {
	return func(cm *kafka.ConfigMap) {
		if reset != "" {
			_ = cm.SetKey("auto.offset.reset", reset)
		}
	}
}

// NewConsumer creates an independent consumer in groupID subscribed to
// topic. Offsets are stored explicitly by the caller and committed in the
// background; Close commits what is stored.
func (c *Client) NewConsumer(topic, groupID string, opts ...ConsumerOption) (Consumer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable(); err != nil {
		return nil, err
	}

	cm := c.baseConfigMap()
	_ = cm.SetKey("group.id", groupID)
	_ = cm.SetKey("enable.auto.commit", true)
	_ = cm.SetKey("enable.auto.offset.store", false)
	_ = cm.SetKey("auto.offset.reset", "earliest")
	for _, opt := range opts {
		opt(cm)
	}

	log := c.log.With(zap.String("topic", topic), zap.String("group_id", groupID))
	kc, err := c.newConsumer(cm, topic, rebalanceLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer for topic %s: %w", topic, err)
	}

	tc := &trackedConsumer{Consumer: kc, client: c}
	c.consumers[tc] = struct{}{}
	log.Info("kafka consumer created")
	return tc, nil
}

// Close flushes the producer and closes every open connection. It is safe
// after a failed Setup and safe to call twice.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	p := c.producer
	consumers := make([]*trackedConsumer, 0, len(c.consumers))
	for tc := range c.consumers {
		consumers = append(consumers, tc)
	}
	c.consumers = make(map[*trackedConsumer]struct{})
	admin := c.admin
	c.mu.Unlock()

	if p != nil {
		p.Close()
	}
	for _, tc := range consumers {
		if err := tc.closeUnderlying(); err != nil {
			c.log.Warn("failed to close kafka consumer", zap.Error(err))
		}
	}
	if admin != nil {
		admin.Close()
	}
	c.log.Info("kafka broker client closed")
}

func (c *Client) baseConfigMap() *kafka.ConfigMap {
	cm := &kafka.ConfigMap{"bootstrap.servers": c.conf.Brokers}
	if c.conf.ClientID != "" {
		_ = cm.SetKey("client.id", c.conf.ClientID)
	}
	return cm
}

func (c *Client) release(tc *trackedConsumer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.consumers, tc)
}

// trackedConsumer removes itself from the client when closed by its owner.
type trackedConsumer struct {
	Consumer
	client *Client
	once   sync.Once
	err    error
}

func (t *trackedConsumer) Close() error {
	t.client.release(t)
	return t.closeUnderlying()
}

func (t *trackedConsumer) closeUnderlying() error {
	t.once.Do(func() {
		t.err = t.Consumer.Close()
	})
	return t.err
}

func rebalanceLogger(log *zap.Logger) kafka.RebalanceCb {
	return func(_ *kafka.Consumer, e kafka.Event) error {
		switch ev := e.(type) {
		case kafka.AssignedPartitions:
			logPartitionEvent(log, "partitions assigned", ev.Partitions)
		case kafka.RevokedPartitions:
			logPartitionEvent(log, "partitions revoked", ev.Partitions)
		}
		return nil
	}
}

func logPartitionEvent(log *zap.Logger, event string, partitions []kafka.TopicPartition) {
	if len(partitions) == 0 {
		log.Warn(event + ": no partitions")
		return
	}

	partitionIDs := make([]int32, len(partitions))
	for idx, partition := range partitions {
		partitionIDs[idx] = partition.Partition
	}

	log.Info(event,
		zap.Int("partition_count", len(partitions)),
		zap.Int32s("partitions", partitionIDs))
}

// WaitForTopic blocks until topic has partitions or ctx is done.
func (c *Client) WaitForTopic(ctx context.Context, topic string) error {
	c.mu.Lock()
	err := c.usable()
	admin := c.admin
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return WaitForTopic(ctx, admin, topic)
}
