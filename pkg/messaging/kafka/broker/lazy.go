package broker

import (
	"context"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/envelope"
)

// lazyProducer resolves the shared producer on every call. Before Setup it
// returns ErrNotSetUp, after Close ErrClosed.
type lazyProducer struct {
	client *Client
}

func (l *lazyProducer) Produce(ctx context.Context, topic, key string, env envelope.Envelope) error {
	p, err := l.client.Producer()
	if err != nil {
		return err
	}
	return p.Produce(ctx, topic, key, env)
}

func (l *lazyProducer) ProduceMessage(ctx context.Context, message *kafka.Message) error {
	p, err := l.client.Producer()
	if err != nil {
		return err
	}
	return p.ProduceMessage(ctx, message)
}

// Close is a no-op; the client owns the producer.
func (l *lazyProducer) Close() {}
