package producer

import (
	"context"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/envelope"
	"go.uber.org/zap"
)

// Publisher builds envelopes from typed payloads. It is used after a local
// commit, so a failed publish is never rolled back.
type Publisher struct {
	producer Producer
	log      *zap.Logger
}

func NewPublisher(producer Producer, log *zap.Logger) *Publisher {
	return &Publisher{producer: producer, log: log.With(zap.String("component", "publisher"))}
}

// Publish sends payload as eventType and waits for the acknowledgement.
func (p *Publisher) Publish(ctx context.Context, topic, key, eventType string, payload any) error {
	env, err := envelope.New(eventType, payload)
	if err != nil {
		return err
	}
	if err := p.producer.Produce(ctx, topic, key, env); err != nil {
		p.log.Warn("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err))
		return err
	}
	p.log.Debug("event published",
		zap.String("topic", topic),
		zap.String("event_type", eventType),
		zap.String("key", key))
	return nil
}

// PublishBestEffort is Publish with the error only logged.
func (p *Publisher) PublishBestEffort(ctx context.Context, topic, key, eventType string, payload any) {
	_ = p.Publish(ctx, topic, key, eventType, payload)
}
