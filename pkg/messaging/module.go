// Package messaging bundles the broker side of a service: kafka config, the
// broker client, the shared producer and the publisher.
package messaging

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/broker"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/config"
	"go.uber.org/fx"
)

type messagingOptions struct {
	kafkaConfig *config.Config
}

// MessagingOption configures NewMessagingModule.
type MessagingOption func(*messagingOptions)

// WithKafkaConfig provides a static Kafka Config (useful for tests).
func WithKafkaConfig(cfg config.Config) MessagingOption {
	return func(opts *messagingOptions) {
		opts.kafkaConfig = &cfg
	}
}

// NewMessagingModule provides config.Config, *broker.Client,
// producer.Producer and *producer.Publisher. Consumers are added per service
// with consumer.NewConsumerModule.
//
//	messaging.NewMessagingModule()
//
//	messaging.NewMessagingModule(
//	    messaging.WithKafkaConfig(config.Config{Brokers: "localhost:9092"}),
//	)
func NewMessagingModule(opts ...MessagingOption) fx.Option {
	cfg := &messagingOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Options(
		kafkaConfigModule(cfg),
		broker.NewBrokerModule(),
	)
}

func kafkaConfigModule(cfg *messagingOptions) fx.Option {
	if cfg.kafkaConfig != nil {
		return config.NewKafkaConfigModule(config.WithKafkaConfig(*cfg.kafkaConfig))
	}
	return config.NewKafkaConfigModule()
}
