package broker

import (
	"context"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/health"
	kafkaconfig "github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/producer"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/tracing"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewBrokerModule provides the *Client, the shared producer and a Publisher.
// The client is set up on start and closed on stop; workers registered later
// stop before it.
func NewBrokerModule() fx.Option {
	return fx.Options(
		fx.Provide(
			provideTracer,
			provideClient,
			provideProducer,
			producer.NewPublisher,
		),
	)
}

func provideTracer(tp trace.TracerProvider) tracing.MessageTracer {
	return tracing.NewMessageTracer(tp)
}

func provideClient(lc fx.Lifecycle, conf kafkaconfig.Config, log *zap.Logger, tracer tracing.MessageTracer, readiness health.ComponentManager) *Client {
	c := New(conf, log, tracer)
	markReady := readiness.AddComponent("kafka-broker")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := c.Setup(ctx); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			c.Close()
			return nil
		},
	})
	return c
}

// provideProducer defers creation to the first call after Setup, so
// constructors may depend on it before the client is started.
func provideProducer(c *Client) producer.Producer {
	return &lazyProducer{client: c}
}
