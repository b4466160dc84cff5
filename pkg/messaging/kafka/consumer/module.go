package consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/health"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/worker"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/broker"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/producer"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/tracing"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewConsumerModule runs one supervised dispatch loop for base. base carries
// the code defaults (name, topic, group); a kafka.consumers-config.consumers
// entry with the same name overrides them. routerConstructor is an fx
// constructor returning *Router.
//
//	consumer.NewConsumerModule(config.ConsumerConfig{
//	    Name:    "meal-storage-events",
//	    Topic:   contract.TopicStorage,
//	    GroupID: contract.GroupMealStorage,
//	}, meal.NewStorageRouter)
func NewConsumerModule(base config.ConsumerConfig, routerConstructor any) fx.Option {
	return fx.Module(
		base.Name,
		fx.Supply(fx.Private, consumerDefaults{base}),
		fx.Decorate(func(log *zap.Logger) *zap.Logger {
			return log.With(
				zap.String("component", "consumer"),
				zap.String("consumer_name", base.Name),
				zap.String("topic", base.Topic),
				zap.String("group_id", base.GroupID),
			)
		}),
		fx.Provide(
			fx.Private,
			resolveConsumerConfig,
			routerConstructor,
			provideSupervisor,
		),
		fx.Provide(worker.Register[*Supervisor](base.Name+"-consumer", worker.WithReady(), worker.WithShutdown())),
	)
}

// consumerDefaults is the code-side ConsumerConfig before yaml overrides.
type consumerDefaults struct {
	config.ConsumerConfig
}

func resolveConsumerConfig(conf config.Config, base consumerDefaults, router *Router) (config.ConsumerConfig, error) {
	if router.Topic() != base.Topic {
		return config.ConsumerConfig{}, fmt.Errorf("consumer %s: router is for topic %s, consumer reads %s", base.Name, router.Topic(), base.Topic)
	}
	return conf.ResolveConsumer(base.ConsumerConfig)
}

type supervisorParams struct {
	fx.In

	Lifecycle     fx.Lifecycle
	Conf          config.ConsumerConfig
	Client        *broker.Client
	Router        *Router
	Producer      producer.Producer
	Tracer        tracing.MessageTracer
	MeterProvider metric.MeterProvider `optional:"true"`
	Log           *zap.Logger
	Readiness     health.ComponentManager
}

func provideSupervisor(p supervisorParams) (*Supervisor, error) {
	metrics, err := NewMetrics(p.MeterProvider)
	if err != nil {
		return nil, err
	}

	opts := []LoopOption{WithTracer(p.Tracer), WithMetrics(metrics)}
	if p.Conf.DLQTopic != "" {
		opts = append(opts, WithDLQ(NewDLQHandler(p.Producer, p.Conf.DLQTopic, p.Tracer, p.Log)))
	}

	conf := p.Conf
	factory := func(ctx context.Context) (*Loop, error) {
		c, err := p.Client.NewConsumer(conf.Topic, conf.GroupID, broker.WithAutoOffsetReset(conf.AutoOffsetReset))
		if err != nil {
			return nil, err
		}
		return NewLoop(conf, c, p.Router, p.Log, opts...), nil
	}

	markReady := p.Readiness.AddComponent("kafka-consumer-" + conf.Name)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := waitForTopic(ctx, p.Client, conf, p.Log); err != nil {
				return err
			}
			markReady()
			return nil
		},
	})

	return NewSupervisor(conf.Name, factory, conf.Restart, metrics, p.Log), nil
}

func waitForTopic(ctx context.Context, client *broker.Client, conf config.ConsumerConfig, log *zap.Logger) error {
	if conf.ReadinessTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(conf.ReadinessTimeoutSeconds)*time.Second)
		defer cancel()
	}

	log.Info("waiting for topic")
	if err := client.WaitForTopic(ctx, conf.Topic); err != nil {
		if conf.FailOnTopicError {
			return err
		}
		log.Warn("topic not available, continuing", zap.Error(err))
		return nil
	}
	log.Info("topic is ready")
	return nil
}
