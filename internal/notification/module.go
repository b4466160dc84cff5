package notification

import (
	"context"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/consumer"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	AccountConsumer = "notification-accounts"
	StorageConsumer = "notification-storage-events"
)

func NewNotificationModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newMongoRepository,
			func(r *mongoRepository) Repository { return r },
			NewHandlers,
		),
		fx.Invoke(registerIndexes),
		consumer.NewConsumerModule(config.ConsumerConfig{
			Name:    AccountConsumer,
			Topic:   contract.TopicAccountRegistered,
			GroupID: contract.GroupNotificationAccounts,
		}, NewAccountRouter),
		consumer.NewConsumerModule(config.ConsumerConfig{
			Name:    StorageConsumer,
			Topic:   contract.TopicStorage,
			GroupID: contract.GroupNotificationStorage,
		}, NewStorageRouter),
	)
}

func registerIndexes(lc fx.Lifecycle, r *mongoRepository, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := r.ensureIndexes(ctx); err != nil {
				return err
			}
			log.Info("notification indexes ensured")
			return nil
		},
	})
}
