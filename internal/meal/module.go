package meal

import (
	"context"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/consumer"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/scheduler"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Consumer names, also the keys of kafka.consumers-config.consumers overrides.
const (
	StorageConsumer  = "meal-storage-events"
	RecipeConsumer   = "meal-recipe-events"
	ShoppingConsumer = "meal-shopping-events"
)

// NewStoreModule provides the repository, handlers and expiry job, without
// any consumer. The sweep CLI uses it on its own.
func NewStoreModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newMongoRepository,
			func(r *mongoRepository) Repository { return r },
			NewHandlers,
			scheduler.AsJob(NewExpiryJob),
		),
		fx.Invoke(registerIndexes),
	)
}

// NewMealModule is the meal service: store, jobs and one supervised consumer
// per subscribed topic.
func NewMealModule() fx.Option {
	return fx.Options(
		NewStoreModule(),
		consumer.NewConsumerModule(config.ConsumerConfig{
			Name:    StorageConsumer,
			Topic:   contract.TopicStorage,
			GroupID: contract.GroupMealStorage,
		}, NewStorageRouter),
		consumer.NewConsumerModule(config.ConsumerConfig{
			Name:    RecipeConsumer,
			Topic:   contract.TopicRecipe,
			GroupID: contract.GroupMealRecipe,
		}, NewRecipeRouter),
		consumer.NewConsumerModule(config.ConsumerConfig{
			Name:    ShoppingConsumer,
			Topic:   contract.TopicShopping,
			GroupID: contract.GroupMealShopping,
		}, NewShoppingRouter),
	)
}

func registerIndexes(lc fx.Lifecycle, r *mongoRepository, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := r.ensureIndexes(ctx); err != nil {
				return err
			}
			log.Info("meal indexes ensured")
			return nil
		},
	})
}
