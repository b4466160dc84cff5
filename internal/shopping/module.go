package shopping

import (
	"context"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/consumer"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/producer"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/scheduler"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const MealConsumer = "shopping-meal-events"

// NewStoreModule provides the repositories, handlers and expiry jobs. The
// unit sweep needs a *producer.Publisher from the broker module.
func NewStoreModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newMongoPlanRepository,
			newMongoUnitRepository,
			func(r *mongoPlanRepository) PlanRepository { return r },
			func(r *mongoUnitRepository) UnitRepository { return r },
			func(p *producer.Publisher) eventPublisher { return p },
			NewHandlers,
			scheduler.AsJob(NewPlanExpiryJob),
			scheduler.AsJob(NewUnitExpiryJob),
		),
		fx.Invoke(registerIndexes),
	)
}

func NewShoppingModule() fx.Option {
	return fx.Options(
		NewStoreModule(),
		consumer.NewConsumerModule(config.ConsumerConfig{
			Name:    MealConsumer,
			Topic:   contract.TopicMeal,
			GroupID: contract.GroupShoppingMeal,
		}, NewMealRouter),
	)
}

func registerIndexes(lc fx.Lifecycle, plans *mongoPlanRepository, units *mongoUnitRepository, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := plans.ensureIndexes(ctx); err != nil {
				return err
			}
			if err := units.ensureIndexes(ctx); err != nil {
				return err
			}
			log.Info("shopping indexes ensured")
			return nil
		},
	})
}
