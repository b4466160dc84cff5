package shopping

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/consumer"
)

func NewMealRouter(h *Handlers) *consumer.Router {
	return consumer.NewRouter(contract.TopicMeal).
		Handle(contract.EventMealCancelled, consumer.Typed(h.MealCancelled))
}
