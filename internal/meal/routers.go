package meal

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/consumer"
)

func NewStorageRouter(h *Handlers) *consumer.Router {
	return consumer.NewRouter(contract.TopicStorage).
		Handle(contract.EventUnitAllocated, consumer.Typed(h.UnitAllocated)).
		Handle(contract.EventUnitBackordered, consumer.Typed(h.UnitBackordered)).
		Handle(contract.EventMealSufficiencyUpdated, consumer.Typed(h.SufficiencyUpdated))
}

func NewRecipeRouter(h *Handlers) *consumer.Router {
	return consumer.NewRouter(contract.TopicRecipe).
		Handle(contract.EventRecipeUpdated, consumer.Typed(h.RecipeUpdated))
}

func NewShoppingRouter(h *Handlers) *consumer.Router {
	return consumer.NewRouter(contract.TopicShopping).
		Handle(contract.EventPlanCompleted, consumer.Typed(h.PlanCompleted))
}
