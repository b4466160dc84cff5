package recipe

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/consumer"
)

func NewGroupTagsRouter(h *Handlers) *consumer.Router {
	return consumer.NewRouter(contract.TopicGroupTags).
		Handle(contract.EventGroupTagsUpdated, consumer.Typed(h.GroupTagsUpdated))
}

// NewSearchIndexRouter follows recipe_event; recipe_updated is for the meal
// service and is dropped here.
func NewSearchIndexRouter(h *Handlers) *consumer.Router {
	return consumer.NewRouter(contract.TopicRecipe).
		Handle(contract.EventRecipeIndexed, consumer.Typed(h.RecipeIndexed)).
		Handle(contract.EventRecipeDeleted, consumer.Typed(h.RecipeDeleted))
}
