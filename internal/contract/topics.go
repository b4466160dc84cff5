// Package contract is the topic/event agreement between the planning services.
// Each event type has exactly one producing domain; consumers import the
// payload types from here rather than redeclaring them.
package contract

// Topics. Both the dotted domain.entity.action form and the short noun form
// are in use and are treated the same by the envelope codec.
const (
	TopicStorage           = "storage_event"
	TopicMeal              = "meal_event"
	TopicRecipe            = "recipe_event"
	TopicShopping          = "shopping_event"
	TopicGroupTags         = "user_service.group.update_tags"
	TopicAccountRegistered = "user_service.user.register_account"
)

// Event types.
const (
	// storage_event, produced by the shopping/storage service
	EventUnitAllocated          = "unit_allocated"
	EventUnitBackordered        = "unit_backordered"
	EventMealSufficiencyUpdated = "meal_sufficiency_updated"
	EventStorageUnitsExpired    = "storage_units_expired"

	// meal_event, produced by the meal service
	EventMealCancelled = "meal_cancelled"

	// recipe_event, produced by the recipe service
	EventRecipeUpdated = "recipe_updated"
	EventRecipeIndexed = "recipe_indexed"
	EventRecipeDeleted = "recipe_deleted"

	// shopping_event, produced by the shopping service
	EventPlanCompleted = "plan_completed"

	// user service
	EventGroupTagsUpdated  = "group_tags_updated"
	EventAccountRegistered = "account_registered"
)

// Consumer group ids. One per (service, purpose); changing one makes the
// group start over from the auto-offset-reset position.
const (
	GroupMealStorage          = "meal-service.storage-events"
	GroupMealRecipe           = "meal-service.recipe-events"
	GroupMealShopping         = "meal-service.shopping-events"
	GroupRecipeGroupTags      = "recipe-service.group-tags"
	GroupRecipeSearchIndex    = "recipe-service.search-index"
	GroupShoppingMeal         = "shopping-service.meal-events"
	GroupNotificationAccounts = "notification-service.accounts"
	GroupNotificationStorage  = "notification-service.storage-events"
)
