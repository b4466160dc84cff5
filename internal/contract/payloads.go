package contract

import "time"

// AllocatedMeal is one element of unit_allocated / unit_backordered data.
type AllocatedMeal struct {
	MealID int64 `json:"meal_id"`
}

// MealSufficiency is one element of meal_sufficiency_updated data.
type MealSufficiency struct {
	MealID       int64 `json:"meal_id"`
	IsSufficient bool  `json:"is_sufficient"`
}

// StorageUnitsExpired is published by the storage-unit expiry job, one per group.
type StorageUnitsExpired struct {
	GroupID        int64     `json:"group_id"`
	StorageUnitIDs []int64   `json:"storage_unit_ids"`
	ExpiredAt      time.Time `json:"expired_at"`
}

// MealCancelled releases the storage units reserved for a meal.
type MealCancelled struct {
	MealID         int64   `json:"meal_id"`
	StorageUnitIDs []int64 `json:"storage_unit_ids"`
}

// RecipeUpdated carries the denormalized component names for meals using the recipe.
type RecipeUpdated struct {
	RecipeID          int64    `json:"recipe_id"`
	ComponentNameList []string `json:"component_name_list"`
	MealIDs           []int64  `json:"meal_ids"`
}

// RecipeDocument is the search-index projection of a recipe.
type RecipeDocument struct {
	RecipeID          int64    `json:"recipe_id"`
	RecipeName        string   `json:"recipe_name"`
	ComponentNameList []string `json:"component_name_list"`
	TagList           []int64  `json:"tag_list"`
	DefaultServings   int      `json:"default_servings,omitempty"`
	CookingTime       int      `json:"cooking_time,omitempty"`
	ImageURL          string   `json:"image_url,omitempty"`
}

// RecipeDeleted identifies a removed recipe.
type RecipeDeleted struct {
	RecipeID int64 `json:"recipe_id"`
}

// PlanCompleted marks the meals covered by a finished shopping plan as done.
type PlanCompleted struct {
	PlanID  int64   `json:"plan_id"`
	MealIDs []int64 `json:"meal_ids"`
}

// GroupTagsUpdated replaces the tag preferences of a group. An empty list
// means the group has no preferences left.
type GroupTagsUpdated struct {
	GroupID      int64   `json:"group_id"`
	GroupTagList []int64 `json:"group_tag_list"`
}

// AccountRegistered is published by the user service after sign-up.
type AccountRegistered struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}
