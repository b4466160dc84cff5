// Package meal keeps planned meals consistent with the storage, recipe and
// shopping services and expires meals whose day has passed.
package meal

import (
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/status"
)

const collectionName = "meals"

// cacheEntity prefixes the read-model cache keys, e.g. meal:7.
const cacheEntity = "meal"

type Meal struct {
	ID                int64             `bson:"_id"`
	GroupID           int64             `bson:"group_id"`
	MealDate          time.Time         `bson:"meal_date"`
	MealType          string            `bson:"meal_type"`
	Status            status.MealStatus `bson:"status"`
	IsSufficient      bool              `bson:"is_sufficient"`
	ComponentNameList []string          `bson:"component_name_list"`
	UpdatedAt         time.Time         `bson:"updated_at"`
}
