// Package shopping owns shopping plans and storage units: it releases units
// of cancelled meals and expires plans and units past their deadline.
package shopping

import (
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/status"
)

const (
	planCollection = "shopping_plans"
	unitCollection = "storage_units"
)

const unitCacheEntity = "storage-unit"

type ShoppingPlan struct {
	ID        int64             `bson:"_id"`
	GroupID   int64             `bson:"group_id"`
	Deadline  time.Time         `bson:"deadline"`
	Status    status.PlanStatus `bson:"status"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

type StorageUnit struct {
	ID             int64             `bson:"_id"`
	GroupID        int64             `bson:"group_id"`
	UnitName       string            `bson:"unit_name"`
	ExpirationDate time.Time         `bson:"expiration_date"`
	Status         status.UnitStatus `bson:"status"`
	UpdatedAt      time.Time         `bson:"updated_at"`
}

// ExpiredUnits lists the units of one group moved to EXPIRED by a sweep.
type ExpiredUnits struct {
	GroupID int64
	UnitIDs []int64
}
