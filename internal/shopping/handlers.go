package shopping

import (
	"context"
	"fmt"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/cache/redis"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/logger"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type Handlers struct {
	tm    persistence.TxManager
	units UnitRepository
	cache redis.Invalidator
	now   func() time.Time
}

func NewHandlers(tm persistence.TxManager, units UnitRepository, cache redis.Invalidator) *Handlers {
	return &Handlers{tm: tm, units: units, cache: cache, now: time.Now}
}

// MealCancelled gives the meal's reserved units back to the pantry.
func (h *Handlers) MealCancelled(ctx context.Context, p contract.MealCancelled) error {
	ids := lo.Uniq(lo.Filter(p.StorageUnitIDs, func(id int64, _ int) bool { return id > 0 }))
	log := logger.FromContext(ctx).With(zap.Int64("meal_id", p.MealID))
	if len(ids) == 0 {
		log.Debug("cancelled meal held no storage units")
		return nil
	}

	var res persistence.UpdateResult
	err := persistence.InTx(ctx, h.tm, func(txCtx context.Context) error {
		var err error
		res, err = h.units.Release(txCtx, ids, h.now())
		return err
	})
	if err != nil {
		return err
	}

	log.Info("storage units released",
		zap.Int64s("storage_unit_ids", ids),
		zap.Int64("matched", res.Matched),
		zap.Int64("modified", res.Modified),
	)
	if h.cache == nil {
		return nil
	}
	if err := h.cache.Delete(ctx, redis.Keys(unitCacheEntity, ids)...); err != nil {
		return fmt.Errorf("failed to invalidate cached storage units: %w", err)
	}
	return nil
}
