package meal

import (
	"context"
	"fmt"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/status"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/cache/redis"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/logger"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Handlers applies events from other services to meals. Every method is safe
// to run again with the same payload.
type Handlers struct {
	tm    persistence.TxManager
	repo  Repository
	cache redis.Invalidator
	now   func() time.Time
}

func NewHandlers(tm persistence.TxManager, repo Repository, cache redis.Invalidator) *Handlers {
	return &Handlers{tm: tm, repo: repo, cache: cache, now: time.Now}
}

// UnitAllocated marks meals whose ingredients were reserved in storage.
func (h *Handlers) UnitAllocated(ctx context.Context, items []contract.AllocatedMeal) error {
	return h.transition(ctx, allocatedIDs(items), status.MealReserved)
}

// UnitBackordered marks meals waiting on missing ingredients.
func (h *Handlers) UnitBackordered(ctx context.Context, items []contract.AllocatedMeal) error {
	return h.transition(ctx, allocatedIDs(items), status.MealBackordered)
}

// PlanCompleted marks the meals of a finished shopping plan as done.
func (h *Handlers) PlanCompleted(ctx context.Context, p contract.PlanCompleted) error {
	return h.transition(ctx, validIDs(p.MealIDs), status.MealDone)
}

// SufficiencyUpdated overwrites is_sufficient per meal. When one meal appears
// twice the last entry wins.
func (h *Handlers) SufficiencyUpdated(ctx context.Context, items []contract.MealSufficiency) error {
	items = lastPerMeal(items)
	if len(items) == 0 {
		return nil
	}

	var res persistence.UpdateResult
	err := persistence.InTx(ctx, h.tm, func(txCtx context.Context) error {
		var err error
		res, err = h.repo.SetSufficiency(txCtx, items, h.now())
		return err
	})
	if err != nil {
		return err
	}

	ids := lo.Map(items, func(i contract.MealSufficiency, _ int) int64 { return i.MealID })
	logger.FromContext(ctx).Info("meal sufficiency updated",
		zap.Int64s("meal_ids", ids),
		zap.Int64("matched", res.Matched),
		zap.Int64("modified", res.Modified),
	)
	return h.invalidate(ctx, ids)
}

// RecipeUpdated copies the recipe's component names onto the meals using it.
func (h *Handlers) RecipeUpdated(ctx context.Context, p contract.RecipeUpdated) error {
	ids := validIDs(p.MealIDs)
	if len(ids) == 0 {
		return nil
	}

	var res persistence.UpdateResult
	err := persistence.InTx(ctx, h.tm, func(txCtx context.Context) error {
		var err error
		res, err = h.repo.SetComponentNames(txCtx, ids, p.ComponentNameList, h.now())
		return err
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("meal components updated",
		zap.Int64("recipe_id", p.RecipeID),
		zap.Int64s("meal_ids", ids),
		zap.Int64("matched", res.Matched),
		zap.Int64("modified", res.Modified),
	)
	return h.invalidate(ctx, ids)
}

func (h *Handlers) transition(ctx context.Context, ids []int64, target status.MealStatus) error {
	if len(ids) == 0 {
		logger.FromContext(ctx).Debug("no meals in event")
		return nil
	}

	var res persistence.UpdateResult
	err := persistence.InTx(ctx, h.tm, func(txCtx context.Context) error {
		var err error
		res, err = h.repo.TransitionStatus(txCtx, ids, target, h.now())
		return err
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("meals transitioned",
		zap.String("target", string(target)),
		zap.Int64s("meal_ids", ids),
		zap.Int64("matched", res.Matched),
		zap.Int64("modified", res.Modified),
	)
	return h.invalidate(ctx, ids)
}

// invalidate runs after commit. Its error redelivers the message, which is
// harmless since the store write is a repeatable SET.
func (h *Handlers) invalidate(ctx context.Context, ids []int64) error {
	if h.cache == nil {
		return nil
	}
	if err := h.cache.Delete(ctx, redis.Keys(cacheEntity, ids)...); err != nil {
		return fmt.Errorf("failed to invalidate cached meals: %w", err)
	}
	return nil
}

func allocatedIDs(items []contract.AllocatedMeal) []int64 {
	return validIDs(lo.Map(items, func(i contract.AllocatedMeal, _ int) int64 { return i.MealID }))
}

func validIDs(ids []int64) []int64 {
	return lo.Uniq(lo.Filter(ids, func(id int64, _ int) bool { return id > 0 }))
}

func lastPerMeal(items []contract.MealSufficiency) []contract.MealSufficiency {
	last := make(map[int64]int, len(items))
	for i, item := range items {
		if item.MealID > 0 {
			last[item.MealID] = i
		}
	}
	return lo.Filter(items, func(item contract.MealSufficiency, i int) bool {
		idx, ok := last[item.MealID]
		return ok && idx == i
	})
}
