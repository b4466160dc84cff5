package recipe

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/cache/redis"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/logger"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/consumer"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/search/elastic"
	"go.uber.org/zap"
)

// Handlers keeps the projections in step with the user and recipe events.
type Handlers struct {
	tm    persistence.TxManager
	prefs PreferenceRepository
	index elastic.Indexer
	cache redis.Invalidator
	now   func() time.Time
}

func NewHandlers(tm persistence.TxManager, prefs PreferenceRepository, index elastic.Indexer, cache redis.Invalidator) *Handlers {
	return &Handlers{tm: tm, prefs: prefs, index: index, cache: cache, now: time.Now}
}

// GroupTagsUpdated replaces the group's preferences wholesale. An empty list
// deletes them.
func (h *Handlers) GroupTagsUpdated(ctx context.Context, p contract.GroupTagsUpdated) error {
	if p.GroupID <= 0 {
		return fmt.Errorf("%w: group_id must be positive, got %d", consumer.ErrSkipMessage, p.GroupID)
	}
	log := logger.FromContext(ctx).With(zap.Int64("group_id", p.GroupID))
	tags := p.GroupTagList

	if len(tags) == 0 {
		var existed bool
		err := persistence.InTx(ctx, h.tm, func(txCtx context.Context) error {
			var err error
			existed, err = h.prefs.Delete(txCtx, p.GroupID)
			return err
		})
		if err != nil {
			return err
		}
		log.Info("group preferences removed", zap.Bool("existed", existed))
	} else {
		err := persistence.InTx(ctx, h.tm, func(txCtx context.Context) error {
			return h.prefs.Replace(txCtx, p.GroupID, tags, h.now())
		})
		if err != nil {
			return err
		}
		log.Info("group preferences replaced", zap.Int64s("group_tag_list", tags))
	}

	return h.invalidate(ctx, redis.Key(preferenceCacheEntity, p.GroupID))
}

// RecipeIndexed writes the recipe document under its id.
func (h *Handlers) RecipeIndexed(ctx context.Context, doc contract.RecipeDocument) error {
	if doc.RecipeID <= 0 {
		return fmt.Errorf("%w: recipe_id must be positive, got %d", consumer.ErrSkipMessage, doc.RecipeID)
	}
	if doc.ComponentNameList == nil {
		doc.ComponentNameList = []string{}
	}
	if doc.TagList == nil {
		doc.TagList = []int64{}
	}
	if err := h.index.Upsert(ctx, documentID(doc.RecipeID), doc); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("recipe indexed", zap.Int64("recipe_id", doc.RecipeID))
	return h.invalidate(ctx, redis.Key(recipeCacheEntity, doc.RecipeID))
}

// RecipeDeleted drops the recipe document. An already missing document is fine.
func (h *Handlers) RecipeDeleted(ctx context.Context, p contract.RecipeDeleted) error {
	if p.RecipeID <= 0 {
		return fmt.Errorf("%w: recipe_id must be positive, got %d", consumer.ErrSkipMessage, p.RecipeID)
	}
	if err := h.index.Delete(ctx, documentID(p.RecipeID)); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("recipe removed from index", zap.Int64("recipe_id", p.RecipeID))
	return h.invalidate(ctx, redis.Key(recipeCacheEntity, p.RecipeID))
}

func (h *Handlers) invalidate(ctx context.Context, keys ...string) error {
	if h.cache == nil {
		return nil
	}
	if err := h.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate %v: %w", keys, err)
	}
	return nil
}

func documentID(recipeID int64) string {
	return strconv.FormatInt(recipeID, 10)
}
