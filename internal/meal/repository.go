package meal

import (
	"context"
	"fmt"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/status"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Repository writes are bulk conditional SETs; calling one twice with the
// same arguments leaves the same rows.
type Repository interface {
	// TransitionStatus moves the listed meals to target, but only those
	// currently in a status target may be reached from.
	TransitionStatus(ctx context.Context, ids []int64, target status.MealStatus, at time.Time) (persistence.UpdateResult, error)
	SetSufficiency(ctx context.Context, items []contract.MealSufficiency, at time.Time) (persistence.UpdateResult, error)
	SetComponentNames(ctx context.Context, ids []int64, names []string, at time.Time) (persistence.UpdateResult, error)
	// ExpireBefore moves every non-terminal meal dated before cutoff to EXPIRED.
	ExpireBefore(ctx context.Context, cutoff, at time.Time) (persistence.UpdateResult, error)
}

type mongoRepository struct {
	coll mongo.Collection
}

func newMongoRepository(m mongo.Mongo) *mongoRepository {
	return &mongoRepository{coll: m.Collection(collectionName)}
}

func (r *mongoRepository) TransitionStatus(ctx context.Context, ids []int64, target status.MealStatus, at time.Time) (persistence.UpdateResult, error) {
	filter := bson.M{
		"_id":    bson.M{"$in": ids},
		"status": bson.M{"$in": status.Strings(status.MealSources(target))},
	}
	update := bson.M{"$set": bson.M{"status": target, "updated_at": at}}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return persistence.UpdateResult{}, fmt.Errorf("failed to move meals to %s: %w", target, err)
	}
	return mongo.UpdateCounts(res), nil
}

func (r *mongoRepository) SetSufficiency(ctx context.Context, items []contract.MealSufficiency, at time.Time) (persistence.UpdateResult, error) {
	models := make([]mongodriver.WriteModel, 0, len(items))
	for _, item := range items {
		models = append(models, mongodriver.NewUpdateOneModel().
			SetFilter(bson.M{"_id": item.MealID}).
			SetUpdate(bson.M{"$set": bson.M{"is_sufficient": item.IsSufficient, "updated_at": at}}))
	}

	res, err := r.coll.BulkWrite(ctx, models)
	if err != nil {
		return persistence.UpdateResult{}, fmt.Errorf("failed to update meal sufficiency: %w", err)
	}
	return mongo.BulkCounts(res), nil
}

func (r *mongoRepository) SetComponentNames(ctx context.Context, ids []int64, names []string, at time.Time) (persistence.UpdateResult, error) {
	if names == nil {
		names = []string{}
	}
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"component_name_list": names, "updated_at": at}},
	)
	if err != nil {
		return persistence.UpdateResult{}, fmt.Errorf("failed to update meal components: %w", err)
	}
	return mongo.UpdateCounts(res), nil
}

func (r *mongoRepository) ExpireBefore(ctx context.Context, cutoff, at time.Time) (persistence.UpdateResult, error) {
	filter := bson.M{
		"status":    bson.M{"$in": status.Strings(status.MealSources(status.MealExpired))},
		"meal_date": bson.M{"$lt": cutoff},
	}
	update := bson.M{"$set": bson.M{"status": status.MealExpired, "updated_at": at}}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return persistence.UpdateResult{}, fmt.Errorf("failed to expire meals: %w", err)
	}
	return mongo.UpdateCounts(res), nil
}

// ensureIndexes backs the expiry sweep and the per-group reads of the API.
func (r *mongoRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "meal_date", Value: 1}},
			Options: options.Index().SetName("open_status_meal_date").SetPartialFilterExpression(openFilter(status.OpenMeals())),
		},
		{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "meal_date", Value: 1}}, Options: options.Index().SetName("group_meal_date")},
	})
	if err != nil {
		return fmt.Errorf("failed to create meal indexes: %w", err)
	}
	return nil
}

// openFilter restricts a partial index to rows in one of the open statuses.
func openFilter[S ~string](open []S) bson.M {
	return bson.M{"status": bson.M{"$in": status.Strings(open)}}
}
