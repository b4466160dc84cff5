package shopping

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/status"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence/mongo"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type PlanRepository interface {
	// ExpireBefore moves plans in a non-terminal status whose deadline is
	// before now to EXPIRED.
	ExpireBefore(ctx context.Context, now time.Time) (persistence.UpdateResult, error)
}

type UnitRepository interface {
	// Release returns RESERVED units to AVAILABLE. Units in any other status
	// are left alone.
	Release(ctx context.Context, ids []int64, at time.Time) (persistence.UpdateResult, error)
	// ExpireBefore expires AVAILABLE and RESERVED units past their expiration
	// date and returns them grouped by group, ordered by group id.
	ExpireBefore(ctx context.Context, now time.Time) ([]ExpiredUnits, error)
}

type mongoPlanRepository struct {
	coll mongo.Collection
}

func newMongoPlanRepository(m mongo.Mongo) *mongoPlanRepository {
	return &mongoPlanRepository{coll: m.Collection(planCollection)}
}

func (r *mongoPlanRepository) ExpireBefore(ctx context.Context, now time.Time) (persistence.UpdateResult, error) {
	filter := bson.M{
		"status":   bson.M{"$in": status.Strings(status.PlanSources(status.PlanExpired))},
		"deadline": bson.M{"$lt": now},
	}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": status.PlanExpired, "updated_at": now}})
	if err != nil {
		return persistence.UpdateResult{}, fmt.Errorf("failed to expire shopping plans: %w", err)
	}
	return mongo.UpdateCounts(res), nil
}

func (r *mongoPlanRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "deadline", Value: 1}},
		Options: options.Index().SetName("open_status_deadline").SetPartialFilterExpression(openFilter(status.OpenPlans())),
	})
	if err != nil {
		return fmt.Errorf("failed to create shopping plan indexes: %w", err)
	}
	return nil
}

type mongoUnitRepository struct {
	coll mongo.Collection
}

func newMongoUnitRepository(m mongo.Mongo) *mongoUnitRepository {
	return &mongoUnitRepository{coll: m.Collection(unitCollection)}
}

func (r *mongoUnitRepository) Release(ctx context.Context, ids []int64, at time.Time) (persistence.UpdateResult, error) {
	filter := bson.M{
		"_id":    bson.M{"$in": ids},
		"status": bson.M{"$in": status.Strings(status.UnitSources(status.UnitAvailable))},
	}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": status.UnitAvailable, "updated_at": at}})
	if err != nil {
		return persistence.UpdateResult{}, fmt.Errorf("failed to release storage units: %w", err)
	}
	return mongo.UpdateCounts(res), nil
}

// ExpireBefore reads the matching ids and updates them in the same
// transaction, so the returned ids are exactly the rows it changed.
func (r *mongoUnitRepository) ExpireBefore(ctx context.Context, now time.Time) ([]ExpiredUnits, error) {
	sources := status.Strings(status.UnitSources(status.UnitExpired))
	cur, err := r.coll.Find(ctx,
		bson.M{"status": bson.M{"$in": sources}, "expiration_date": bson.M{"$lt": now}},
		options.Find().SetProjection(bson.M{"_id": 1, "group_id": 1, "status": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired storage units: %w", err)
	}
	var rows []unitRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to read expired storage units: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	units, err := decodeUnits(rows)
	if err != nil {
		return nil, err
	}

	ids := lo.Map(units, func(u StorageUnit, _ int) int64 { return u.ID })
	_, err = r.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "status": bson.M{"$in": sources}},
		bson.M{"$set": bson.M{"status": status.UnitExpired, "updated_at": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to expire storage units: %w", err)
	}
	return groupUnits(units), nil
}

func (r *mongoUnitRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "expiration_date", Value: 1}},
		Options: options.Index().SetName("open_status_expiration_date").SetPartialFilterExpression(openFilter(status.OpenUnits())),
	})
	if err != nil {
		return fmt.Errorf("failed to create storage unit indexes: %w", err)
	}
	return nil
}

// unitRow is a storage unit as read from the store, before its status is
// checked against the known values.
type unitRow struct {
	ID      int64  `bson:"_id"`
	GroupID int64  `bson:"group_id"`
	Status  string `bson:"status"`
}

func decodeUnits(rows []unitRow) ([]StorageUnit, error) {
	units := make([]StorageUnit, 0, len(rows))
	for _, row := range rows {
		st, err := status.Parse[status.UnitStatus](row.Status)
		if err != nil {
			return nil, fmt.Errorf("storage unit %d: %w", row.ID, err)
		}
		units = append(units, StorageUnit{ID: row.ID, GroupID: row.GroupID, Status: st})
	}
	return units, nil
}

func openFilter[S ~string](open []S) bson.M {
	return bson.M{"status": bson.M{"$in": status.Strings(open)}}
}

func groupUnits(units []StorageUnit) []ExpiredUnits {
	byGroup := lo.GroupBy(units, func(u StorageUnit) int64 { return u.GroupID })
	out := make([]ExpiredUnits, 0, len(byGroup))
	for groupID, us := range byGroup {
		ids := lo.Map(us, func(u StorageUnit, _ int) int64 { return u.ID })
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out = append(out, ExpiredUnits{GroupID: groupID, UnitIDs: ids})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	return out
}
