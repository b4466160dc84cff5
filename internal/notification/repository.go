package notification

import (
	"context"
	"fmt"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type Repository interface {
	// Insert stores n unless a notification with its id exists. It reports
	// whether n was new.
	Insert(ctx context.Context, n Notification) (bool, error)
}

type mongoRepository struct {
	coll mongo.Collection
}

func newMongoRepository(m mongo.Mongo) *mongoRepository {
	return &mongoRepository{coll: m.Collection(collectionName)}
}

func (r *mongoRepository) Insert(ctx context.Context, n Notification) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": n.ID},
		bson.M{"$setOnInsert": insertFields(n)},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("failed to store notification %s: %w", n.ID, err)
	}
	return res.UpsertedCount > 0, nil
}

func (r *mongoRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("user_created_at")},
		{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("group_created_at")},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}

// insertFields is n without _id, which the upsert takes from the filter.
func insertFields(n Notification) bson.M {
	fields := bson.M{
		"kind":       n.Kind,
		"title":      n.Title,
		"body":       n.Body,
		"created_at": n.CreatedAt,
	}
	if n.UserID != "" {
		fields["user_id"] = n.UserID
	}
	if n.GroupID != 0 {
		fields["group_id"] = n.GroupID
	}
	return fields
}
