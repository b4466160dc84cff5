package recipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence/mongo"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// PreferenceRepository stores one GroupPreference per group.
type PreferenceRepository interface {
	// Replace writes tags as the group's whole list, creating the row if needed.
	Replace(ctx context.Context, groupID int64, tags []int64, at time.Time) error
	// Delete removes the row and reports whether one existed.
	Delete(ctx context.Context, groupID int64) (bool, error)
	Get(ctx context.Context, groupID int64) (*GroupPreference, error)
}

type mongoPreferenceRepository struct {
	coll mongo.Collection
}

func newMongoPreferenceRepository(m mongo.Mongo) *mongoPreferenceRepository {
	return &mongoPreferenceRepository{coll: m.Collection(preferenceCollection)}
}

func (r *mongoPreferenceRepository) Replace(ctx context.Context, groupID int64, tags []int64, at time.Time) error {
	doc := GroupPreference{GroupID: groupID, GroupTagList: tags, UpdatedAt: at}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": groupID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to replace preferences of group %d: %w", groupID, err)
	}
	return nil
}

func (r *mongoPreferenceRepository) Delete(ctx context.Context, groupID int64) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": groupID})
	if err != nil {
		return false, fmt.Errorf("failed to delete preferences of group %d: %w", groupID, err)
	}
	return res.DeletedCount > 0, nil
}

func (r *mongoPreferenceRepository) Get(ctx context.Context, groupID int64) (*GroupPreference, error) {
	var p GroupPreference
	err := r.coll.FindOne(ctx, bson.M{"_id": groupID}).Decode(&p)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return nil, persistence.ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences of group %d: %w", groupID, err)
	}
	return &p, nil
}
