package container

import (
	"context"
	"errors"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// FindByID decodes the document with _id id from coll. It returns
// persistence.ErrEntityNotFound when there is none.
func FindByID[T any](ctx context.Context, coll *mongo.Collection, id any) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, persistence.ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
