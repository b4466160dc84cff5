package mongo

import (
	"context"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection is the subset of *mongo.Collection repositories use.
type Collection interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongodriver.SingleResult
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongodriver.Cursor, error)
	InsertMany(ctx context.Context, documents any, opts ...options.Lister[options.InsertManyOptions]) (*mongodriver.InsertManyResult, error)
	UpdateOne(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongodriver.UpdateResult, error)
	UpdateMany(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateManyOptions]) (*mongodriver.UpdateResult, error)
	ReplaceOne(ctx context.Context, filter any, replacement any, opts ...options.Lister[options.ReplaceOptions]) (*mongodriver.UpdateResult, error)
	DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongodriver.DeleteResult, error)
	CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error)
	BulkWrite(ctx context.Context, models []mongodriver.WriteModel, opts ...options.Lister[options.BulkWriteOptions]) (*mongodriver.BulkWriteResult, error)
	Indexes() mongodriver.IndexView
	Name() string
}

var _ Collection = (*mongodriver.Collection)(nil)

// timeoutCollection bounds each call by timeout unless ctx already has an
// earlier deadline.
type timeoutCollection struct {
	coll    *mongodriver.Collection
	timeout time.Duration
}

func newTimeoutCollection(coll *mongodriver.Collection, timeout time.Duration) Collection {
	return &timeoutCollection{coll: coll, timeout: timeout}
}

func (c *timeoutCollection) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// FindOne's result is decoded after return, so the timeout is not applied
// to it.
func (c *timeoutCollection) FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongodriver.SingleResult {
	return c.coll.FindOne(ctx, filter, opts...)
}

// Find returns a cursor that outlives the call; ctx governs iteration.
func (c *timeoutCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (*mongodriver.Cursor, error) {
	return c.coll.Find(ctx, filter, opts...)
}

func (c *timeoutCollection) InsertMany(ctx context.Context, documents any, opts ...options.Lister[options.InsertManyOptions]) (*mongodriver.InsertManyResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.InsertMany(ctx, documents, opts...)
}

func (c *timeoutCollection) UpdateOne(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongodriver.UpdateResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.UpdateOne(ctx, filter, update, opts...)
}

func (c *timeoutCollection) UpdateMany(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateManyOptions]) (*mongodriver.UpdateResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.UpdateMany(ctx, filter, update, opts...)
}

func (c *timeoutCollection) ReplaceOne(ctx context.Context, filter any, replacement any, opts ...options.Lister[options.ReplaceOptions]) (*mongodriver.UpdateResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.ReplaceOne(ctx, filter, replacement, opts...)
}

func (c *timeoutCollection) DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongodriver.DeleteResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.DeleteOne(ctx, filter, opts...)
}

func (c *timeoutCollection) CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.CountDocuments(ctx, filter, opts...)
}

func (c *timeoutCollection) BulkWrite(ctx context.Context, models []mongodriver.WriteModel, opts ...options.Lister[options.BulkWriteOptions]) (*mongodriver.BulkWriteResult, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.coll.BulkWrite(ctx, models, opts...)
}

func (c *timeoutCollection) Indexes() mongodriver.IndexView {
	return c.coll.Indexes()
}

func (c *timeoutCollection) Name() string {
	return c.coll.Name()
}

// UpdateCounts converts a driver result, which is nil for unacknowledged writes.
func UpdateCounts(r *mongodriver.UpdateResult) persistence.UpdateResult {
	if r == nil {
		return persistence.UpdateResult{}
	}
	return persistence.UpdateResult{Matched: r.MatchedCount, Modified: r.ModifiedCount}
}

// BulkCounts converts a bulk write result.
func BulkCounts(r *mongodriver.BulkWriteResult) persistence.UpdateResult {
	if r == nil {
		return persistence.UpdateResult{}
	}
	return persistence.UpdateResult{Matched: r.MatchedCount, Modified: r.ModifiedCount}
}
