package container

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const mongoImage = "mongo:7"

// Mongo starts a single-node replica set "rs0", so multi-document
// transactions work, and returns a connected client.
func Mongo(t testing.TB) *mongo.Client {
	t.Helper()
	c := start(t, func(ctx context.Context) (*mongodb.MongoDBContainer, error) {
		return mongodb.Run(ctx, mongoImage, mongodb.WithReplicaSet("rs0"))
	})

	uri, err := c.ConnectionString(context.Background())
	if err != nil {
		t.Fatalf("mongo connection string: %v", err)
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	waitPing(t, "mongo", func(ctx context.Context) error { return client.Ping(ctx, nil) })
	return client
}
