package mongo

import (
	"context"

	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Session is the part of *mongo.Session the transaction manager uses.
type Session interface {
	// WithTransaction runs fn in a transaction, retrying fn on
	// TransientTransactionError and the commit on UnknownTransactionCommitResult.
	// fn must use the ctx it is given so its operations join the transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) (any, error), opts ...options.Lister[options.TransactionOptions]) (any, error)
	EndSession(ctx context.Context)
}

var _ Session = (*mongodriver.Session)(nil)
