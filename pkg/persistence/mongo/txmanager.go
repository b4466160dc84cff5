package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

type sessionStarter interface {
	StartSession(ctx context.Context) (Session, error)
}

type mongoTxManager struct {
	sessions    sessionStarter
	maxAttempts int
	bulkhead    *Bulkhead
	log         *zap.Logger
}

func newTxManager(admin Admin, conf Config, log *zap.Logger) persistence.TxManager {
	return NewTxManager(admin, conf, log)
}

// NewTxManager builds a transaction manager. With MaxConcurrentTx set,
// transactions beyond the limit wait up to TxAcquireTimeout for a slot.
func NewTxManager(sessions sessionStarter, conf Config, log *zap.Logger) persistence.TxManager {
	tm := &mongoTxManager{
		sessions:    sessions,
		maxAttempts: max(conf.MaxTxAttempts, 1),
		log:         log.With(zap.String("component", "tx-manager")),
	}
	if conf.MaxConcurrentTx > 0 {
		tm.bulkhead = NewBulkhead(conf.MaxConcurrentTx, conf.TxAcquireTimeout, tm.log)
	}
	return tm
}

// isTransientError reports whether err carries the TransientTransactionError label.
func isTransientError(err error) bool {
	var serverErr mongodriver.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.HasErrorLabel("TransientTransactionError")
	}
	return false
}

func (t *mongoTxManager) WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error) {
	if t.bulkhead == nil {
		return t.withRetries(ctx, fn)
	}
	var result any
	err := t.bulkhead.Execute(ctx, func() error {
		var err error
		result, err = t.withRetries(ctx, fn)
		return err
	})
	return result, err
}

func (t *mongoTxManager) withRetries(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error) {
	var lastErr error
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		if attempt > 1 {
			t.log.Warn("retrying transaction", zap.Int("attempt", attempt), zap.Error(lastErr))
		}

		result, err := t.runOnce(ctx, fn)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isTransientError(err) || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("transaction failed after %d attempts: %w", t.maxAttempts, lastErr)
}

// runOnce always ends the session, also when fn panics.
func (t *mongoTxManager) runOnce(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error) {
	session, err := t.sessions.StartSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	return session.WithTransaction(ctx, fn)
}
