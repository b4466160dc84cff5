package mongo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Bulkhead caps the number of concurrent transactions.
type Bulkhead struct {
	semaphore *semaphore.Weighted
	limit     int
	timeout   time.Duration
	log       *zap.Logger
}

// NewBulkhead creates a bulkhead. A zero timeout waits as long as ctx allows.
func NewBulkhead(limit int, timeout time.Duration, log *zap.Logger) *Bulkhead {
	log.Info("transaction bulkhead initialized",
		zap.Int("limit", limit),
		zap.Duration("timeout", timeout),
	)

	return &Bulkhead{
		semaphore: semaphore.NewWeighted(int64(limit)),
		limit:     limit,
		timeout:   timeout,
		log:       log,
	}
}

// Execute runs fn once a slot is free.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	acquireCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	if err := b.semaphore.Acquire(acquireCtx, 1); err != nil {
		b.log.Warn("bulkhead acquisition failed",
			zap.Int("limit", b.limit),
			zap.Duration("timeout", b.timeout),
			zap.Error(err),
		)
		return fmt.Errorf("no free transaction slot: %w", err)
	}
	defer b.semaphore.Release(1)

	return fn()
}
