package persistence

import "context"

// TxManager runs fn in one store transaction. Every write made with txCtx
// commits together or not at all; an error from fn aborts the transaction
// and is returned.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error)
}

// InTx is WithTransaction for callers that only need the error.
func InTx(ctx context.Context, tm TxManager, fn func(txCtx context.Context) error) error {
	_, err := tm.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, fn(txCtx)
	})
	return err
}

// UpdateResult counts the rows a bulk conditional update touched. Matched is
// zero when every target row was already past the transition.
type UpdateResult struct {
	Matched  int64
	Modified int64
}
