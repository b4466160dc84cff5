// Package persistencetest provides an in-memory persistence.TxManager for
// handler and job tests.
package persistencetest

import (
	"context"
	"sync"
)

// Snapshotter is an in-memory store that can roll itself back. Snapshot
// captures the current state and returns a function restoring it.
type Snapshotter interface {
	Snapshot() (restore func())
}

// TxManager snapshots its stores before fn and restores them when fn fails
// or panics, so a failed handler leaves no partial writes.
type TxManager struct {
	mu     sync.Mutex
	stores []Snapshotter

	Commits   int
	Rollbacks int
	// Err, when set, is returned before fn runs, like a store that cannot
	// start a session.
	Err error
}

// NewTxManager wraps stores.
func NewTxManager(stores ...Snapshotter) *TxManager {
	return &TxManager{stores: stores}
}

func (m *TxManager) WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (result any, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	restores := make([]func(), len(m.stores))
	for i, s := range m.stores {
		restores[i] = s.Snapshot()
	}
	rollback := func() {
		for _, restore := range restores {
			restore()
		}
		m.Rollbacks++
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	result, err = fn(ctx)
	if err != nil {
		rollback()
		return nil, err
	}
	m.Commits++
	return result, nil
}
