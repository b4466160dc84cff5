package notification

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
)

var errStore = errors.New("store unavailable")

type memoryRepository struct {
	mu   sync.Mutex
	rows map[string]Notification
	err  error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{rows: map[string]Notification{}}
}

func (r *memoryRepository) Snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := maps.Clone(r.rows)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.rows = saved
	}
}

func (r *memoryRepository) Insert(_ context.Context, n Notification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	if _, ok := r.rows[n.ID]; ok {
		return false, nil
	}
	r.rows[n.ID] = n
	return true, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok {
		return nil, persistence.ErrEntityNotFound
	}
	return &n, nil
}

func (r *memoryRepository) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
