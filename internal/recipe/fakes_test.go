package recipe

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
)

type memoryPreferences struct {
	mu   sync.Mutex
	rows map[int64]GroupPreference
	err  error
}

func newMemoryPreferences(rows ...GroupPreference) *memoryPreferences {
	r := &memoryPreferences{rows: map[int64]GroupPreference{}}
	for _, row := range rows {
		r.rows[row.GroupID] = row
	}
	return r
}

func (r *memoryPreferences) Snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := maps.Clone(r.rows)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.rows = saved
	}
}

func (r *memoryPreferences) Replace(_ context.Context, groupID int64, tags []int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.rows[groupID] = GroupPreference{GroupID: groupID, GroupTagList: slices.Clone(tags), UpdatedAt: at}
	return nil
}

func (r *memoryPreferences) Delete(_ context.Context, groupID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.rows[groupID]
	delete(r.rows, groupID)
	return ok, nil
}

func (r *memoryPreferences) Get(_ context.Context, groupID int64) (*GroupPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[groupID]
	if !ok {
		return nil, persistence.ErrEntityNotFound
	}
	return &p, nil
}

type fakeIndexer struct {
	mu      sync.Mutex
	docs    map[string]any
	deletes []string
	err     error
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{docs: map[string]any{}}
}

func (f *fakeIndexer) Upsert(_ context.Context, id string, doc any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.docs[id] = doc
	return nil
}

func (f *fakeIndexer) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deletes = append(f.deletes, id)
	delete(f.docs, id)
	return nil
}

type recordingInvalidator struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (c *recordingInvalidator) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, keys...)
	return c.err
}

var errStore = errors.New("store unavailable")
