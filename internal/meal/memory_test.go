package meal

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/status"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
)

// memoryRepository mirrors the mongo filters on a map.
type memoryRepository struct {
	mu    sync.Mutex
	meals map[int64]Meal
	// failAfter makes the n-th write (1-based) fail after applying the
	// earlier ones, to show rollback.
	failAfter int
	writes    int
}

func newMemoryRepository(meals ...Meal) *memoryRepository {
	r := &memoryRepository{meals: map[int64]Meal{}}
	for _, m := range meals {
		r.meals[m.ID] = m
	}
	return r
}

func (r *memoryRepository) Snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[int64]Meal, len(r.meals))
	for id, m := range r.meals {
		m.ComponentNameList = slices.Clone(m.ComponentNameList)
		saved[id] = m
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.meals = saved
	}
}

var errWriteFailed = errors.New("write failed")

func (r *memoryRepository) write() error {
	r.writes++
	if r.failAfter > 0 && r.writes >= r.failAfter {
		return errWriteFailed
	}
	return nil
}

func (r *memoryRepository) TransitionStatus(_ context.Context, ids []int64, target status.MealStatus, at time.Time) (persistence.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res persistence.UpdateResult
	sources := status.MealSources(target)
	for _, id := range ids {
		m, ok := r.meals[id]
		if !ok || !slices.Contains(sources, m.Status) {
			continue
		}
		if err := r.write(); err != nil {
			return res, err
		}
		m.Status, m.UpdatedAt = target, at
		r.meals[id] = m
		res.Matched++
		res.Modified++
	}
	return res, nil
}

func (r *memoryRepository) SetSufficiency(_ context.Context, items []contract.MealSufficiency, at time.Time) (persistence.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res persistence.UpdateResult
	for _, item := range items {
		m, ok := r.meals[item.MealID]
		if !ok {
			continue
		}
		if err := r.write(); err != nil {
			return res, err
		}
		res.Matched++
		if m.IsSufficient != item.IsSufficient {
			res.Modified++
		}
		m.IsSufficient, m.UpdatedAt = item.IsSufficient, at
		r.meals[item.MealID] = m
	}
	return res, nil
}

func (r *memoryRepository) SetComponentNames(_ context.Context, ids []int64, names []string, at time.Time) (persistence.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res persistence.UpdateResult
	for _, id := range ids {
		m, ok := r.meals[id]
		if !ok {
			continue
		}
		if err := r.write(); err != nil {
			return res, err
		}
		res.Matched++
		res.Modified++
		m.ComponentNameList, m.UpdatedAt = slices.Clone(names), at
		r.meals[id] = m
	}
	return res, nil
}

func (r *memoryRepository) ExpireBefore(_ context.Context, cutoff, at time.Time) (persistence.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res persistence.UpdateResult
	sources := status.MealSources(status.MealExpired)
	for id, m := range r.meals {
		if !slices.Contains(sources, m.Status) || !m.MealDate.Before(cutoff) {
			continue
		}
		if err := r.write(); err != nil {
			return res, err
		}
		m.Status, m.UpdatedAt = status.MealExpired, at
		r.meals[id] = m
		res.Matched++
		res.Modified++
	}
	return res, nil
}

func (r *memoryRepository) get(id int64) Meal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meals[id]
}

// recordingInvalidator records deleted cache keys.
type recordingInvalidator struct {
	mu   sync.Mutex
	keys [][]string
	err  error
}

func (c *recordingInvalidator) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, keys)
	return c.err
}
