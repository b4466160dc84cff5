package shopping

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/status"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

var errStore = errors.New("store unavailable")

type memoryPlans struct {
	mu    sync.Mutex
	plans map[int64]ShoppingPlan
	err   error
}

func newMemoryPlans(plans ...ShoppingPlan) *memoryPlans {
	r := &memoryPlans{plans: map[int64]ShoppingPlan{}}
	for _, p := range plans {
		r.plans[p.ID] = p
	}
	return r
}

func (r *memoryPlans) Snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := maps.Clone(r.plans)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.plans = saved
	}
}

func (r *memoryPlans) ExpireBefore(_ context.Context, now time.Time) (persistence.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res persistence.UpdateResult
	if r.err != nil {
		return res, r.err
	}
	sources := status.PlanSources(status.PlanExpired)
	for id, p := range r.plans {
		if !slices.Contains(sources, p.Status) || !p.Deadline.Before(now) {
			continue
		}
		p.Status, p.UpdatedAt = status.PlanExpired, now
		r.plans[id] = p
		res.Matched++
		res.Modified++
	}
	return res, nil
}

func (r *memoryPlans) FindByID(_ context.Context, id int64) (*ShoppingPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, persistence.ErrEntityNotFound
	}
	return &p, nil
}

type memoryUnits struct {
	mu    sync.Mutex
	units map[int64]StorageUnit
	err   error
}

func newMemoryUnits(units ...StorageUnit) *memoryUnits {
	r := &memoryUnits{units: map[int64]StorageUnit{}}
	for _, u := range units {
		r.units[u.ID] = u
	}
	return r
}

func (r *memoryUnits) Snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := maps.Clone(r.units)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.units = saved
	}
}

func (r *memoryUnits) Release(_ context.Context, ids []int64, at time.Time) (persistence.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res persistence.UpdateResult
	sources := status.UnitSources(status.UnitAvailable)
	for _, id := range ids {
		u, ok := r.units[id]
		if !ok || !slices.Contains(sources, u.Status) {
			continue
		}
		u.Status, u.UpdatedAt = status.UnitAvailable, at
		r.units[id] = u
		res.Matched++
		res.Modified++
	}
	if r.err != nil {
		return res, r.err
	}
	return res, nil
}

func (r *memoryUnits) ExpireBefore(_ context.Context, now time.Time) ([]ExpiredUnits, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sources := status.UnitSources(status.UnitExpired)
	var expired []StorageUnit
	for id, u := range r.units {
		if !slices.Contains(sources, u.Status) || !u.ExpirationDate.Before(now) {
			continue
		}
		u.Status, u.UpdatedAt = status.UnitExpired, now
		r.units[id] = u
		expired = append(expired, u)
	}
	if r.err != nil {
		return nil, r.err
	}
	return groupUnits(expired), nil
}

func (r *memoryUnits) get(id int64) StorageUnit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.units[id]
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishBestEffort(ctx context.Context, topic, key, eventType string, payload any) {
	m.Called(ctx, topic, key, eventType, payload)
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
