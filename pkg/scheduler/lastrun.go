package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	cache "github.com/cuongct220020/convenient-shopping-system-sub002/pkg/cache/redis"
	"go.uber.org/zap"
)

const lastRunTTL = 30 * 24 * time.Hour

// LastRun is the latest successful run of a job. It lives in the shared cache
// so every replica and the sweep CLI see the same value.
type LastRun struct {
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
}

// RunStore keeps LastRun entries. cache.Cache satisfies it.
type RunStore interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

func lastRunKey(job string) string {
	return cache.Key("job-last-run", job)
}

func (s *Scheduler) recordRun(ctx context.Context, name string, took time.Duration) {
	if s.store == nil {
		return
	}
	run := LastRun{FinishedAt: time.Now().UTC(), Duration: took}
	if err := s.store.Set(ctx, lastRunKey(name), run, lastRunTTL); err != nil {
		s.log.Warn("failed to record job run", zap.String("job", name), zap.Error(err))
	}
}

// LastRun returns the latest recorded successful run of name. ok is false
// when nothing is recorded or the scheduler has no RunStore.
func (s *Scheduler) LastRun(ctx context.Context, name string) (run LastRun, ok bool, err error) {
	if _, known := s.jobs[name]; !known {
		return LastRun{}, false, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if s.store == nil {
		return LastRun{}, false, nil
	}
	err = s.store.Get(ctx, lastRunKey(name), &run)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		return LastRun{}, false, nil
	case err != nil:
		return LastRun{}, false, fmt.Errorf("last run of %s: %w", name, err)
	}
	return run, true, nil
}
