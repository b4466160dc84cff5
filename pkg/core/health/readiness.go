package health

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

type tracker struct {
	log *zap.Logger

	mu         sync.Mutex
	registered map[string]time.Time
	readyAt    map[string]time.Time
	sealed     bool

	ready     chan struct{}
	readyOnce sync.Once
}

func newTracker(log *zap.Logger) *tracker {
	return &tracker{
		log:        log.Named("readiness"),
		registered: make(map[string]time.Time),
		readyAt:    make(map[string]time.Time),
		ready:      make(chan struct{}),
	}
}

func (t *tracker) AddComponent(name string) func() {
	if name == "" {
		panic("readiness: empty component name")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.registered[name]; ok {
		t.log.Warn("component registered twice", zap.String("component", name))
	} else {
		t.registered[name] = time.Now()
	}
	return func() { t.markReady(name) }
}

func (t *tracker) markReady(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	since, ok := t.registered[name]
	if !ok {
		panic(fmt.Sprintf("readiness: unknown component %q", name))
	}
	if _, done := t.readyAt[name]; done {
		return
	}
	now := time.Now()
	t.readyAt[name] = now
	t.log.Info("component ready", zap.String("component", name), zap.Duration("after", now.Sub(since)))
	t.releaseLocked()
}

// seal ends registration. Before it, a component added late in the fx graph
// could be missed, so all-ready is not reported.
func (t *tracker) seal() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sealed = true
	if p := t.pendingLocked(); len(p) > 0 {
		t.log.Info("waiting for components", zap.Strings("pending", p))
	}
	t.releaseLocked()
}

func (t *tracker) pendingLocked() []string {
	var pending []string
	for name := range t.registered {
		if _, ok := t.readyAt[name]; !ok {
			pending = append(pending, name)
		}
	}
	slices.Sort(pending)
	return pending
}

func (t *tracker) releaseLocked() {
	if !t.sealed || len(t.readyAt) < len(t.registered) {
		return
	}
	t.readyOnce.Do(func() {
		close(t.ready)
		t.log.Info("all components ready", zap.Int("components", len(t.registered)))
	})
}

// Pending lists the registered components not yet ready, sorted.
func (t *tracker) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pendingLocked()
}

func (t *tracker) IsReady() bool {
	select {
	case <-t.ready:
		return true
	default:
		return false
	}
}

func (t *tracker) WaitReady(ctx context.Context) error {
	select {
	case <-t.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
