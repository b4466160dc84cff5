package consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/config"
	"go.uber.org/zap"
)

// LoopFactory creates a fresh loop with a new consumer in the same group.
type LoopFactory func(ctx context.Context) (*Loop, error)

// Supervisor restarts a terminated loop after a backoff. The failed message
// is redelivered to the new loop because its offset was never stored.
type Supervisor struct {
	name    string
	factory LoopFactory
	restart config.RestartConfig
	metrics *Metrics
	log     *zap.Logger
}

func NewSupervisor(name string, factory LoopFactory, restart config.RestartConfig, metrics *Metrics, log *zap.Logger) *Supervisor {
	if metrics == nil {
		metrics = noopMetrics()
	}
	return &Supervisor{name: name, factory: factory, restart: restart, metrics: metrics, log: log}
}

// Run blocks until ctx is cancelled, restarts are disabled, or the restart
// limit is reached. MaxRestarts 0 means unlimited.
func (s *Supervisor) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.restart.InitialBackoff
	b.MaxInterval = s.restart.MaxBackoff
	b.MaxElapsedTime = 0
	b.Reset()

	restarts := 0
	for {
		started := time.Now()
		err := s.runOnce(ctx)
		if ctx.Err() != nil || err == nil {
			return nil
		}

		if !s.restart.IsEnabled() {
			return err
		}
		if s.restart.MaxRestarts > 0 && restarts >= s.restart.MaxRestarts {
			return fmt.Errorf("consumer %s: giving up after %d restarts: %w", s.name, restarts, err)
		}
		// A loop that ran healthy for a while starts the backoff over.
		if b.MaxInterval > 0 && time.Since(started) > b.MaxInterval {
			b.Reset()
		}

		wait := b.NextBackOff()
		restarts++
		s.metrics.recordRestart(ctx, s.name)
		s.log.Error("consumer loop terminated, restarting",
			zap.Int("restart", restarts),
			zap.Duration("backoff", wait),
			zap.Error(err))
		sleep(ctx, wait)
	}
}

func (s *Supervisor) runOnce(ctx context.Context) error {
	loop, err := s.factory(ctx)
	if err != nil {
		return fmt.Errorf("failed to create consumer loop: %w", err)
	}
	return loop.Run(ctx)
}
