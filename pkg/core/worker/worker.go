// Package worker runs long-lived loops (consumer supervisors, the cron
// scheduler) inside the fx lifecycle.
package worker

import (
	"context"
	"sync"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/health"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Worker is a background task started and stopped with the application.
type Worker interface {
	Start()
	Stop(ctx context.Context)
}

// RunFunc blocks until ctx is cancelled or the loop fails.
type RunFunc func(ctx context.Context) error

type runner interface {
	Run(ctx context.Context) error
}

// Options control when a worker starts and what a failure does.
type Options struct {
	// WaitReady delays RunFunc until every readiness component is ready.
	WaitReady bool
	// ShutdownOnError stops the whole application with exit code 1 when
	// RunFunc returns an error.
	ShutdownOnError bool
}

type Option func(*Options)

func WithReady() Option {
	return func(o *Options) { o.WaitReady = true }
}

func WithShutdown() Option {
	return func(o *Options) { o.ShutdownOnError = true }
}

type task struct {
	name string
	run  RunFunc
	opts Options

	log        *zap.Logger
	shutdowner fx.Shutdowner
	readiness  health.ReadinessWaiter

	mu       sync.Mutex
	cancel   context.CancelFunc
	finished chan struct{}
	stopOnce sync.Once
}

// New builds a worker around run. Services use Register instead.
func New(name string, log *zap.Logger, run RunFunc, shutdowner fx.Shutdowner, readiness health.ReadinessWaiter, opts ...Option) Worker {
	t := &task{
		name:       name,
		run:        run,
		log:        log.With(zap.String("worker", name)),
		shutdowner: shutdowner,
		readiness:  readiness,
	}
	for _, opt := range opts {
		opt(&t.opts)
	}
	return t
}

func (t *task) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})

	t.mu.Lock()
	t.cancel, t.finished = cancel, finished
	t.mu.Unlock()

	t.log.Info("worker starting", zap.Bool("waitReady", t.opts.WaitReady))
	go func() {
		defer close(finished)
		t.loop(ctx)
	}()
}

func (t *task) loop(ctx context.Context) {
	if t.opts.WaitReady {
		if err := t.readiness.WaitReady(ctx); err != nil {
			t.log.Info("worker cancelled before ready")
			return
		}
	}

	err := t.run(ctx)
	switch {
	case err == nil:
		t.log.Info("worker stopped")
	case t.opts.ShutdownOnError:
		t.log.Error("worker failed, shutting down application", zap.Error(err))
		if serr := t.shutdowner.Shutdown(fx.ExitCode(1)); serr != nil {
			t.log.Error("shutdown request failed", zap.Error(serr))
		}
	default:
		t.log.Error("worker stopped with error", zap.Error(err))
	}
}

// Stop cancels the run context and waits for the loop to return or ctx to
// expire. Only the first call has an effect.
func (t *task) Stop(ctx context.Context) {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		cancel, finished := t.cancel, t.finished
		t.mu.Unlock()
		if cancel == nil {
			return
		}

		t.log.Info("worker stopping")
		cancel()
		select {
		case <-finished:
		case <-ctx.Done():
			t.log.Warn("worker did not stop in time", zap.Error(ctx.Err()))
		}
	})
}

// Register returns an fx constructor that adds a worker for T to the
// "workers" group, tied to the application lifecycle:
//
//	fx.Provide(worker.Register[*consumer.Supervisor]("meal-storage-events-consumer", worker.WithReady(), worker.WithShutdown()))
func Register[T runner](name string, opts ...Option) any {
	return fx.Annotate(
		func(lc fx.Lifecycle, log *zap.Logger, shutdowner fx.Shutdowner, readiness health.ReadinessWaiter, dep T) Worker {
			w := New(name, log, dep.Run, shutdowner, readiness, opts...)
			lc.Append(fx.StartStopHook(w.Start, w.Stop))
			return w
		},
		fx.ResultTags(`group:"workers"`),
	)
}

// InvokeWorkers forces construction of every worker in the group.
func InvokeWorkers() fx.Option {
	return fx.Invoke(fx.Annotate(func([]Worker) {}, fx.ParamTags(`group:"workers"`)))
}
