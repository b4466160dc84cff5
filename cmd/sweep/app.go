package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/meal"
	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/shopping"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/modules"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/observability"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/scheduler"
	"go.uber.org/fx"
)

const stopTimeout = time.Minute

// storeModules are the job providers per service. Only the shopping jobs
// publish, so only they pull in the broker.
var storeModules = map[string]func() fx.Option{
	"meal": func() fx.Option {
		return meal.NewStoreModule()
	},
	"shopping": func() fx.Option {
		return fx.Options(modules.NewMessagingModule(), shopping.NewStoreModule())
	},
}

func newApp(flags *globalFlags, populate ...any) (*fx.App, error) {
	storeModule, ok := storeModules[flags.service]
	if !ok {
		return nil, fmt.Errorf("unknown service %q, want meal or shopping", flags.service)
	}

	var coreOpts []core.Option
	if flags.configFile != "" {
		coreOpts = append(coreOpts, core.WithConfigFile(flags.configFile))
	}

	return fx.New(
		modules.NewCoreModule(coreOpts...),
		modules.NewObservabilityModule(observability.WithoutMetrics()),
		modules.NewPersistenceModule(),
		modules.NewCacheModule(),
		scheduler.NewSchedulerModule(false),
		storeModule(),
		fx.Populate(populate...),
	), nil
}

func withApp(ctx context.Context, flags *globalFlags, fn func(ctx context.Context, s *scheduler.Scheduler) error) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var s *scheduler.Scheduler
	app, err := newApp(flags, &s)
	if err != nil {
		return err
	}
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if stopErr := app.Stop(stopCtx); stopErr != nil && err == nil {
			err = fmt.Errorf("failed to stop: %w", stopErr)
		}
	}()

	return fn(ctx, s)
}

func runJob(ctx context.Context, flags *globalFlags, name string) error {
	return withApp(ctx, flags, func(ctx context.Context, s *scheduler.Scheduler) error {
		return s.RunOnce(ctx, name)
	})
}

type jobStatus struct {
	name    string
	lastRun scheduler.LastRun
	ran     bool
}

func listJobs(ctx context.Context, flags *globalFlags) ([]jobStatus, error) {
	var jobs []jobStatus
	err := withApp(ctx, flags, func(ctx context.Context, s *scheduler.Scheduler) error {
		for _, name := range s.JobNames() {
			run, ok, err := s.LastRun(ctx, name)
			if err != nil {
				return err
			}
			jobs = append(jobs, jobStatus{name: name, lastRun: run, ran: ok})
		}
		return nil
	})
	return jobs, err
}
