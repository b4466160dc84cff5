package scheduler

import (
	cache "github.com/cuongct220020/convenient-shopping-system-sub002/pkg/cache/redis"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// AsJob annotates a constructor so its Job joins the scheduler.
//
//	fx.Provide(scheduler.AsJob(meal.NewExpiryJob))
func AsJob(constructor any) any {
	return fx.Annotate(constructor, fx.As(new(Job)), fx.ResultTags(`group:"jobs"`))
}

type schedulerParams struct {
	fx.In

	Conf          Config
	Log           *zap.Logger
	MeterProvider metric.MeterProvider `optional:"true"`
	Cache         cache.Cache          `optional:"true"`
	Jobs          []Job                `group:"jobs"`
}

// NewSchedulerModule provides a *Scheduler over every Job in the "jobs"
// group. With autostart the scheduler is built eagerly and the schedules fire
// from OnStart until OnStop; without it the scheduler only serves RunOnce, as
// the sweep CLI uses it.
func NewSchedulerModule(autostart bool) fx.Option {
	provide := fx.Provide(newConfig, provideScheduler)
	if !autostart {
		return provide
	}
	return fx.Options(provide, fx.Invoke(startScheduler))
}

func provideScheduler(p schedulerParams) (*Scheduler, error) {
	s, err := New(p.Conf, p.Log.With(zap.String("component", "scheduler")), p.MeterProvider, p.Jobs...)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		s.store = p.Cache
	}
	return s, nil
}

func startScheduler(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.StartStopHook(s.Start, s.Stop))
}
