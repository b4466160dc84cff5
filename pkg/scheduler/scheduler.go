// Package scheduler runs the periodic expiry and reconciliation jobs on
// 5-field cron schedules (minute hour day-of-month month day-of-week).
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/logger"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// ErrUnknownJob is returned by RunOnce for a name no job is registered under.
var ErrUnknownJob = errors.New("unknown job")

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job is one periodic task. Run must be idempotent: a re-run after a
// successful run changes nothing, and a failed run is retried on the next tick.
type Job interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
}

// EntryInfo describes a scheduled job.
type EntryInfo struct {
	Name     string
	Schedule string
	Next     time.Time
}

type registered struct {
	job      Job
	schedule string
	timeout  time.Duration
	enabled  bool
	entryID  cron.EntryID
}

// Scheduler owns a cron instance and the jobs registered on it.
type Scheduler struct {
	cron    *cron.Cron
	conf    Config
	log     *zap.Logger
	jobs    map[string]*registered
	runs    metric.Int64Counter
	elapsed metric.Float64Histogram
	store   RunStore

	mu      sync.Mutex
	started bool
}

// New registers jobs with their effective schedules. Disabled jobs are kept
// for RunOnce but never scheduled. mp may be nil.
func New(conf Config, log *zap.Logger, mp metric.MeterProvider, jobs ...Job) (*Scheduler, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter("scheduler")
	runs, err := meter.Int64Counter("scheduler.job.runs", metric.WithDescription("Job runs by outcome"))
	if err != nil {
		return nil, err
	}
	elapsed, err := meter.Float64Histogram("scheduler.job.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	cronLog := cronLogger{log: log.Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(conf.location()),
			cron.WithParser(parser),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.SkipIfStillRunning(cronLog)),
		),
		conf:    conf,
		log:     log,
		jobs:    make(map[string]*registered, len(jobs)),
		runs:    runs,
		elapsed: elapsed,
	}

	for _, job := range jobs {
		if err := s.register(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) register(job Job) error {
	name := job.Name()
	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("scheduler: duplicate job %s", name)
	}

	override := s.conf.Jobs[name]
	r := &registered{
		job:      job,
		schedule: job.Schedule(),
		timeout:  s.conf.RunTimeout,
		enabled:  override.IsEnabled(),
	}
	if override.Schedule != "" {
		r.schedule = override.Schedule
	}
	if override.Timeout > 0 {
		r.timeout = override.Timeout
	}
	s.jobs[name] = r

	if !r.enabled {
		s.log.Info("job disabled", zap.String("job", name))
		return nil
	}

	id, err := s.cron.AddFunc(r.schedule, func() {
		_ = s.run(context.Background(), r)
	})
	if err != nil {
		return fmt.Errorf("scheduler job %s: invalid schedule %q: %w", name, r.schedule, err)
	}
	r.entryID = id
	s.log.Info("job scheduled", zap.String("job", name), zap.String("schedule", r.schedule))
	return nil
}

// Start begins firing schedules. Calling it twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops firing schedules and waits for running jobs or ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out with jobs still running")
		return ctx.Err()
	}
}

// RunOnce runs the named job now, whether or not it is enabled.
func (s *Scheduler) RunOnce(ctx context.Context, name string) error {
	r, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.run(ctx, r)
}

// Entries lists the scheduled jobs ordered by name.
func (s *Scheduler) Entries() []EntryInfo {
	var out []EntryInfo
	for name, r := range s.jobs {
		if !r.enabled {
			continue
		}
		out = append(out, EntryInfo{Name: name, Schedule: r.schedule, Next: s.cron.Entry(r.entryID).Next})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// JobNames lists every registered job, disabled ones included.
func (s *Scheduler) JobNames() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) run(ctx context.Context, r *registered) (err error) {
	name := r.job.Name()
	log := s.log.With(zap.String("job", name))

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	ctx = logger.WithLogger(ctx, log)

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job %s panicked: %v", name, p)
			log.Error("job panicked", zap.Any("panic", p), zap.ByteString("stack", debug.Stack()))
		}

		outcome := "success"
		took := time.Since(start)
		if err != nil {
			outcome = "failure"
			log.Error("job failed", zap.Duration("duration", took), zap.Error(err))
		} else {
			log.Info("job finished", zap.Duration("duration", took))
			s.recordRun(context.WithoutCancel(ctx), name, took)
		}
		attrs := metric.WithAttributes(attribute.String("job", name), attribute.String("outcome", outcome))
		s.runs.Add(context.WithoutCancel(ctx), 1, attrs)
		s.elapsed.Record(context.WithoutCancel(ctx), took.Seconds(), attrs)
	}()

	log.Debug("job started")
	return r.job.Run(ctx)
}

// cronLogger routes robfig/cron logs through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
