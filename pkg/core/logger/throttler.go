package logger

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultThrottleInterval = 5 * time.Minute

// LogThrottler rate-limits repetitive logs per key. A reader retrying against a
// missing topic logs one WARN per interval, the rest go to DEBUG.
type LogThrottler struct {
	log      *zap.Logger
	limiters sync.Map // map[string]*throttleState
	interval time.Duration
}

type throttleState struct {
	limiter    *rate.Limiter
	suppressed atomic.Int64
}

// NewLogThrottler creates a LogThrottler; a zero interval means 5 minutes.
func NewLogThrottler(log *zap.Logger, interval time.Duration) *LogThrottler {
	if interval == 0 {
		interval = defaultThrottleInterval
	}
	return &LogThrottler{
		log:      log,
		interval: interval,
	}
}

// Warn logs as WARN once per interval per key, DEBUG otherwise.
func (t *LogThrottler) Warn(key string, msg string, fields ...zap.Field) {
	t.write(key, msg, t.log.Warn, fields)
}

// Error logs as ERROR once per interval per key, DEBUG otherwise.
func (t *LogThrottler) Error(key string, msg string, fields ...zap.Field) {
	t.write(key, msg, t.log.Error, fields)
}

func (t *LogThrottler) write(key, msg string, emit func(string, ...zap.Field), fields []zap.Field) {
	state := t.state(key)
	if !state.limiter.Allow() {
		state.suppressed.Add(1)
		t.log.Debug(msg, fields...)
		return
	}
	if n := state.suppressed.Swap(0); n > 0 {
		fields = append(fields, zap.Int64("suppressed", n))
	}
	emit(msg, fields...)
}

func (t *LogThrottler) state(key string) *throttleState {
	if s, ok := t.limiters.Load(key); ok {
		return s.(*throttleState)
	}

	s := &throttleState{limiter: rate.NewLimiter(rate.Every(t.interval), 1)}
	actual, _ := t.limiters.LoadOrStore(key, s)
	return actual.(*throttleState)
}
