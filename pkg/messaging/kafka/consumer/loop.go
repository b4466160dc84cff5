// Package consumer runs the per-topic dispatch loop: read a message, decode
// its envelope, route by event_type, store the offset when done.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/logger"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/envelope"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/tracing"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/observability"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// State of a Loop. A loop moves forward only.
type State int32

const (
	StateCreated State = iota
	StateStarted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// kafkaConsumer is the part of the broker consumer the loop drives.
type kafkaConsumer interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	StoreMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
	Commit() ([]kafka.TopicPartition, error)
	Close() error
}

// Loop consumes one topic for one group. It returns on ctx cancel (nil) or
// on the first handler failure under the stop policy.
type Loop struct {
	name      string
	conf      config.ConsumerConfig
	consumer  kafkaConsumer
	router    *Router
	dlq       DLQHandler
	tracer    tracing.MessageTracer
	metrics   *Metrics
	log       *zap.Logger
	throttler *logger.LogThrottler

	state atomic.Int32
}

// LoopOption customizes a Loop.
type LoopOption func(*Loop)

// WithDLQ forwards messages skipped after exhausted retries.
func WithDLQ(dlq DLQHandler) LoopOption {
	return func(l *Loop) { l.dlq = dlq }
}

func WithTracer(tracer tracing.MessageTracer) LoopOption {
	return func(l *Loop) { l.tracer = tracer }
}

func WithMetrics(m *Metrics) LoopOption {
	return func(l *Loop) { l.metrics = m }
}

// NewLoop builds a loop over an already subscribed consumer. conf must be resolved.
func NewLoop(conf config.ConsumerConfig, consumer kafkaConsumer, router *Router, log *zap.Logger, opts ...LoopOption) *Loop {
	l := &Loop{
		name:     conf.Name,
		conf:     conf,
		consumer: consumer,
		router:   router,
		log:      log,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.dlq == nil {
		l.dlq = newNoopDLQHandler(log)
	}
	if l.tracer == nil {
		l.tracer = tracing.NewMessageTracer(nil)
	}
	if l.metrics == nil {
		l.metrics = noopMetrics()
	}
	if l.conf.PollTimeout <= 0 {
		l.conf.PollTimeout = 500 * time.Millisecond
	}
	l.throttler = logger.NewLogThrottler(log, 0)
	return l
}

func (l *Loop) State() State {
	return State(l.state.Load())
}

// Run reads until ctx is cancelled or a handler fails. Offsets are committed
// and the consumer closed on every exit path.
func (l *Loop) Run(ctx context.Context) error {
	if !l.state.CompareAndSwap(int32(StateCreated), int32(StateStarted)) {
		return ErrAlreadyStarted
	}
	defer l.stop()

	l.log.Info("consumer loop started", zap.Strings("event_types", l.router.EventTypes()))

	for {
		if ctx.Err() != nil {
			return nil
		}

		msg, err := l.consumer.ReadMessage(l.conf.PollTimeout)
		if err != nil {
			if err := l.handleReadError(ctx, err); err != nil {
				return err
			}
			continue
		}

		if err := l.process(ctx, msg); err != nil {
			return err
		}
	}
}

func (l *Loop) handleReadError(ctx context.Context, err error) error {
	rerr := classifyReaderError(err)
	switch {
	case rerr.isTimeout():
		return nil
	case rerr.terminates():
		l.log.Error("consumer loop terminating on read error", zap.Error(rerr))
		return rerr
	default:
		l.throttler.Warn(rerr.key, "failed to read message", zap.Error(rerr))
		sleep(ctx, time.Second)
		return nil
	}
}

func (l *Loop) process(ctx context.Context, msg *kafka.Message) error {
	fields := messageFields(msg)

	env, err := envelope.Decode(msg.Value)
	if err != nil {
		l.log.Warn("skipping malformed message", append(fields, zap.Error(err))...)
		l.metrics.recordSkipped(ctx, l.name, "", "malformed")
		l.storeOffset(msg)
		return nil
	}
	fields = append(fields, zap.String("event_type", env.EventType))

	if !l.router.Routes(env.EventType) {
		l.log.Info("no handler for event type, dropping", fields...)
		l.metrics.recordSkipped(ctx, l.name, env.EventType, "unrouted")
		l.storeOffset(msg)
		return nil
	}

	spanCtx, span := l.tracer.StartConsumerSpan(ctx, msg, env.EventType)
	defer span.End()
	handlerLog := l.log.With(fields...)
	if traceID, spanID := observability.SpanIDs(spanCtx); traceID != "" {
		handlerLog = handlerLog.With(zap.String("trace_id", traceID), zap.String("span_id", spanID))
	}
	handlerCtx := logger.WithLogger(context.WithoutCancel(spanCtx), handlerLog)

	err = l.dispatch(ctx, handlerCtx, env, fields)
	return l.complete(ctx, msg, env, span, fields, err)
}

// dispatch runs the handler once under the stop policy, or with retries
// under retry-then-skip. The handler never sees ctx cancellation; only the
// waits between retries do.
func (l *Loop) dispatch(ctx, handlerCtx context.Context, env envelope.Envelope, fields []zap.Field) error {
	if l.conf.FailurePolicy != config.FailurePolicyRetryThenSkip {
		return invoke(handlerCtx, l.router, env)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.conf.InitialBackoff
	b.MaxInterval = l.conf.MaxBackoff
	b.MaxElapsedTime = 0
	attempts := max(l.conf.MaxRetryAttempts, 1)
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := invoke(handlerCtx, l.router, env)
		var panicErr *PanicError
		if errors.Is(err, ErrSkipMessage) || errors.As(err, &panicErr) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		l.log.Warn("handler failed, retrying", append(fields,
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("backoff", wait),
			zap.Error(err))...)
	})
}

func (l *Loop) complete(ctx context.Context, msg *kafka.Message, env envelope.Envelope, span trace.Span, fields []zap.Field, err error) error {
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
		l.metrics.recordProcessed(ctx, l.name, env.EventType)
		l.storeOffset(msg)
		return nil

	case errors.Is(err, ErrSkipMessage):
		span.SetStatus(codes.Ok, "message skipped")
		l.log.Warn("skipping message", append(fields, zap.Error(err))...)
		l.metrics.recordSkipped(ctx, l.name, env.EventType, "payload")
		l.storeOffset(msg)
		return nil

	case ctx.Err() != nil && l.conf.FailurePolicy == config.FailurePolicyRetryThenSkip:
		// Shutdown during retries: leave the offset for redelivery.
		l.log.Info("stopped while retrying, message will be redelivered", fields...)
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	l.metrics.recordFailed(ctx, l.name, env.EventType)
	logFields := append(fields, zap.Error(err))
	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		logFields = append(logFields, zap.ByteString("stack", panicErr.Stack))
	}

	if l.conf.FailurePolicy == config.FailurePolicyRetryThenSkip {
		l.log.Error("handler failed after retries, skipping message", logFields...)
		l.dlq.SendToDLQ(ctx, msg, err)
		l.metrics.recordSkipped(ctx, l.name, env.EventType, "retries_exhausted")
		l.storeOffset(msg)
		return nil
	}

	l.log.Error("handler failed, stopping consumer loop", logFields...)
	return &HandlerError{
		Topic:     topicOf(msg),
		Partition: msg.TopicPartition.Partition,
		Offset:    int64(msg.TopicPartition.Offset),
		EventType: env.EventType,
		Err:       err,
	}
}

func invoke(ctx context.Context, router *Router, env envelope.Envelope) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Panic: rec, Stack: debug.Stack()}
		}
	}()
	return router.Dispatch(ctx, env)
}

func (l *Loop) storeOffset(msg *kafka.Message) {
	if _, err := l.consumer.StoreMessage(msg); err != nil {
		l.log.Error("failed to store offset", append(messageFields(msg), zap.Error(err))...)
	}
}

func (l *Loop) stop() {
	l.state.Store(int32(StateStopped))

	if _, err := l.consumer.Commit(); err != nil {
		var kafkaErr kafka.Error
		if !errors.As(err, &kafkaErr) || kafkaErr.Code() != kafka.ErrNoOffset {
			l.log.Warn("failed to commit offsets on stop", zap.Error(err))
		}
	} else {
		l.log.Debug("final commit successful")
	}

	if err := l.consumer.Close(); err != nil {
		l.log.Error("failed to close kafka consumer", zap.Error(err))
	}
	l.log.Info("consumer loop stopped")
}

func messageFields(msg *kafka.Message) []zap.Field {
	return []zap.Field{
		zap.String("topic", topicOf(msg)),
		zap.Int32("partition", msg.TopicPartition.Partition),
		zap.Int64("offset", int64(msg.TopicPartition.Offset)),
		zap.ByteString("key", msg.Key),
	}
}

func topicOf(msg *kafka.Message) string {
	if msg.TopicPartition.Topic == nil {
		return ""
	}
	return *msg.TopicPartition.Topic
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
