// Package logger builds the process zap logger and carries per-message
// loggers through context.Context.
package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

// FromContext returns the logger stored by WithLogger, or zap.L().
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.L()
}

// WithLogger stores log in ctx. Consumers attach topic, partition and offset
// fields so handlers log with the message they are processing.
func WithLogger(ctx context.Context, log *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, log)
}

// build creates the logger described by conf and installs it as zap.L().
func build(conf Config, fields ...zap.Field) (*zap.Logger, error) {
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	zc := zap.NewProductionConfig()
	if conf.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(conf.Level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.TimeKey = "ts"
	if len(conf.OutputPaths) > 0 {
		zc.OutputPaths = conf.OutputPaths
	}
	if len(conf.ErrorOutputPaths) > 0 {
		zc.ErrorOutputPaths = conf.ErrorOutputPaths
	}

	log, err := zc.Build(zap.AddStacktrace(conf.StacktraceLevel), zap.Fields(fields...))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	zap.ReplaceGlobals(log)
	return log, nil
}

// syncErr drops the EINVAL/ENOTTY returned when syncing stderr or a terminal.
func syncErr(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) && (errors.Is(pe.Err, syscall.EINVAL) || errors.Is(pe.Err, syscall.ENOTTY)) {
		return nil
	}
	return err
}
