package logger

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/config"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type moduleOptions struct {
	static *Config
}

// ModuleOption configures the logging module.
type ModuleOption func(*moduleOptions)

// WithLoggerConfig uses a static Config instead of the "logger" viper sub-tree.
func WithLoggerConfig(cfg Config) ModuleOption {
	return func(o *moduleOptions) {
		o.static = &cfg
	}
}

// NewZapLoggingModule provides a configured *zap.Logger and routes fx events through it.
func NewZapLoggingModule(opts ...ModuleOption) fx.Option {
	o := &moduleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	configOption := fx.Provide(newConfig)
	if o.static != nil {
		configOption = fx.Supply(*o.static)
	}

	return fx.Options(
		configOption,
		fx.Provide(provideLogger),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)
}

func provideLogger(lc fx.Lifecycle, conf Config, app config.AppConfig) (*zap.Logger, error) {
	log, err := build(conf,
		zap.String("service", app.ServiceName),
		zap.String("version", app.ServiceVersion),
		zap.String("env", app.Environment),
	)
	if err != nil {
		return nil, err
	}
	log.Debug("logger ready", zap.Stringer("level", conf.Level), zap.Bool("development", conf.Development))

	lc.Append(fx.StopHook(func() error {
		return syncErr(log.Sync())
	}))
	return log, nil
}
