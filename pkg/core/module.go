package core

import (
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/health"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/logger"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/worker"
	"go.uber.org/fx"
)

// Consumers commit their transaction before the offset, so shutdown waits
// long enough for an in-flight batch to drain.
const lifecycleTimeout = 5 * time.Minute

type options struct {
	app        *config.AppConfig
	logger     *logger.Config
	viper      []config.ViperOption
	skipDotEnv bool
}

// Option configures NewCoreModule.
type Option func(*options)

// WithAppConfig replaces the APP_* environment lookup.
func WithAppConfig(cfg config.AppConfig) Option {
	return func(o *options) { o.app = &cfg }
}

// WithLoggerConfig replaces the logger section of the config file.
func WithLoggerConfig(cfg logger.Config) Option {
	return func(o *options) { o.logger = &cfg }
}

// WithConfigFile loads path instead of CONFIG_FILE. Repeat to add overlays.
func WithConfigFile(path string) Option {
	return func(o *options) { o.viper = append(o.viper, config.WithConfigPath(path)) }
}

// WithoutEnvFile skips .env.
func WithoutEnvFile() Option {
	return func(o *options) { o.skipDotEnv = true }
}

// WithoutConfigFile reads configuration from the environment only.
func WithoutConfigFile() Option {
	return func(o *options) { o.viper = append(o.viper, config.WithoutConfigFile()) }
}

// NewCoreModule wires configuration, the zap logger, readiness and the
// "workers" group. Every service and the sweep CLI start from it.
func NewCoreModule(opts ...Option) fx.Option {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	parts := []fx.Option{
		fx.StartTimeout(lifecycleTimeout),
		fx.StopTimeout(lifecycleTimeout),
	}
	// .env is loaded while the module is built, so it must precede the
	// CONFIG_FILE lookup in NewViperModule.
	if !o.skipDotEnv {
		parts = append(parts, config.NewDotEnvModule())
	}
	parts = append(parts,
		config.NewViperModule(o.viper...),
		health.NewReadinessModule(),
		worker.InvokeWorkers(),
	)

	if o.app != nil {
		parts = append(parts, config.NewAppConfigModule(config.WithAppConfig(*o.app)))
	} else {
		parts = append(parts, config.NewAppConfigModule())
	}

	if o.logger != nil {
		parts = append(parts, logger.NewZapLoggingModule(logger.WithLoggerConfig(*o.logger)))
	} else {
		parts = append(parts, logger.NewZapLoggingModule())
	}

	return fx.Options(parts...)
}
