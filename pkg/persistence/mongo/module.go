package mongo

import (
	"context"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/health"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ModuleOption configures NewMongoModule.
type ModuleOption func(*moduleOptions)

type moduleOptions struct {
	config *Config
}

// WithMongoConfig provides a static Config instead of the "mongo" viper section.
func WithMongoConfig(cfg Config) ModuleOption {
	return func(o *moduleOptions) {
		o.config = &cfg
	}
}

// NewMongoModule provides Mongo, Admin and a persistence.TxManager.
func NewMongoModule(opts ...ModuleOption) fx.Option {
	o := &moduleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	configProvider := fx.Provide(newConfig)
	if o.config != nil {
		cfg := *o.config
		applyDefaults(&cfg)
		configProvider = fx.Supply(cfg)
	}

	return fx.Options(
		configProvider,
		fx.Provide(
			provideMongo,
			newTxManager,
		),
	)
}

func provideMongo(lc fx.Lifecycle, log *zap.Logger, app config.AppConfig, conf Config, readiness health.ComponentManager) (Mongo, Admin, error) {
	s, err := dial(conf, app.ServiceName, log.Named("mongo"))
	if err != nil {
		return nil, nil, err
	}

	markReady := readiness.AddComponent("mongo")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := s.ping(ctx); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: s.close,
	})
	return s, s, nil
}
