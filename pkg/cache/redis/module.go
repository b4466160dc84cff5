package redis

import (
	"context"
	"fmt"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/health"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ModuleOption configures NewRedisModule.
type ModuleOption func(*moduleOptions)

type moduleOptions struct {
	config *Config
}

// WithRedisConfig provides a static Config instead of the "redis" viper section.
func WithRedisConfig(cfg Config) ModuleOption {
	return func(o *moduleOptions) {
		o.config = &cfg
	}
}

// NewRedisModule provides Cache and Invalidator backed by one go-redis client.
func NewRedisModule(opts ...ModuleOption) fx.Option {
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
			provideCache,
			func(c Cache) Invalidator { return c },
		),
	)
}

func provideCache(lc fx.Lifecycle, log *zap.Logger, appConf config.AppConfig, conf Config, readiness health.ComponentManager) Cache {
	log = log.With(zap.String("component", "redis"))
	client := goredis.NewClient(&goredis.Options{
		Addr:         conf.Addr,
		Username:     conf.Username,
		Password:     conf.Password,
		DB:           conf.DB,
		ClientName:   appConf.ServiceName,
		DialTimeout:  conf.DialTimeout,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		PoolSize:     conf.PoolSize,
	})
	cache := New(client, conf, log)

	markReady := readiness.AddComponent("redis")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := cache.Ping(ctx); err != nil {
				return fmt.Errorf("redis ping failed: %w", err)
			}
			log.Info("redis connected", zap.String("addr", conf.Addr), zap.Int("db", conf.DB))
			markReady()
			return nil
		},
		OnStop: func(context.Context) error {
			log.Info("closing redis client")
			return client.Close()
		},
	})

	return cache
}
