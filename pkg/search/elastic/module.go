package elastic

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/health"
	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ModuleOption configures NewElasticModule.
type ModuleOption func(*moduleOptions)

type moduleOptions struct {
	config    *Config
	transport http.RoundTripper
}

// WithElasticConfig provides a static Config instead of the viper section.
func WithElasticConfig(cfg Config) ModuleOption {
	return func(o *moduleOptions) {
		o.config = &cfg
	}
}

// WithTransport replaces the HTTP transport of the client.
func WithTransport(rt http.RoundTripper) ModuleOption {
	return func(o *moduleOptions) {
		o.transport = rt
	}
}

// NewElasticModule provides an *elasticsearch.Client and its Config.
func NewElasticModule(opts ...ModuleOption) fx.Option {
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
		fx.Provide(func(lc fx.Lifecycle, log *zap.Logger, conf Config, readiness health.ComponentManager) (*elasticsearch.Client, error) {
			return provideClient(lc, log, conf, readiness, o.transport)
		}),
	)
}

// NewClient builds a client from conf. transport may be nil.
func NewClient(conf Config, transport http.RoundTripper) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  conf.Addresses,
		Username:   conf.Username,
		Password:   conf.Password,
		APIKey:     conf.APIKey,
		MaxRetries: conf.MaxRetries,
		Transport:  transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return client, nil
}

func provideClient(lc fx.Lifecycle, log *zap.Logger, conf Config, readiness health.ComponentManager, transport http.RoundTripper) (*elasticsearch.Client, error) {
	log = log.With(zap.String("component", "elasticsearch"))
	client, err := NewClient(conf, transport)
	if err != nil {
		return nil, err
	}

	markReady := readiness.AddComponent("elasticsearch")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			res, err := client.Ping(client.Ping.WithContext(ctx))
			if err != nil {
				return fmt.Errorf("elasticsearch ping failed: %w", err)
			}
			defer closeBody(res)
			if res.IsError() {
				return fmt.Errorf("elasticsearch ping failed with status %d", res.StatusCode)
			}
			log.Info("elasticsearch connected", zap.Strings("addresses", conf.Addresses))
			markReady()
			return nil
		},
	})
	return client, nil
}
