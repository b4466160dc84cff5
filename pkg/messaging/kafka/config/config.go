package config

import (
	"fmt"

	appconfig "github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/config"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Option configures NewKafkaConfigModule.
type Option func(*options)

type options struct {
	static *Config
}

// WithKafkaConfig supplies cfg instead of reading viper. Defaults are applied
// and the result validated at startup.
func WithKafkaConfig(cfg Config) Option {
	return func(o *options) {
		o.static = &cfg
	}
}

// NewKafkaConfigModule provides Config loaded from the "kafka" viper sub-tree.
func NewKafkaConfigModule(opts ...Option) fx.Option {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.static == nil {
		return fx.Provide(newConfig)
	}
	static := *o.static
	return fx.Provide(func(app appconfig.AppConfig) (Config, error) {
		cfg := static
		if cfg.ClientID == "" {
			cfg.ClientID = app.ServiceName
		}
		applyDefaults(&cfg)
		if err := validateConfig(&cfg); err != nil {
			return cfg, fmt.Errorf("invalid kafka config: %w", err)
		}
		return cfg, nil
	})
}

func newConfig(v *viper.Viper, app appconfig.AppConfig, logger *zap.Logger) (Config, error) {
	var cfg Config
	sub := v.Sub("kafka")
	if sub == nil {
		return cfg, fmt.Errorf("kafka config section is missing")
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to load kafka config: %w", err)
	}

	if cfg.ClientID == "" {
		cfg.ClientID = app.ServiceName
	}
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid kafka config: %w", err)
	}

	logger.Info("loaded kafka config",
		zap.String("brokers", cfg.Brokers),
		zap.String("client_id", cfg.ClientID),
		zap.Int("consumer_overrides", len(cfg.ConsumersConfig.ConsumerConfig)),
		zap.Duration("delivery_timeout", cfg.ProducerConfig.DeliveryTimeout),
	)
	return cfg, nil
}

// ResolveConsumer layers the YAML entry named base.Name (if any) over base,
// fills the remaining fields from the global defaults and validates the result.
// Services declare topic and group id in code; YAML overrides tune them per deployment.
func (c Config) ResolveConsumer(base ConsumerConfig) (ConsumerConfig, error) {
	resolved := base
	for _, override := range c.ConsumersConfig.ConsumerConfig {
		if override.Name == base.Name {
			mergeNonZero(&resolved, override)
			break
		}
	}

	ApplyConsumerDefaults(&resolved, &c.ConsumersConfig)
	if err := ValidateConsumer(&resolved); err != nil {
		return resolved, err
	}
	return resolved, nil
}

func mergeNonZero(dst *ConsumerConfig, src ConsumerConfig) {
	setString(&dst.Topic, src.Topic)
	setString(&dst.GroupID, src.GroupID)
	setString(&dst.AutoOffsetReset, src.AutoOffsetReset)
	setString(&dst.FailurePolicy, src.FailurePolicy)
	setString(&dst.DLQTopic, src.DLQTopic)
	if src.MaxRetryAttempts != 0 {
		dst.MaxRetryAttempts = src.MaxRetryAttempts
	}
	if src.InitialBackoff != 0 {
		dst.InitialBackoff = src.InitialBackoff
	}
	if src.MaxBackoff != 0 {
		dst.MaxBackoff = src.MaxBackoff
	}
	if src.PollTimeout != 0 {
		dst.PollTimeout = src.PollTimeout
	}
	if src.ReadinessTimeoutSeconds != 0 {
		dst.ReadinessTimeoutSeconds = src.ReadinessTimeoutSeconds
	}
	if src.FailOnTopicError {
		dst.FailOnTopicError = true
	}
	if src.Restart.Enabled != nil {
		dst.Restart.Enabled = src.Restart.Enabled
	}
	if src.Restart.InitialBackoff != 0 {
		dst.Restart.InitialBackoff = src.Restart.InitialBackoff
	}
	if src.Restart.MaxBackoff != 0 {
		dst.Restart.MaxBackoff = src.Restart.MaxBackoff
	}
	if src.Restart.MaxRestarts != 0 {
		dst.Restart.MaxRestarts = src.Restart.MaxRestarts
	}
}

func setString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
