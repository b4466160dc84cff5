package redis

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the "redis" config section.
type Config struct {
	Addr         string        `mapstructure:"addr"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	KeyPrefix    string        `mapstructure:"key-prefix"`
	DefaultTTL   time.Duration `mapstructure:"default-ttl"`
	DialTimeout  time.Duration `mapstructure:"dial-timeout"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
	PoolSize     int           `mapstructure:"pool-size"`
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	sub := v.Sub("redis")
	if sub == nil {
		return cfg, fmt.Errorf("redis config section is missing")
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to load redis config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = 10 * time.Minute
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
}

func validateConfig(cfg Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("invalid redis config: addr is required")
	}
	if cfg.DB < 0 {
		return fmt.Errorf("invalid redis config: db cannot be negative, got: %d", cfg.DB)
	}
	if cfg.DefaultTTL < 0 {
		return fmt.Errorf("invalid redis config: default-ttl cannot be negative, got: %v", cfg.DefaultTTL)
	}
	return nil
}
