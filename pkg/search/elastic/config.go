package elastic

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the "elasticsearch" config section.
type Config struct {
	Addresses      []string      `mapstructure:"addresses"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	APIKey         string        `mapstructure:"api-key"`
	IndexPrefix    string        `mapstructure:"index-prefix"`
	MaxRetries     int           `mapstructure:"max-retries"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	sub := v.Sub("elasticsearch")
	if sub == nil {
		return cfg, fmt.Errorf("elasticsearch config section is missing")
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to load elasticsearch config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
}

func validateConfig(cfg Config) error {
	if len(cfg.Addresses) == 0 {
		return fmt.Errorf("invalid elasticsearch config: at least one address is required")
	}
	if cfg.APIKey != "" && cfg.Username != "" {
		return fmt.Errorf("invalid elasticsearch config: use either api-key or username, not both")
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("invalid elasticsearch config: max-retries cannot be negative, got: %d", cfg.MaxRetries)
	}
	return nil
}
