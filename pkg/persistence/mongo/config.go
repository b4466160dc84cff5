package mongo

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ConnectionString string `mapstructure:"connection-string"`
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	ReplicaSet       string `mapstructure:"replica-set"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	DirectConnection bool   `mapstructure:"direct-connection"`

	// Connection pool
	MaxPoolSize         uint64        `mapstructure:"max-pool-size"`
	MinPoolSize         uint64        `mapstructure:"min-pool-size"`
	MaxConnIdleTime     time.Duration `mapstructure:"max-conn-idle-time"`
	ConnectTimeout      time.Duration `mapstructure:"connect-timeout"`
	ServerSelectTimeout time.Duration `mapstructure:"server-select-timeout"`

	// QueryTimeout bounds every single collection call.
	QueryTimeout time.Duration `mapstructure:"query-timeout"`

	// Transactions
	MaxTxAttempts    int           `mapstructure:"max-tx-attempts"`
	MaxConcurrentTx  int           `mapstructure:"max-concurrent-tx"`
	TxAcquireTimeout time.Duration `mapstructure:"tx-acquire-timeout"`
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	sub := v.Sub("mongo")
	if sub == nil {
		return cfg, fmt.Errorf("mongo config section is missing")
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to load mongo config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 100
	}
	if cfg.MinPoolSize == 0 {
		cfg.MinPoolSize = 10
	}
	if cfg.MaxConnIdleTime == 0 {
		cfg.MaxConnIdleTime = 5 * time.Minute
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.ServerSelectTimeout == 0 {
		cfg.ServerSelectTimeout = 30 * time.Second
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = 30 * time.Second
	}
	if cfg.MaxTxAttempts == 0 {
		cfg.MaxTxAttempts = 3
	}
	if cfg.TxAcquireTimeout == 0 {
		cfg.TxAcquireTimeout = 30 * time.Second
	}
}

func validateConfig(conf Config) error {
	if conf.ConnectionString == "" && (conf.Host == "" || conf.Port == 0) {
		return fmt.Errorf("invalid mongo config: connection-string or host and port are required")
	}
	if conf.Database == "" {
		return fmt.Errorf("invalid mongo config: database is required")
	}
	if conf.MaxTxAttempts < 1 {
		return fmt.Errorf("invalid mongo config: max-tx-attempts must be positive, got: %d", conf.MaxTxAttempts)
	}
	if conf.MaxConcurrentTx < 0 {
		return fmt.Errorf("invalid mongo config: max-concurrent-tx cannot be negative, got: %d", conf.MaxConcurrentTx)
	}
	return nil
}
