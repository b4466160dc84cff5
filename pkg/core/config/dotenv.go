package config

import (
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// DotEnvOption is a functional option for configuring the dotenv module.
type DotEnvOption func(*dotenvConfig)

type dotenvConfig struct {
	paths []string
}

// WithDotEnvPath adds a .env file to load. Later files do not override earlier ones.
func WithDotEnvPath(path string) DotEnvOption {
	return func(cfg *dotenvConfig) {
		cfg.paths = append(cfg.paths, path)
	}
}

// NewDotEnvModule loads environment variables from .env files before any
// provider reads the environment. Missing files are not an error.
func NewDotEnvModule(opts ...DotEnvOption) fx.Option {
	cfg := &dotenvConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.paths) == 0 {
		cfg.paths = []string{".env"}
	}

	loaded := make([]string, 0, len(cfg.paths))
	for _, path := range cfg.paths {
		if err := godotenv.Load(path); err == nil {
			loaded = append(loaded, path)
		}
	}

	return fx.Module("dotenv",
		fx.Invoke(func(logger *zap.Logger) {
			if len(loaded) > 0 {
				logger.Info("dotenv loaded", zap.Strings("paths", loaded))
				return
			}
			logger.Debug("no dotenv file", zap.Strings("paths", cfg.paths))
		}),
	)
}
