package logger

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config is the "logger" section.
//
//	logger:
//	  level: debug            # default info
//	  development: true       # console encoder
//	  stacktrace-level: warn  # default error
//	  output-paths: [stdout]
type Config struct {
	Level            zapcore.Level
	Development      bool
	OutputPaths      []string
	ErrorOutputPaths []string
	StacktraceLevel  zapcore.Level
}

func (c Config) Validate() error {
	for name, paths := range map[string][]string{"output-paths": c.OutputPaths, "error-output-paths": c.ErrorOutputPaths} {
		for i, p := range paths {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("%s[%d] cannot be empty or whitespace", name, i)
			}
		}
	}
	return nil
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := Config{Level: zapcore.InfoLevel, StacktraceLevel: zapcore.ErrorLevel}
	if !v.IsSet("logger") {
		return cfg, nil
	}

	cfg.Development = v.GetBool("logger.development")
	cfg.OutputPaths = v.GetStringSlice("logger.output-paths")
	cfg.ErrorOutputPaths = v.GetStringSlice("logger.error-output-paths")

	for key, dst := range map[string]*zapcore.Level{"logger.level": &cfg.Level, "logger.stacktrace-level": &cfg.StacktraceLevel} {
		raw := v.GetString(key)
		if raw == "" {
			continue
		}
		if err := dst.UnmarshalText([]byte(raw)); err != nil {
			return Config{}, fmt.Errorf("%s: %w", key, err)
		}
	}
	return cfg, nil
}
