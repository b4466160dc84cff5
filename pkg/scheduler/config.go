package scheduler

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const defaultRunTimeout = 5 * time.Minute

// Config is the optional "scheduler" config section.
type Config struct {
	// Timezone is an IANA name; empty means the host wall clock.
	Timezone   string               `mapstructure:"timezone"`
	RunTimeout time.Duration        `mapstructure:"run-timeout"`
	Jobs       map[string]JobConfig `mapstructure:"jobs"`
}

// JobConfig overrides the code defaults of one job.
type JobConfig struct {
	Schedule string        `mapstructure:"schedule"`
	Enabled  *bool         `mapstructure:"enabled"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// IsEnabled treats a missing flag as enabled.
func (c JobConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if sub := v.Sub("scheduler"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load scheduler config: %w", err)
		}
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.RunTimeout == 0 {
		cfg.RunTimeout = defaultRunTimeout
	}
}

func validateConfig(cfg Config) error {
	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
		}
	}
	if cfg.RunTimeout < 0 {
		return fmt.Errorf("scheduler run-timeout cannot be negative, got: %v", cfg.RunTimeout)
	}
	for name, job := range cfg.Jobs {
		if job.Schedule != "" {
			if _, err := parser.Parse(job.Schedule); err != nil {
				return fmt.Errorf("scheduler job %s: invalid schedule %q: %w", name, job.Schedule, err)
			}
		}
		if job.Timeout < 0 {
			return fmt.Errorf("scheduler job %s: timeout cannot be negative, got: %v", name, job.Timeout)
		}
	}
	return nil
}

func (c Config) location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
