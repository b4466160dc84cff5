package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type viperOptions struct {
	paths        []string
	noConfigFile bool
}

// ViperOption configures NewViperModule.
type ViperOption func(*viperOptions)

// WithConfigPath loads path instead of CONFIG_FILE. Repeat it to layer files;
// later files override earlier ones.
func WithConfigPath(path string) ViperOption {
	return func(o *viperOptions) {
		o.paths = append(o.paths, path)
	}
}

// WithoutConfigFile leaves viper with environment variables only.
func WithoutConfigFile() ViperOption {
	return func(o *viperOptions) {
		o.noConfigFile = true
	}
}

// ConfigFiles are the YAML files merged into viper, in order.
type ConfigFiles []string

// NewViperModule provides *viper.Viper. CONFIG_FILE holds one path or a comma
// separated list, e.g. configs/meal-service.yaml,configs/local.yaml. Every
// key can be overridden by an environment variable: kafka.producer-config.acks
// becomes KAFKA_PRODUCER_CONFIG_ACKS.
func NewViperModule(opts ...ViperOption) fx.Option {
	o := &viperOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Module("viper",
		fx.Supply(configFiles(o)),
		fx.Provide(newViper),
		fx.Invoke(func(log *zap.Logger, files ConfigFiles, v *viper.Viper) {
			log.Info("configuration loaded",
				zap.Strings("files", files),
				zap.Int("keys", len(v.AllKeys())),
			)
		}),
	)
}

func configFiles(o *viperOptions) ConfigFiles {
	switch {
	case o.noConfigFile:
		return nil
	case len(o.paths) > 0:
		return o.paths
	}
	var files ConfigFiles
	for _, p := range strings.Split(os.Getenv(envConfigFile), ",") {
		if p = strings.TrimSpace(p); p != "" {
			files = append(files, p)
		}
	}
	return files
}

func newViper(files ConfigFiles) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	for i, file := range files {
		v.SetConfigFile(file)
		read := v.MergeInConfig
		if i == 0 {
			read = v.ReadInConfig
		}
		if err := read(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}
	return v, nil
}
