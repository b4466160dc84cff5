package config

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Environment variable names
const (
	envAppEnv            = "APP_ENV"
	envAppServiceName    = "APP_SERVICE_NAME"
	envAppServiceVersion = "APP_SERVICE_VERSION"
	envConfigFile        = "CONFIG_FILE"
)

// AppConfig identifies the running service.
type AppConfig struct {
	// ServiceName is the name of the service, e.g. "meal-service".
	ServiceName string
	// ServiceVersion is the deployed version.
	ServiceVersion string
	// Environment is the deployment environment (e.g., "local", "staging", "pro")
	Environment string
}

type appConfigOptions struct {
	static *AppConfig
}

// AppConfigOption configures the app config module.
type AppConfigOption func(*appConfigOptions)

// WithAppConfig supplies a static AppConfig instead of reading the environment.
func WithAppConfig(cfg AppConfig) AppConfigOption {
	return func(o *appConfigOptions) {
		o.static = &cfg
	}
}

// NewAppConfigModule provides AppConfig from APP_ENV, APP_SERVICE_NAME and
// APP_SERVICE_VERSION, all required.
func NewAppConfigModule(opts ...AppConfigOption) fx.Option {
	o := &appConfigOptions{}
	for _, opt := range opts {
		opt(o)
	}

	provide := fx.Provide(newAppConfig)
	if o.static != nil {
		provide = fx.Supply(*o.static)
	}

	return fx.Module("appconfig",
		provide,
		fx.Invoke(func(log *zap.Logger, conf AppConfig) {
			log.Info("application identity",
				zap.String("service", conf.ServiceName),
				zap.String("version", conf.ServiceVersion),
				zap.String("environment", conf.Environment),
			)
		}),
	)
}

func newAppConfig() (AppConfig, error) {
	var missing []string
	lookup := func(name string) string {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			missing = append(missing, name)
		}
		return v
	}

	conf := AppConfig{
		Environment:    lookup(envAppEnv),
		ServiceName:    lookup(envAppServiceName),
		ServiceVersion: lookup(envAppServiceVersion),
	}
	if len(missing) > 0 {
		return AppConfig{}, fmt.Errorf("missing required environment: %s", strings.Join(missing, ", "))
	}
	return conf, nil
}
