package fxrecord

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/logger"
	"go.uber.org/zap/zapcore"
)

// offline turns off everything that would export or depend on host state
// while a service graph is only being constructed.
const offline = `
observability:
  tracing:
    enabled: false
  metrics:
    enabled: false
scheduler:
  timezone: UTC
`

// CoreOptions loads the shipped service config with an offline overlay and
// a fixed identity, skipping .env. configFile is relative to the test's
// package directory.
func CoreOptions(t testing.TB, service, configFile string) []core.Option {
	t.Helper()
	overlay := filepath.Join(t.TempDir(), "offline.yaml")
	if err := os.WriteFile(overlay, []byte(offline), 0o600); err != nil {
		t.Fatalf("write config overlay: %v", err)
	}
	return []core.Option{
		core.WithoutEnvFile(),
		core.WithConfigFile(configFile),
		core.WithConfigFile(overlay),
		core.WithAppConfig(config.AppConfig{ServiceName: service, ServiceVersion: "test", Environment: "test"}),
		core.WithLoggerConfig(logger.Config{Level: zapcore.ErrorLevel, StacktraceLevel: zapcore.FatalLevel}),
	}
}
