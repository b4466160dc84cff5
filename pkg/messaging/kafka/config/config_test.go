package config

import (
	"bytes"
	"testing"
	"time"

	appconfig "github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testApp = appconfig.AppConfig{ServiceName: "meal-service", ServiceVersion: "1.0.0", Environment: "test"}

func loadYAML(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yaml)))
	return v
}

func boolPtr(b bool) *bool { return &b }

func TestNewConfig_ValidYAML(t *testing.T) {
	yamlConfig := `
kafka:
  brokers: "localhost:9092,localhost:9093"
  consumers-config:
    default-auto-offset-reset: latest
    default-failure-policy: retry-then-skip
    default-max-retry-attempts: 5
    default-initial-backoff: 2s
    default-max-backoff: 1m
    restart:
      initial-backoff: 3s
      max-backoff: 2m
      max-restarts: 10
    consumers:
      - name: meal-storage-events
        failure-policy: stop
        restart:
          enabled: false
  producer-config:
    delivery-timeout: 3s
    acks: "1"
    fail-on-broker-error: true
`

	cfg, err := newConfig(loadYAML(t, yamlConfig), testApp, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, "localhost:9092,localhost:9093", cfg.Brokers)
	assert.Equal(t, "meal-service", cfg.ClientID)

	consumers := cfg.ConsumersConfig
	assert.Equal(t, "latest", consumers.DefaultAutoOffsetReset)
	assert.Equal(t, FailurePolicyRetryThenSkip, consumers.DefaultFailurePolicy)
	assert.Equal(t, 5, consumers.DefaultMaxRetryAttempts)
	assert.Equal(t, 2*time.Second, consumers.DefaultInitialBackoff)
	assert.Equal(t, time.Minute, consumers.DefaultMaxBackoff)
	assert.Equal(t, defaultPollTimeout, consumers.DefaultPollTimeout)
	assert.Equal(t, 3*time.Second, consumers.Restart.InitialBackoff)
	assert.Equal(t, 10, consumers.Restart.MaxRestarts)
	require.Len(t, consumers.ConsumerConfig, 1)

	assert.Equal(t, 3*time.Second, cfg.ProducerConfig.DeliveryTimeout)
	assert.Equal(t, defaultFlushTimeout, cfg.ProducerConfig.FlushTimeout)
	assert.Equal(t, "1", cfg.ProducerConfig.Acks)
	assert.True(t, cfg.ProducerConfig.FailOnBrokerError)
	assert.Equal(t, defaultProducerReadinessTimeout, cfg.ProducerConfig.ReadinessTimeoutSeconds)
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := newConfig(loadYAML(t, "kafka:\n  brokers: localhost:9092\n  client-id: custom\n"), testApp, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.ClientID)
	assert.Equal(t, defaultAutoOffsetReset, cfg.ConsumersConfig.DefaultAutoOffsetReset)
	assert.Equal(t, FailurePolicyStop, cfg.ConsumersConfig.DefaultFailurePolicy)
	assert.Equal(t, defaultMaxRetryAttempts, cfg.ConsumersConfig.DefaultMaxRetryAttempts)
	assert.True(t, cfg.ConsumersConfig.Restart.IsEnabled())
	assert.Equal(t, defaultRestartInitialBackoff, cfg.ConsumersConfig.Restart.InitialBackoff)
	assert.Equal(t, defaultRestartMaxBackoff, cfg.ConsumersConfig.Restart.MaxBackoff)
	assert.Equal(t, 10*time.Second, cfg.ProducerConfig.DeliveryTimeout)
	assert.Equal(t, "all", cfg.ProducerConfig.Acks)
}

func TestNewConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing section",
			yaml:    "other: 1\n",
			wantErr: "kafka config section is missing",
		},
		{
			name:    "empty brokers",
			yaml:    "kafka:\n  brokers: \" \"\n",
			wantErr: "kafka brokers cannot be empty",
		},
		{
			name:    "invalid default offset reset",
			yaml:    "kafka:\n  brokers: b:9092\n  consumers-config:\n    default-auto-offset-reset: middle\n",
			wantErr: "default auto offset reset must be 'earliest' or 'latest', got: middle",
		},
		{
			name:    "invalid default failure policy",
			yaml:    "kafka:\n  brokers: b:9092\n  consumers-config:\n    default-failure-policy: ignore\n",
			wantErr: "default failure policy must be 'stop' or 'retry-then-skip', got: ignore",
		},
		{
			name:    "retry attempts out of range",
			yaml:    "kafka:\n  brokers: b:9092\n  consumers-config:\n    default-max-retry-attempts: 1000\n",
			wantErr: "default max retry attempts must be between 1 and 100, got: 1000",
		},
		{
			name:    "override without name",
			yaml:    "kafka:\n  brokers: b:9092\n  consumers-config:\n    consumers:\n      - topic: meal_event\n",
			wantErr: "consumer[0]: name cannot be empty",
		},
		{
			name:    "duplicate override",
			yaml:    "kafka:\n  brokers: b:9092\n  consumers-config:\n    consumers:\n      - name: a\n      - name: a\n",
			wantErr: "consumer[1] (a): duplicate consumer name",
		},
		{
			name:    "negative restarts",
			yaml:    "kafka:\n  brokers: b:9092\n  consumers-config:\n    restart:\n      max-restarts: -1\n",
			wantErr: "restart max restarts cannot be negative, got: -1",
		},
		{
			name:    "bad acks",
			yaml:    "kafka:\n  brokers: b:9092\n  producer-config:\n    acks: some\n",
			wantErr: "producer acks must be 'all', '1' or '0', got: some",
		},
		{
			name:    "delivery timeout too small",
			yaml:    "kafka:\n  brokers: b:9092\n  producer-config:\n    delivery-timeout: 1ms\n",
			wantErr: "producer delivery timeout must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newConfig(loadYAML(t, tt.yaml), testApp, zap.NewNop())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveConsumer(t *testing.T) {
	base := ConsumerConfig{
		Name:    "meal-storage-events",
		Topic:   "storage_event",
		GroupID: "meal-service.storage-events",
	}

	t.Run("defaults only", func(t *testing.T) {
		cfg := Config{Brokers: "b:9092"}
		applyDefaults(&cfg)

		resolved, err := cfg.ResolveConsumer(base)

		require.NoError(t, err)
		assert.Equal(t, "storage_event", resolved.Topic)
		assert.Equal(t, "meal-service.storage-events", resolved.GroupID)
		assert.Equal(t, FailurePolicyStop, resolved.FailurePolicy)
		assert.Equal(t, defaultAutoOffsetReset, resolved.AutoOffsetReset)
		assert.Equal(t, defaultPollTimeout, resolved.PollTimeout)
		assert.Equal(t, defaultConsumerReadinessTimeout, resolved.ReadinessTimeoutSeconds)
		assert.True(t, resolved.Restart.IsEnabled())
		assert.Equal(t, defaultRestartInitialBackoff, resolved.Restart.InitialBackoff)
	})

	t.Run("yaml override wins", func(t *testing.T) {
		cfg := Config{
			Brokers: "b:9092",
			ConsumersConfig: ConsumersConfig{
				ConsumerConfig: []ConsumerConfig{{
					Name:             "meal-storage-events",
					GroupID:          "meal-service.storage-events.v2",
					FailurePolicy:    FailurePolicyRetryThenSkip,
					MaxRetryAttempts: 7,
					DLQTopic:         "storage_event.dlq",
					Restart:          RestartConfig{Enabled: boolPtr(false)},
				}},
			},
		}
		applyDefaults(&cfg)

		resolved, err := cfg.ResolveConsumer(base)

		require.NoError(t, err)
		assert.Equal(t, "storage_event", resolved.Topic)
		assert.Equal(t, "meal-service.storage-events.v2", resolved.GroupID)
		assert.Equal(t, FailurePolicyRetryThenSkip, resolved.FailurePolicy)
		assert.Equal(t, 7, resolved.MaxRetryAttempts)
		assert.Equal(t, "storage_event.dlq", resolved.DLQTopic)
		assert.False(t, resolved.Restart.IsEnabled())
	})

	t.Run("invalid resolved consumer", func(t *testing.T) {
		tests := []struct {
			name    string
			base    ConsumerConfig
			wantErr string
		}{
			{name: "no topic", base: ConsumerConfig{Name: "x", GroupID: "g"}, wantErr: "consumer (x): topic cannot be empty"},
			{name: "no group", base: ConsumerConfig{Name: "x", Topic: "t"}, wantErr: "consumer (x): group id cannot be empty"},
			{name: "dlq equals topic", base: ConsumerConfig{Name: "x", Topic: "t", GroupID: "g", FailurePolicy: FailurePolicyRetryThenSkip, DLQTopic: "t"}, wantErr: "DLQ topic cannot be the same as main topic"},
			{name: "dlq with stop policy", base: ConsumerConfig{Name: "x", Topic: "t", GroupID: "g", DLQTopic: "t.dlq"}, wantErr: "DLQ topic requires failure policy 'retry-then-skip'"},
			{name: "initial over max", base: ConsumerConfig{Name: "x", Topic: "t", GroupID: "g", InitialBackoff: 20 * time.Second, MaxBackoff: 10 * time.Second}, wantErr: "initial backoff (20s) cannot be greater than max backoff (10s)"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg := Config{Brokers: "b:9092"}
				applyDefaults(&cfg)

				_, err := cfg.ResolveConsumer(tt.base)

				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			})
		}
	})
}
