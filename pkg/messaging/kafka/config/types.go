package config

import "time"

// Failure policies for a consumer dispatch loop.
const (
	// FailurePolicyStop terminates the loop on the first handler error. The
	// offset of the failed message is not stored, so it is redelivered.
	FailurePolicyStop = "stop"
	// FailurePolicyRetryThenSkip retries the handler with backoff, then skips
	// the message (forwarding it to the DLQ topic when one is set).
	FailurePolicyRetryThenSkip = "retry-then-skip"
)

// Config represents the main Kafka configuration.
type Config struct {
	Brokers         string          `mapstructure:"brokers"`          // Comma-separated list of broker addresses (e.g., "localhost:9092,localhost:9093")
	ClientID        string          `mapstructure:"client-id"`        // client.id reported to brokers (defaults to the service name)
	ConsumersConfig ConsumersConfig `mapstructure:"consumers-config"` // Global and individual consumer configurations
	ProducerConfig  ProducerConfig  `mapstructure:"producer-config"`  // Producer-specific configuration
}

// ConsumersConfig holds global default settings and individual consumer overrides.
type ConsumersConfig struct {
	DefaultAutoOffsetReset  string           `mapstructure:"default-auto-offset-reset"`  // "earliest" or "latest"
	DefaultFailurePolicy    string           `mapstructure:"default-failure-policy"`     // "stop" or "retry-then-skip"
	DefaultMaxRetryAttempts int              `mapstructure:"default-max-retry-attempts"` // Used by retry-then-skip (1-100)
	DefaultInitialBackoff   time.Duration    `mapstructure:"default-initial-backoff"`    // Used by retry-then-skip (100ms-30s)
	DefaultMaxBackoff       time.Duration    `mapstructure:"default-max-backoff"`        // Used by retry-then-skip (1s-5m)
	DefaultPollTimeout      time.Duration    `mapstructure:"default-poll-timeout"`       // ReadMessage timeout per poll (10ms-10s)
	Restart                 RestartConfig    `mapstructure:"restart"`                    // Supervisor defaults
	ConsumerConfig          []ConsumerConfig `mapstructure:"consumers"`                  // Individual consumer overrides, matched by name
}

// ConsumerConfig represents configuration for an individual dispatch loop.
type ConsumerConfig struct {
	Name                    string        `mapstructure:"name"`                      // Unique consumer name (required)
	Topic                   string        `mapstructure:"topic"`                     // Topic to consume from (required)
	GroupID                 string        `mapstructure:"group-id"`                  // Consumer group id, must stay stable across deployments (required)
	AutoOffsetReset         string        `mapstructure:"auto-offset-reset"`         // "earliest" or "latest"
	FailurePolicy           string        `mapstructure:"failure-policy"`            // "stop" or "retry-then-skip"
	MaxRetryAttempts        int           `mapstructure:"max-retry-attempts"`        // Attempts before skipping under retry-then-skip
	InitialBackoff          time.Duration `mapstructure:"initial-backoff"`           // First delay between handler attempts
	MaxBackoff              time.Duration `mapstructure:"max-backoff"`               // Upper bound for the delay between handler attempts
	PollTimeout             time.Duration `mapstructure:"poll-timeout"`              // ReadMessage timeout per poll
	DLQTopic                string        `mapstructure:"dlq-topic"`                 // Where skipped messages are forwarded (empty = drop)
	ReadinessTimeoutSeconds int           `mapstructure:"readiness-timeout-seconds"` // Timeout for topic metadata check (max 600s)
	FailOnTopicError        bool          `mapstructure:"fail-on-topic-error"`       // Whether a missing topic fails the loop start
	Restart                 RestartConfig `mapstructure:"restart"`                   // Supervisor settings for this loop
}

// RestartConfig controls the supervisor that restarts a terminated loop.
type RestartConfig struct {
	Enabled        *bool         `mapstructure:"enabled"`         // Restart after a handler error (default true)
	InitialBackoff time.Duration `mapstructure:"initial-backoff"` // Delay before the first restart (default 1s)
	MaxBackoff     time.Duration `mapstructure:"max-backoff"`     // Upper bound for restart delay (default 1m)
	MaxRestarts    int           `mapstructure:"max-restarts"`    // Consecutive restarts before giving up (0 = unlimited)
}

// IsEnabled reports whether the supervisor restarts the loop.
func (r RestartConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// ProducerConfig represents configuration for the shared producer.
type ProducerConfig struct {
	DeliveryTimeout         time.Duration `mapstructure:"delivery-timeout"`          // Wait for broker acknowledgment (default 10s)
	FlushTimeout            time.Duration `mapstructure:"flush-timeout"`             // Flush budget on close (default 5s)
	Acks                    string        `mapstructure:"acks"`                      // "all", "1" or "0" (default "all")
	ReadinessTimeoutSeconds int           `mapstructure:"readiness-timeout-seconds"` // Timeout for waiting brokers readiness (max 600s, default 30s)
	FailOnBrokerError       bool          `mapstructure:"fail-on-broker-error"`      // Whether unreachable brokers fail setup
}
