package config

import (
	"fmt"
	"strings"
	"time"
)

// validateConfig validates the entire Kafka configuration
func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Brokers) == "" {
		return fmt.Errorf("kafka brokers cannot be empty")
	}
	if err := validateGlobalConsumerConfig(&cfg.ConsumersConfig); err != nil {
		return err
	}
	names := make(map[string]struct{}, len(cfg.ConsumersConfig.ConsumerConfig))
	for i, consumer := range cfg.ConsumersConfig.ConsumerConfig {
		if strings.TrimSpace(consumer.Name) == "" {
			return fmt.Errorf("consumer[%d]: name cannot be empty", i)
		}
		if _, dup := names[consumer.Name]; dup {
			return fmt.Errorf("consumer[%d] (%s): duplicate consumer name", i, consumer.Name)
		}
		names[consumer.Name] = struct{}{}
	}
	return validateProducerConfig(&cfg.ProducerConfig)
}

func validateGlobalConsumerConfig(cfg *ConsumersConfig) error {
	if err := validateOffsetReset(cfg.DefaultAutoOffsetReset); err != nil {
		return fmt.Errorf("default %w", err)
	}
	if err := validateFailurePolicy(cfg.DefaultFailurePolicy); err != nil {
		return fmt.Errorf("default %w", err)
	}
	if err := validateRetry(cfg.DefaultMaxRetryAttempts, cfg.DefaultInitialBackoff, cfg.DefaultMaxBackoff); err != nil {
		return fmt.Errorf("default %w", err)
	}
	if cfg.DefaultPollTimeout > 0 && (cfg.DefaultPollTimeout < minPollTimeout || cfg.DefaultPollTimeout > maxPollTimeout) {
		return fmt.Errorf("default poll timeout must be between %v and %v, got: %v",
			minPollTimeout, maxPollTimeout, cfg.DefaultPollTimeout)
	}
	return validateRestart(cfg.Restart)
}

// ValidateConsumer validates a resolved consumer configuration.
func ValidateConsumer(consumer *ConsumerConfig) error {
	if strings.TrimSpace(consumer.Name) == "" {
		return fmt.Errorf("consumer: name cannot be empty")
	}
	if strings.TrimSpace(consumer.Topic) == "" {
		return fmt.Errorf("consumer (%s): topic cannot be empty", consumer.Name)
	}
	if strings.TrimSpace(consumer.GroupID) == "" {
		return fmt.Errorf("consumer (%s): group id cannot be empty", consumer.Name)
	}
	if err := validateOffsetReset(consumer.AutoOffsetReset); err != nil {
		return fmt.Errorf("consumer (%s): %w", consumer.Name, err)
	}
	if err := validateFailurePolicy(consumer.FailurePolicy); err != nil {
		return fmt.Errorf("consumer (%s): %w", consumer.Name, err)
	}
	if err := validateRetry(consumer.MaxRetryAttempts, consumer.InitialBackoff, consumer.MaxBackoff); err != nil {
		return fmt.Errorf("consumer (%s): %w", consumer.Name, err)
	}
	if consumer.PollTimeout > 0 && (consumer.PollTimeout < minPollTimeout || consumer.PollTimeout > maxPollTimeout) {
		return fmt.Errorf("consumer (%s): poll timeout must be between %v and %v, got: %v",
			consumer.Name, minPollTimeout, maxPollTimeout, consumer.PollTimeout)
	}
	if consumer.ReadinessTimeoutSeconds > maxReadinessTimeout {
		return fmt.Errorf("consumer (%s): readiness timeout cannot exceed %d seconds, got: %d",
			consumer.Name, maxReadinessTimeout, consumer.ReadinessTimeoutSeconds)
	}
	if consumer.DLQTopic != "" && consumer.DLQTopic == consumer.Topic {
		return fmt.Errorf("consumer (%s): DLQ topic cannot be the same as main topic", consumer.Name)
	}
	if consumer.DLQTopic != "" && consumer.FailurePolicy != FailurePolicyRetryThenSkip {
		return fmt.Errorf("consumer (%s): DLQ topic requires failure policy '%s'",
			consumer.Name, FailurePolicyRetryThenSkip)
	}
	if err := validateRestart(consumer.Restart); err != nil {
		return fmt.Errorf("consumer (%s): %w", consumer.Name, err)
	}
	return nil
}

func validateOffsetReset(v string) error {
	if v != "" && v != "earliest" && v != "latest" {
		return fmt.Errorf("auto offset reset must be 'earliest' or 'latest', got: %s", v)
	}
	return nil
}

func validateFailurePolicy(v string) error {
	if v != "" && v != FailurePolicyStop && v != FailurePolicyRetryThenSkip {
		return fmt.Errorf("failure policy must be '%s' or '%s', got: %s", FailurePolicyStop, FailurePolicyRetryThenSkip, v)
	}
	return nil
}

func validateRetry(attempts int, initial, maxBackoff time.Duration) error {
	if attempts != 0 && (attempts < minMaxRetryAttempts || attempts > maxMaxRetryAttempts) {
		return fmt.Errorf("max retry attempts must be between %d and %d, got: %d",
			minMaxRetryAttempts, maxMaxRetryAttempts, attempts)
	}
	if initial != 0 && (initial < minInitialBackoff || initial > maxInitialBackoff) {
		return fmt.Errorf("initial backoff must be between %v and %v, got: %v", minInitialBackoff, maxInitialBackoff, initial)
	}
	if maxBackoff != 0 && (maxBackoff < minMaxBackoff || maxBackoff > maxMaxBackoffDuration) {
		return fmt.Errorf("max backoff must be between %v and %v, got: %v", minMaxBackoff, maxMaxBackoffDuration, maxBackoff)
	}
	if maxBackoff != 0 && initial > maxBackoff {
		return fmt.Errorf("initial backoff (%v) cannot be greater than max backoff (%v)", initial, maxBackoff)
	}
	return nil
}

func validateRestart(r RestartConfig) error {
	if r.MaxRestarts < 0 {
		return fmt.Errorf("restart max restarts cannot be negative, got: %d", r.MaxRestarts)
	}
	if r.MaxBackoff != 0 && r.InitialBackoff > r.MaxBackoff {
		return fmt.Errorf("restart initial backoff (%v) cannot be greater than max backoff (%v)", r.InitialBackoff, r.MaxBackoff)
	}
	return nil
}

func validateProducerConfig(cfg *ProducerConfig) error {
	if cfg.ReadinessTimeoutSeconds > maxReadinessTimeout {
		return fmt.Errorf("producer readiness timeout cannot exceed %d seconds, got: %d",
			maxReadinessTimeout, cfg.ReadinessTimeoutSeconds)
	}
	if cfg.DeliveryTimeout != 0 && (cfg.DeliveryTimeout < minDeliveryTimeout || cfg.DeliveryTimeout > maxDeliveryTimeout) {
		return fmt.Errorf("producer delivery timeout must be between %v and %v, got: %v",
			minDeliveryTimeout, maxDeliveryTimeout, cfg.DeliveryTimeout)
	}
	switch cfg.Acks {
	case "", "all", "1", "0":
	default:
		return fmt.Errorf("producer acks must be 'all', '1' or '0', got: %s", cfg.Acks)
	}
	return nil
}
