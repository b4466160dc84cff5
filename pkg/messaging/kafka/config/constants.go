package config

import "time"

const (
	// Default values.
	defaultAutoOffsetReset          = "earliest"
	defaultMaxRetryAttempts         = 3
	defaultInitialBackoff           = 1 * time.Second
	defaultMaxBackoff               = 30 * time.Second
	defaultPollTimeout              = 500 * time.Millisecond
	defaultRestartInitialBackoff    = 1 * time.Second
	defaultRestartMaxBackoff        = 1 * time.Minute
	defaultConsumerReadinessTimeout = 60
	defaultProducerReadinessTimeout = 30
	defaultDeliveryTimeout          = 10 * time.Second
	defaultFlushTimeout             = 5 * time.Second
	defaultAcks                     = "all"

	// Validation bounds.
	minMaxRetryAttempts   = 1
	maxMaxRetryAttempts   = 100
	minInitialBackoff     = 100 * time.Millisecond
	maxInitialBackoff     = 30 * time.Second
	minMaxBackoff         = 1 * time.Second
	maxMaxBackoffDuration = 5 * time.Minute
	minPollTimeout        = 10 * time.Millisecond
	maxPollTimeout        = 10 * time.Second
	minDeliveryTimeout    = 100 * time.Millisecond
	maxDeliveryTimeout    = 5 * time.Minute
	maxReadinessTimeout   = 600 // 10 minutes in seconds
)
