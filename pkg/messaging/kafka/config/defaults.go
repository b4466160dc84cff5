package config

// applyDefaults applies default values to the configuration
func applyDefaults(cfg *Config) {
	consumers := &cfg.ConsumersConfig
	if consumers.DefaultAutoOffsetReset == "" {
		consumers.DefaultAutoOffsetReset = defaultAutoOffsetReset
	}
	if consumers.DefaultFailurePolicy == "" {
		consumers.DefaultFailurePolicy = FailurePolicyStop
	}
	if consumers.DefaultMaxRetryAttempts == 0 {
		consumers.DefaultMaxRetryAttempts = defaultMaxRetryAttempts
	}
	if consumers.DefaultInitialBackoff == 0 {
		consumers.DefaultInitialBackoff = defaultInitialBackoff
	}
	if consumers.DefaultMaxBackoff == 0 {
		consumers.DefaultMaxBackoff = defaultMaxBackoff
	}
	if consumers.DefaultPollTimeout == 0 {
		consumers.DefaultPollTimeout = defaultPollTimeout
	}
	applyRestartDefaults(&consumers.Restart, RestartConfig{
		InitialBackoff: defaultRestartInitialBackoff,
		MaxBackoff:     defaultRestartMaxBackoff,
	})

	producer := &cfg.ProducerConfig
	if producer.DeliveryTimeout == 0 {
		producer.DeliveryTimeout = defaultDeliveryTimeout
	}
	if producer.FlushTimeout == 0 {
		producer.FlushTimeout = defaultFlushTimeout
	}
	if producer.Acks == "" {
		producer.Acks = defaultAcks
	}
	if producer.ReadinessTimeoutSeconds == 0 {
		producer.ReadinessTimeoutSeconds = defaultProducerReadinessTimeout
	}
}

// ApplyConsumerDefaults fills unset fields of a consumer from the global defaults.
func ApplyConsumerDefaults(consumer *ConsumerConfig, global *ConsumersConfig) {
	if consumer.AutoOffsetReset == "" {
		consumer.AutoOffsetReset = global.DefaultAutoOffsetReset
	}
	if consumer.FailurePolicy == "" {
		consumer.FailurePolicy = global.DefaultFailurePolicy
	}
	if consumer.MaxRetryAttempts == 0 {
		consumer.MaxRetryAttempts = global.DefaultMaxRetryAttempts
	}
	if consumer.InitialBackoff == 0 {
		consumer.InitialBackoff = global.DefaultInitialBackoff
	}
	if consumer.MaxBackoff == 0 {
		consumer.MaxBackoff = global.DefaultMaxBackoff
	}
	if consumer.PollTimeout == 0 {
		consumer.PollTimeout = global.DefaultPollTimeout
	}
	if consumer.ReadinessTimeoutSeconds == 0 {
		consumer.ReadinessTimeoutSeconds = defaultConsumerReadinessTimeout
	}
	applyRestartDefaults(&consumer.Restart, global.Restart)
}

func applyRestartDefaults(restart *RestartConfig, from RestartConfig) {
	if restart.Enabled == nil {
		restart.Enabled = from.Enabled
	}
	if restart.InitialBackoff == 0 {
		restart.InitialBackoff = from.InitialBackoff
	}
	if restart.MaxBackoff == 0 {
		restart.MaxBackoff = from.MaxBackoff
	}
	if restart.MaxRestarts == 0 {
		restart.MaxRestarts = from.MaxRestarts
	}
}
