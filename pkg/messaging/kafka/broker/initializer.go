package broker

import (
	"context"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

const metadataTimeoutMs = 5000

func waitForBrokers(ctx context.Context, p metadataProvider, log *zap.Logger, timeoutSec int, failOnError bool) error {
	log.Info("waiting for kafka brokers", zap.Int("timeout_seconds", timeoutSec))

	if timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
		defer cancel()
	}

	if err := pollBrokers(ctx, p); err != nil {
		if failOnError {
			return err
		}
		log.Warn("brokers not ready, continuing", zap.Error(err))
		return nil
	}

	log.Info("kafka brokers ready")
	return nil
}

func pollBrokers(ctx context.Context, p metadataProvider) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if meta, err := p.GetMetadata(nil, false, metadataTimeoutMs); err == nil && len(meta.Brokers) > 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// WaitForTopic polls metadata until topic exists with at least one partition.
func WaitForTopic(ctx context.Context, p metadataProvider, topic string) error {
	for {
		meta, err := p.GetMetadata(&topic, false, metadataTimeoutMs)
		if err == nil {
			if tm, ok := meta.Topics[topic]; ok && tm.Error.Code() == kafka.ErrNoError && len(tm.Partitions) > 0 {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}
