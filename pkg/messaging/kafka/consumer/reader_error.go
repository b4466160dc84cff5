package consumer

import (
	"errors"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

type readerErrorType int

const (
	readerErrorTimeout readerErrorType = iota
	readerErrorFatal
	readerErrorBrokersDown
	readerErrorTopicNotFound
	readerErrorLeaderElection
	readerErrorTransient
	readerErrorUnknown
)

// readerError classifies an error returned by ReadMessage.
type readerError struct {
	err         error
	errorType   readerErrorType
	key         string // throttling key
	description string
}

func (e *readerError) Error() string {
	if e.description != "" {
		return fmt.Sprintf("%s: %v", e.description, e.err)
	}
	return e.err.Error()
}

func (e *readerError) Unwrap() error {
	return e.err
}

func classifyReaderError(err error) *readerError {
	if err == nil {
		return nil
	}

	var kafkaErr kafka.Error
	if !errors.As(err, &kafkaErr) {
		return &readerError{err: err, errorType: readerErrorUnknown, key: "non_kafka_error", description: "non-Kafka read error"}
	}

	if kafkaErr.IsTimeout() || kafkaErr.Code() == kafka.ErrTimedOut {
		return &readerError{err: err, errorType: readerErrorTimeout}
	}
	if kafkaErr.IsFatal() {
		return &readerError{err: err, errorType: readerErrorFatal, description: "fatal kafka error, consumer is no longer operable"}
	}

	switch kafkaErr.Code() {
	case kafka.ErrAllBrokersDown:
		return &readerError{err: err, errorType: readerErrorBrokersDown, description: "all brokers are down"}
	case kafka.ErrUnknownTopicOrPart, kafka.ErrUnknownTopic:
		return &readerError{err: err, errorType: readerErrorTopicNotFound, key: "topic_not_found", description: "topic not available, waiting for topic creation"}
	case kafka.ErrLeaderNotAvailable, kafka.ErrNotLeaderForPartition:
		return &readerError{err: err, errorType: readerErrorLeaderElection, key: "leader_election", description: "partition leader changing"}
	case kafka.ErrTransport, kafka.ErrNetworkException:
		return &readerError{err: err, errorType: readerErrorTransient, key: "broker_connection", description: "broker connection issue"}
	}

	if kafkaErr.IsRetriable() {
		return &readerError{err: err, errorType: readerErrorTransient, key: "retriable_error", description: "retriable kafka error"}
	}
	return &readerError{err: err, errorType: readerErrorUnknown, key: "unknown_error", description: "unknown kafka error"}
}

func (e *readerError) isTimeout() bool {
	return e.errorType == readerErrorTimeout
}

// terminates reports whether the loop must exit and leave recovery to the supervisor.
func (e *readerError) terminates() bool {
	return e.errorType == readerErrorFatal || e.errorType == readerErrorBrokersDown
}
