package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/envelope"
)

type readResult struct {
	msg *kafka.Message
	err error
}

// fakeConsumer replays reads in order, then calls onEmpty and reports timeouts.
type fakeConsumer struct {
	mu        sync.Mutex
	reads     []readResult
	stored    []kafka.Offset
	commits   int
	closed    int
	onEmpty   func()
	storeErr  error
	commitErr error
}

func (f *fakeConsumer) ReadMessage(time.Duration) (*kafka.Message, error) {
	f.mu.Lock()
	if len(f.reads) == 0 {
		onEmpty := f.onEmpty
		f.mu.Unlock()
		if onEmpty != nil {
			onEmpty()
		}
		return nil, kafka.NewError(kafka.ErrTimedOut, "timed out", false)
	}
	r := f.reads[0]
	f.reads = f.reads[1:]
	f.mu.Unlock()
	return r.msg, r.err
}

func (f *fakeConsumer) StoreMessage(m *kafka.Message) ([]kafka.TopicPartition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	f.stored = append(f.stored, m.TopicPartition.Offset)
	return []kafka.TopicPartition{m.TopicPartition}, nil
}

func (f *fakeConsumer) Commit() ([]kafka.TopicPartition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits++
	if f.commitErr != nil {
		return nil, f.commitErr
	}
	return nil, nil
}

func (f *fakeConsumer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeConsumer) storedOffsets() []kafka.Offset {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]kafka.Offset(nil), f.stored...)
}

func message(topic string, offset int64, value string) *kafka.Message {
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 0, Offset: kafka.Offset(offset)},
		Key:            []byte("k"),
		Value:          []byte(value),
	}
}

func reads(msgs ...*kafka.Message) []readResult {
	out := make([]readResult, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, readResult{msg: m})
	}
	return out
}

// recordingDLQ captures forwarded messages.
type recordingDLQ struct {
	mu   sync.Mutex
	sent []*kafka.Message
	errs []error
}

func (r *recordingDLQ) SendToDLQ(_ context.Context, m *kafka.Message, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m)
	r.errs = append(r.errs, err)
}

// recordingProducer captures ProduceMessage calls.
type recordingProducer struct {
	mu       sync.Mutex
	messages []*kafka.Message
	err      error
}

func (r *recordingProducer) Produce(context.Context, string, string, envelope.Envelope) error {
	return r.err
}

func (r *recordingProducer) ProduceMessage(_ context.Context, m *kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
	return r.err
}

func (r *recordingProducer) Close() {}
