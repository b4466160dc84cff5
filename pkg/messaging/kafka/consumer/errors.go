package consumer

import (
	"errors"
	"fmt"
)

// ErrSkipMessage marks a message that can never be processed. Its offset is
// stored and the loop moves on.
var ErrSkipMessage = errors.New("skip message")

// ErrAlreadyStarted is returned when Run is called on a loop that ran before.
// A terminated loop is replaced, never restarted.
var ErrAlreadyStarted = errors.New("consumer loop already started")

// PanicError is a recovered handler panic.
type PanicError struct {
	Panic any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Panic)
}

// HandlerError is returned by the loop when a handler fails under the stop policy.
type HandlerError struct {
	Topic     string
	Partition int32
	Offset    int64
	EventType string
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler for %s failed at %s[%d]@%d: %v", e.EventType, e.Topic, e.Partition, e.Offset, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
