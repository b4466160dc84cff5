package consumer

import (
	"context"
	"fmt"
	"sort"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/envelope"
)

// HandlerFunc applies one decoded envelope. It must be safe to run more than
// once for the same message.
type HandlerFunc func(ctx context.Context, env envelope.Envelope) error

// Router maps the event types of one topic to handlers. It is filled once at
// startup and only read afterwards.
type Router struct {
	topic    string
	handlers map[string]HandlerFunc
}

func NewRouter(topic string) *Router {
	return &Router{topic: topic, handlers: make(map[string]HandlerFunc)}
}

// Handle registers h for eventType. Registering the same type twice panics.
func (r *Router) Handle(eventType string, h HandlerFunc) *Router {
	if eventType == "" {
		panic("consumer: empty event type")
	}
	if h == nil {
		panic(fmt.Sprintf("consumer: nil handler for %s", eventType))
	}
	if _, exists := r.handlers[eventType]; exists {
		panic(fmt.Sprintf("consumer: duplicate handler for %s on topic %s", eventType, r.topic))
	}
	r.handlers[eventType] = h
	return r
}

func (r *Router) Topic() string { return r.topic }

// EventTypes returns the registered event types, sorted.
func (r *Router) EventTypes() []string {
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Routes reports whether a handler is registered for eventType.
func (r *Router) Routes(eventType string) bool {
	_, ok := r.handlers[eventType]
	return ok
}

// Dispatch runs the handler registered for env's event type. Unrouted types
// return nil, as the loop drops them.
func (r *Router) Dispatch(ctx context.Context, env envelope.Envelope) error {
	h, ok := r.handlers[env.EventType]
	if !ok {
		return nil
	}
	return h(ctx, env)
}

// Typed adapts a payload handler. A payload that does not decode into T is
// skipped.
func Typed[T any](fn func(ctx context.Context, payload T) error) HandlerFunc {
	return func(ctx context.Context, env envelope.Envelope) error {
		payload, err := envelope.DecodeData[T](env)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSkipMessage, err)
		}
		return fn(ctx, payload)
	}
}
