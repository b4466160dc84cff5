// Package envelope is the wire shape every producer and consumer agrees on:
// a UTF-8 JSON object {"event_type": string, "data": any JSON value}.
package envelope

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// ErrMalformed is returned for payloads that are not a valid envelope.
var ErrMalformed = errors.New("malformed envelope")

// Envelope wraps every message on the broker.
type Envelope struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
}

// New marshals payload into the data field.
func New(eventType string, payload any) (Envelope, error) {
	if eventType == "" {
		return Envelope{}, fmt.Errorf("%w: event_type is empty", ErrMalformed)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Envelope{EventType: eventType, Data: data}, nil
}

// Encode returns the JSON wire form.
func Encode(env Envelope) ([]byte, error) {
	if env.EventType == "" {
		return nil, fmt.Errorf("%w: event_type is empty", ErrMalformed)
	}
	if len(env.Data) == 0 {
		env.Data = json.RawMessage("null")
	}
	return json.Marshal(env)
}

// Decode parses raw into an Envelope. The topic the bytes came from plays no
// role, so dotted and short topic names decode the same way.
func Decode(raw []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Envelope{}, fmt.Errorf("%w: not a JSON object", ErrMalformed)
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.EventType == "" {
		return Envelope{}, fmt.Errorf("%w: missing event_type", ErrMalformed)
	}
	if len(env.Data) == 0 {
		env.Data = json.RawMessage("null")
	}
	return env, nil
}

// DecodeData unmarshals the data field into T.
func DecodeData[T any](env Envelope) (T, error) {
	var payload T
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return payload, fmt.Errorf("%w: data does not match %s: %v", ErrMalformed, env.EventType, err)
	}
	return payload, nil
}
