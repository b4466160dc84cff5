// Package health tracks startup readiness of infrastructure components.
// Workers that consume or schedule wait on it before their first poll.
package health

import "context"

// ComponentManager registers a component and returns the func that marks it
// ready. Registration happens while the fx graph is built.
type ComponentManager interface {
	AddComponent(name string) func()
}

// ReadinessWaiter blocks until every registered component is ready.
type ReadinessWaiter interface {
	WaitReady(ctx context.Context) error
}
