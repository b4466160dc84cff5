package modules

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/observability"
	"go.uber.org/fx"
)

// NewObservabilityModule provides the tracer and meter providers.
func NewObservabilityModule(opts ...observability.Option) fx.Option {
	return observability.NewObservabilityModule(opts...)
}
