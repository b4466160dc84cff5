// Package modules is the one-stop set of fx modules a service main composes.
package modules

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core"
	"go.uber.org/fx"
)

// NewCoreModule provides config, logger, readiness and the worker runner.
func NewCoreModule(opts ...core.Option) fx.Option {
	return core.NewCoreModule(opts...)
}
