package modules

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/scheduler"
	"go.uber.org/fx"
)

// NewSchedulerModule runs every provided scheduler.Job on its schedule.
func NewSchedulerModule() fx.Option {
	return scheduler.NewSchedulerModule(true)
}
