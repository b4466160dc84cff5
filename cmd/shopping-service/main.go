// Command shopping-service releases storage units of cancelled meals and
// expires overdue plans and units.
package main

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/shopping"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/modules"
	"go.uber.org/fx"
)

func main() {
	fx.New(options()).Run()
}

// options is the service graph. coreOpts replace the CONFIG_FILE and
// environment lookups.
func options(coreOpts ...core.Option) fx.Option {
	return fx.Options(
		modules.NewCoreModule(coreOpts...),
		modules.NewObservabilityModule(),
		modules.NewPersistenceModule(),
		modules.NewCacheModule(),
		modules.NewMessagingModule(),
		modules.NewSchedulerModule(),
		shopping.NewShoppingModule(),
	)
}
