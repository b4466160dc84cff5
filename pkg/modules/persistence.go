package modules

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence/mongo"
	"go.uber.org/fx"
)

// NewPersistenceModule provides mongo and the transaction manager.
func NewPersistenceModule(opts ...mongo.ModuleOption) fx.Option {
	return mongo.NewMongoModule(opts...)
}
