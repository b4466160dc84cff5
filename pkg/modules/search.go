package modules

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/search/elastic"
	"go.uber.org/fx"
)

// NewSearchModule provides the elasticsearch client.
func NewSearchModule(opts ...elastic.ModuleOption) fx.Option {
	return elastic.NewElasticModule(opts...)
}
