package modules

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/cache/redis"
	"go.uber.org/fx"
)

// NewCacheModule provides the redis read-model cache.
func NewCacheModule(opts ...redis.ModuleOption) fx.Option {
	return redis.NewRedisModule(opts...)
}
