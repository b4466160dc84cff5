package modules

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging"
	"go.uber.org/fx"
)

// NewMessagingModule provides kafka config, the broker client, the shared
// producer and the publisher.
func NewMessagingModule(opts ...messaging.MessagingOption) fx.Option {
	return messaging.NewMessagingModule(opts...)
}
