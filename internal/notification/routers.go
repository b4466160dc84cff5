package notification

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/consumer"
)

func NewAccountRouter(h *Handlers) *consumer.Router {
	return consumer.NewRouter(contract.TopicAccountRegistered).
		Handle(contract.EventAccountRegistered, consumer.Typed(h.AccountRegistered))
}

// NewStorageRouter only needs the expiry notices of storage_event.
func NewStorageRouter(h *Handlers) *consumer.Router {
	return consumer.NewRouter(contract.TopicStorage).
		Handle(contract.EventStorageUnitsExpired, consumer.Typed(h.StorageUnitsExpired))
}
