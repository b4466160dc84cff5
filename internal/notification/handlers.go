package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/logger"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/consumer"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
	"go.uber.org/zap"
)

type Handlers struct {
	tm   persistence.TxManager
	repo Repository
	now  func() time.Time
}

func NewHandlers(tm persistence.TxManager, repo Repository) *Handlers {
	return &Handlers{tm: tm, repo: repo, now: time.Now}
}

// AccountRegistered stores the welcome notification of a new user.
func (h *Handlers) AccountRegistered(ctx context.Context, p contract.AccountRegistered) error {
	userID := strings.TrimSpace(p.UserID)
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", consumer.ErrSkipMessage)
	}
	return h.store(ctx, Notification{
		ID:        welcomeID(userID),
		UserID:    userID,
		Kind:      KindWelcome,
		Title:     "Welcome",
		Body:      welcomeBody(p.Username),
		CreatedAt: h.now(),
	})
}

// StorageUnitsExpired stores one notice for the group per sweep result.
func (h *Handlers) StorageUnitsExpired(ctx context.Context, p contract.StorageUnitsExpired) error {
	if p.GroupID <= 0 {
		return fmt.Errorf("%w: group_id must be positive, got %d", consumer.ErrSkipMessage, p.GroupID)
	}
	if len(p.StorageUnitIDs) == 0 {
		return nil
	}
	createdAt := p.ExpiredAt
	if createdAt.IsZero() {
		createdAt = h.now()
	}
	return h.store(ctx, Notification{
		ID:        unitsExpiredID(p.GroupID, p.StorageUnitIDs),
		GroupID:   p.GroupID,
		Kind:      KindUnitsExpired,
		Title:     "Food expired",
		Body:      fmt.Sprintf("%d item(s) in your storage have expired.", len(p.StorageUnitIDs)),
		CreatedAt: createdAt,
	})
}

func (h *Handlers) store(ctx context.Context, n Notification) error {
	var created bool
	err := persistence.InTx(ctx, h.tm, func(txCtx context.Context) error {
		var err error
		created, err = h.repo.Insert(txCtx, n)
		return err
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("notification stored",
		zap.String("notification_id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.Bool("created", created),
	)
	return nil
}
