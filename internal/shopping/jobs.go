package shopping

import (
	"context"
	"strconv"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/logger"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
	"go.uber.org/zap"
)

const (
	PlanExpiryJobName = "plan-expiry"
	UnitExpiryJobName = "storage-unit-expiry"
)

// PlanExpiryJob expires plans whose deadline passed before they were done.
type PlanExpiryJob struct {
	tm    persistence.TxManager
	plans PlanRepository
	now   func() time.Time
}

func NewPlanExpiryJob(tm persistence.TxManager, plans PlanRepository) *PlanExpiryJob {
	return &PlanExpiryJob{tm: tm, plans: plans, now: time.Now}
}

func (j *PlanExpiryJob) Name() string { return PlanExpiryJobName }

func (j *PlanExpiryJob) Schedule() string { return "*/10 * * * *" }

func (j *PlanExpiryJob) Run(ctx context.Context) error {
	now := j.now()
	var res persistence.UpdateResult
	err := persistence.InTx(ctx, j.tm, func(txCtx context.Context) error {
		var err error
		res, err = j.plans.ExpireBefore(txCtx, now)
		return err
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("shopping plans expired",
		zap.Int64("matched", res.Matched),
		zap.Int64("modified", res.Modified),
	)
	return nil
}

// eventPublisher is the part of producer.Publisher the unit sweep needs.
type eventPublisher interface {
	PublishBestEffort(ctx context.Context, topic, key, eventType string, payload any)
}

// UnitExpiryJob expires storage units past their expiration date and tells
// each affected group. The notice is sent after commit and may be lost; the
// expiry itself is not undone.
type UnitExpiryJob struct {
	tm        persistence.TxManager
	units     UnitRepository
	publisher eventPublisher
	now       func() time.Time
}

func NewUnitExpiryJob(tm persistence.TxManager, units UnitRepository, publisher eventPublisher) *UnitExpiryJob {
	return &UnitExpiryJob{tm: tm, units: units, publisher: publisher, now: time.Now}
}

func (j *UnitExpiryJob) Name() string { return UnitExpiryJobName }

func (j *UnitExpiryJob) Schedule() string { return "0 * * * *" }

func (j *UnitExpiryJob) Run(ctx context.Context) error {
	now := j.now()
	var expired []ExpiredUnits
	err := persistence.InTx(ctx, j.tm, func(txCtx context.Context) error {
		var err error
		expired, err = j.units.ExpireBefore(txCtx, now)
		return err
	})
	if err != nil {
		return err
	}

	total := 0
	for _, group := range expired {
		total += len(group.UnitIDs)
		j.publisher.PublishBestEffort(ctx, contract.TopicStorage, strconv.FormatInt(group.GroupID, 10),
			contract.EventStorageUnitsExpired, contract.StorageUnitsExpired{
				GroupID:        group.GroupID,
				StorageUnitIDs: group.UnitIDs,
				ExpiredAt:      now,
			})
	}
	logger.FromContext(ctx).Info("storage units expired",
		zap.Int("groups", len(expired)),
		zap.Int("units", total),
	)
	return nil
}
