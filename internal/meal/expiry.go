package meal

import (
	"context"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/logger"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence"
	"go.uber.org/zap"
)

// ExpiryJobName is the scheduler name, used for config overrides and the sweep CLI.
const ExpiryJobName = "meal-expiry"

// ExpiryJob expires meals planned for a day that has already ended.
type ExpiryJob struct {
	tm   persistence.TxManager
	repo Repository
	now  func() time.Time
}

func NewExpiryJob(tm persistence.TxManager, repo Repository) *ExpiryJob {
	return &ExpiryJob{tm: tm, repo: repo, now: time.Now}
}

func (j *ExpiryJob) Name() string { return ExpiryJobName }

// Schedule runs shortly after midnight.
func (j *ExpiryJob) Schedule() string { return "5 0 * * *" }

func (j *ExpiryJob) Run(ctx context.Context) error {
	now := j.now()
	cutoff := startOfDay(now)

	var res persistence.UpdateResult
	err := persistence.InTx(ctx, j.tm, func(txCtx context.Context) error {
		var err error
		res, err = j.repo.ExpireBefore(txCtx, cutoff, now)
		return err
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("meals expired",
		zap.Time("cutoff", cutoff),
		zap.Int64("matched", res.Matched),
		zap.Int64("modified", res.Modified),
	)
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
