package app

import (
	"context"
	"fmt"
	"time"

	pkgcron "github.com/seoforge/core/internal/pkg/cron"
	"github.com/seoforge/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
)

const taskRetention = 7 * 24 * time.Hour

// registerCronJobs registers all scheduled background jobs. Draft rows are
// deliberately never expired here; a stored draft stays until the user
// discards it or saves the post.
func registerCronJobs(sched *pkgcron.Scheduler, taskSvc *taskqueue.Service, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        "purge_task_results",
		Description: "Delete completed and failed queue tasks older than 7 days",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			before := time.Now().Add(-taskRetention).UnixMilli()
			purged, err := taskSvc.DeleteCompleted(ctx, before)
			if err != nil {
				cronLogger.Warn("task purge failed", zap.Error(err))
				return err
			}
			cronLogger.Info(fmt.Sprintf("purged %d finished queue tasks", purged))
			return nil
		},
	})
}
