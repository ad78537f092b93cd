package app

import (
	"context"
	"time"

	"github.com/luminpress/core/internal/config"
	"github.com/luminpress/core/internal/modules/translation"
	pkgcron "github.com/luminpress/core/internal/pkg/cron"
	"github.com/luminpress/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, logger *zap.Logger, cfg *config.AppConfig, translationSvc *translation.Service, taskSvc *taskqueue.Service) {
	cronLogger := logger.Named("cron")

	sched.Register(pkgcron.Job{
		Name:        "cleanup_translation_jobs",
		Description: "purge settled translation jobs past the retention window",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			count, err := translationSvc.CleanupJobs(ctx, cfg.Translation.JobRetention())
			if err != nil {
				cronLogger.Warn("translation job cleanup failed", zap.Error(err))
				return err
			}
			cronLogger.Info("translation job cleanup done", zap.Int64("purged", count))
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "resync_available_languages",
		Description: "re-aggregate availableLanguages for every article",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			if err := translationSvc.ResyncAllAvailability(ctx); err != nil {
				cronLogger.Warn("availability resync failed", zap.Error(err))
				return err
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "cleanup_settled_tasks",
		Description: "drop settled queue tasks past the retention window",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().Add(-cfg.Translation.JobRetention()).UnixMilli()
			if err := taskSvc.DeleteSettled(ctx, cutoff); err != nil {
				cronLogger.Warn("task cleanup failed", zap.Error(err))
				return err
			}
			return nil
		},
	})
}
