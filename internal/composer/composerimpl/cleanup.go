package composerimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ScheduleHistoryCleanup sets up a daily job to delete batches older than the
// configured retention window.
func (c *ComposerImpl) ScheduleHistoryCleanup(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create cleanup scheduler: %w", err)
	}

	retention := time.Duration(c.Config.History.RetentionDays) * 24 * time.Hour

	// At 3:00 AM every day
	_, err = scheduler.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0)),
		),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				c.Logger.Info("Context cancelled, stopping history cleanup job")
				return
			}

			c.Logger.Info("Starting scheduled history cleanup job")

			cleanupCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()

			rowsDeleted, err := c.BatchRepo.CleanupOldRecords(cleanupCtx, retention)
			if err != nil {
				c.Logger.Error("Failed to clean up old batches", "error", err)
				return
			}

			c.Logger.Info("History cleanup completed successfully", "rows_deleted", rowsDeleted)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule history cleanup: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		c.Logger.Info("Stopping history cleanup scheduler")
		if err := scheduler.Shutdown(); err != nil {
			c.Logger.Error("Failed to shut down cleanup scheduler", "error", err)
		}
	}()

	return nil
}
