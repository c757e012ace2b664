// Package jobs hosts the background worker: queued onboarding retries and
// the scheduled cleanup of stale saga markers.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gemdesk/gemdesk/internal/partners/onboarding"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeCleanupPending drops saga markers past the retention window.
	TaskTypeCleanupPending = "onboarding:cleanup_pending"
)

// NewCleanupPendingTask constructs the scheduled cleanup task.
func NewCleanupPendingTask() *asynq.Task {
	return asynq.NewTask(TaskTypeCleanupPending, nil)
}

// PendingCleaner is satisfied by the onboarding store.
type PendingCleaner interface {
	DeleteStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// NewCleanupPendingHandler builds the handler for TaskTypeCleanupPending.
// Markers older than the retention window are abandoned registrations
// that operators chose not to resolve.
func NewCleanupPendingHandler(logger *slog.Logger, store PendingCleaner, retention time.Duration) asynq.HandlerFunc {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return func(ctx context.Context, t *asynq.Task) error {
		removed, err := store.DeleteStale(ctx, retention)
		if err != nil {
			logger.Error("pending cleanup failed", "error", err)
			return err
		}
		if removed > 0 {
			logger.Info("pending markers cleaned", "removed", removed)
		}
		return nil
	}
}

// NewRetryRegisterHandler adapts the onboarding retry handler for the mux.
func NewRetryRegisterHandler(handler *onboarding.RetryHandler) asynq.HandlerFunc {
	return handler.ProcessTask
}
