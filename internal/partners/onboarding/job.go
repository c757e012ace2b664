package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// TaskTypeRetryRegister retries the partner registration step for a
// pending marker.
const TaskTypeRetryRegister = "onboarding:retry_register"

// RetryPayload is the task payload for TaskTypeRetryRegister.
type RetryPayload struct {
	PendingID string `json:"pending_id"`
}

// NewRetryTask builds the retry task for a pending marker.
func NewRetryTask(pendingID string) (*asynq.Task, error) {
	payload, err := json.Marshal(RetryPayload{PendingID: pendingID})
	if err != nil {
		return nil, fmt.Errorf("onboarding: marshal retry payload: %w", err)
	}
	return asynq.NewTask(TaskTypeRetryRegister, payload), nil
}

// RetryHandler processes queued registration retries.
type RetryHandler struct {
	logger   *slog.Logger
	workflow *Workflow
}

// NewRetryHandler constructs the handler.
func NewRetryHandler(logger *slog.Logger, workflow *Workflow) *RetryHandler {
	return &RetryHandler{logger: logger, workflow: workflow}
}

// ProcessTask re-runs the registration. A missing marker means an
// operator already resolved it, so the task is dropped without retries.
func (h *RetryHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload RetryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("onboarding: unmarshal retry payload: %v: %w", err, asynq.SkipRetry)
	}

	result, err := h.workflow.Retry(ctx, payload.PendingID)
	if errors.Is(err, ErrPendingNotFound) {
		h.logger.Info("pending marker already resolved", "pending_id", payload.PendingID)
		return nil
	}
	if err != nil {
		h.logger.Warn("registration retry failed", "pending_id", payload.PendingID, "error", err)
		return err
	}

	h.logger.Info("registration retry succeeded",
		"pending_id", payload.PendingID,
		"partner_id", result.PartnerID)
	return nil
}
