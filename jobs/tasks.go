package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/kensetsu-erp/kensetsu-erp/internal/expenses"
	"github.com/kensetsu-erp/kensetsu-erp/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskExpenseRemind nudges approvers about claims sitting in submitted.
	TaskExpenseRemind = "expense:remind"
	// TaskIdempotencyCleanup prunes expired idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// ExpenseRemindPayload controls how stale a submitted claim must be before it
// appears in the reminder digest.
type ExpenseRemindPayload struct {
	OlderThanHours int `json:"older_than_hours"`
}

// NewExpenseRemindTask constructs the reminder task.
func NewExpenseRemindTask(payload ExpenseRemindPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExpenseRemind, data), nil
}

// NewIdempotencyCleanupTask constructs the cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}

// HandleExpenseRemind builds the handler for TaskExpenseRemind. It logs a
// digest of stale submitted claims; mail delivery hangs off the log for now.
func HandleExpenseRemind(repo expenses.Repository, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ExpenseRemindPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.OlderThanHours <= 0 {
			payload.OlderThanHours = 48
		}

		stale, err := repo.ListSubmittedOlderThan(ctx, time.Duration(payload.OlderThanHours)*time.Hour)
		if err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		var total int64
		for _, e := range stale {
			total += e.Amount
		}
		logger.Info("expense reminder digest",
			slog.Int("pending", len(stale)),
			slog.Int64("total_amount", total),
			slog.Int("older_than_hours", payload.OlderThanHours))
		return nil
	}
}

// HandleIdempotencyCleanup builds the handler for TaskIdempotencyCleanup.
func HandleIdempotencyCleanup(store *shared.IdempotencyStore, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		removed, err := store.Cleanup(ctx, 24*time.Hour)
		if err != nil {
			return err
		}
		if removed > 0 {
			logger.Info("idempotency cleanup", slog.Int64("removed", removed))
		}
		return nil
	}
}
