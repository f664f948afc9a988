package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/dayloop/dayloop-api/internal/domain"
)

// CompletionWithTask is a completion record joined with its task's name,
// as returned by history queries.
type CompletionWithTask struct {
	domain.TaskCompletion
	TaskName string `json:"task_name"`
}

// CompletionStore defines the interface for completion record persistence.
type CompletionStore interface {
	// Upsert inserts the completion record, or overwrites the percentage
	// and completed_at of the existing record keyed by
	// (task_id, user_id, date). Exactly one record per key survives.
	Upsert(ctx context.Context, completion *domain.TaskCompletion) (*domain.TaskCompletion, error)

	// GetForDate retrieves the completion record for a task on a calendar
	// day. Returns ErrCompletionNotFound if no record exists.
	GetForDate(ctx context.Context, taskID, userID uuid.UUID, date time.Time) (*domain.TaskCompletion, error)

	// ListByTask returns all completion records for a task, newest date
	// first.
	ListByTask(ctx context.Context, taskID, userID uuid.UUID) ([]*domain.TaskCompletion, error)

	// ListByUser returns the user's full completion history joined with
	// task names, newest date first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*CompletionWithTask, error)

	// WithTx returns a CompletionStore bound to the provided transaction.
	WithTx(tx *sql.Tx) CompletionStore
}
