package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/dayloop/dayloop-api/internal/domain"
)

// OverlapQuery describes an interval to test against a user's existing
// tasks. The comparison is half-open: an existing task conflicts when
// existing.start < End AND existing.end > Start.
type OverlapQuery struct {
	UserID uuid.UUID
	Start  time.Time
	End    time.Time

	// ExcludeTaskID, when non-nil, removes one task from consideration.
	// Updates pass the task's own ID here.
	ExcludeTaskID *uuid.UUID

	// SameDayOnly restricts candidates to tasks whose start falls on the
	// calendar day of Start. Updates use this so tasks stored on other
	// reference dates never count as conflicts.
	SameDayOnly bool
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrTaskOverlap if the database's overlap guard rejects it.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// FindOverlapping returns the user's tasks whose windows intersect the
	// queried interval, ordered by start time. An empty slice means the
	// interval is free.
	FindOverlapping(ctx context.Context, q OverlapQuery) ([]*domain.Task, error)

	// ListByUser returns all tasks owned by the user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// Update modifies an existing task.
	// Returns ErrTaskNotFound if the task does not exist and ErrTaskOverlap
	// if the database's overlap guard rejects the new window.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByUser returns the number of tasks owned by the user.
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a TaskStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
