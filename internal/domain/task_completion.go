package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Completion-specific validation errors.
var (
	ErrEmptyCompletionID     = errors.New("completion ID cannot be empty")
	ErrCompletionTaskIDEmpty = errors.New("completion task ID cannot be empty")
	ErrCompletionUserIDEmpty = errors.New("completion user ID cannot be empty")
	ErrCompletionDateEmpty   = errors.New("completion date cannot be empty")
	ErrPercentageOutOfRange  = errors.New("completion percentage must be between 0 and 100")
)

// TaskCompletion records how much of a task its owner completed on a given
// calendar day. At most one record exists per (TaskID, UserID, Date); the
// store upserts on that key so repeated completions overwrite rather than
// accumulate.
type TaskCompletion struct {
	ID          uuid.UUID  `json:"id"`
	TaskID      uuid.UUID  `json:"task_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Date        time.Time  `json:"date"`
	Percentage  int        `json:"completion_percentage"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTaskCompletion creates a completion record for the given task, owner,
// and day. The date is truncated to UTC midnight so the uniqueness key is a
// pure calendar day. Returns an error if validation fails.
func NewTaskCompletion(taskID, userID uuid.UUID, date time.Time, percentage int) (*TaskCompletion, error) {
	now := time.Now().UTC()
	completion := &TaskCompletion{
		ID:          uuid.New(),
		TaskID:      taskID,
		UserID:      userID,
		Date:        TruncateToDay(date),
		Percentage:  percentage,
		CompletedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := completion.Validate(); err != nil {
		return nil, err
	}

	return completion, nil
}

// Validate checks if the TaskCompletion has valid data.
// Returns an error if any field fails validation.
func (c *TaskCompletion) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCompletionID
	}
	if c.TaskID == uuid.Nil {
		return ErrCompletionTaskIDEmpty
	}
	if c.UserID == uuid.Nil {
		return ErrCompletionUserIDEmpty
	}
	if c.Date.IsZero() {
		return ErrCompletionDateEmpty
	}
	if c.Percentage < 0 || c.Percentage > 100 {
		return ErrPercentageOutOfRange
	}
	return nil
}

// TruncateToDay truncates an instant to UTC midnight of its calendar day.
func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
