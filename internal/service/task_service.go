package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/dayloop/dayloop-api/internal/domain"
	"github.com/dayloop/dayloop-api/internal/platform/logger"
	"github.com/dayloop/dayloop-api/internal/store"
)

// CreateTaskInput carries the fields for creating a task. StartTime and
// EndTime are wall-clock strings in HH:mm form; the service anchors them
// onto the current date.
type CreateTaskInput struct {
	Name        string
	Description string
	Priority    domain.Priority
	StartTime   string
	EndTime     string
	Recurrence  domain.Recurrence
	CustomSpec  string
}

// UpdateTaskInput carries the fields for updating a task. The clock strings
// are anchored onto the stored task's calendar date, not today's: editing a
// task changes its time of day, never its reference date.
type UpdateTaskInput struct {
	Name        string
	Description string
	Priority    domain.Priority
	StartTime   string
	EndTime     string
	Recurrence  domain.Recurrence
	CustomSpec  string
}

// TaskView is a task enriched with its completion state for display:
// HH:mm clock strings, today's completion percentage, and the full
// per-day completion history.
type TaskView struct {
	*domain.Task

	StartClock      string                   `json:"start"`
	EndClock        string                   `json:"end"`
	CompletedToday  bool                     `json:"completed_today"`
	TodayPercentage int                      `json:"today_percentage"`
	History         []*domain.TaskCompletion `json:"history"`
}

// TaskService implements task scheduling. All mutations enforce ownership,
// and every operation that changes a task's time window checks for overlaps
// against the owner's other tasks inside a database transaction.
type TaskService struct {
	db              *sql.DB
	taskStore       store.TaskStore
	completionStore store.CompletionStore
	logger          *slog.Logger

	// timeFunc supplies "now" for anchoring created tasks; injectable for
	// tests.
	timeFunc func() time.Time

	// runInTx wraps check-then-write sequences; overridable in tests.
	runInTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	db *sql.DB,
	taskStore store.TaskStore,
	completionStore store.CompletionStore,
	logger *slog.Logger,
) *TaskService {
	if db == nil {
		panic("db cannot be nil")
	}
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if completionStore == nil {
		panic("completionStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskService{
		db:              db,
		taskStore:       taskStore,
		completionStore: completionStore,
		logger:          logger.With(slog.String("component", "task_service")),
		timeFunc:        time.Now,
		runInTx:         store.RunInTransaction,
	}
}

// WithTimeFunc overrides the service's clock. Intended for tests.
func (s *TaskService) WithTimeFunc(fn func() time.Time) *TaskService {
	if fn != nil {
		s.timeFunc = fn
	}
	return s
}

// Create schedules a new task for the user. The HH:mm clock strings are
// anchored onto today's date. Returns a domain validation error for
// malformed input, or an *OverlapError when the window intersects one of
// the user's existing tasks.
func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, input CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	start, end, err := s.resolveWindow(s.timeFunc().UTC(), input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}

	if err := validateCustomSpec(input.Recurrence, input.CustomSpec); err != nil {
		return nil, err
	}

	task, err := domain.NewTask(userID, input.Name, input.Description, input.Priority, start, end, input.Recurrence)
	if err != nil {
		return nil, mapTaskValidation(err)
	}
	task.CustomSpec = input.CustomSpec

	// Check-then-insert runs in one transaction; the database exclusion
	// constraint backstops anything that still slips through.
	txErr := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		conflicts, err := txStore.FindOverlapping(ctx, store.OverlapQuery{
			UserID: userID,
			Start:  task.StartTime,
			End:    task.EndTime,
		})
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return newOverlapError(conflicts)
		}

		return txStore.Create(ctx, task)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))
	return task, nil
}

// Update modifies a task owned by the user. The new clock strings are
// anchored onto the stored task's calendar date, and the overlap check is
// scoped to that same day, excluding the task itself.
// Returns store.ErrTaskNotFound if the task does not exist and
// ErrTaskNotOwned when it belongs to someone else.
func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrTaskNotOwned
	}

	start, end, err := s.resolveWindow(task.StartTime, input.StartTime, input.EndTime)
	if err != nil {
		return nil, err
	}

	if err := validateCustomSpec(input.Recurrence, input.CustomSpec); err != nil {
		return nil, err
	}

	task.Name = input.Name
	task.Description = input.Description
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	if input.Recurrence != "" {
		task.Recurrence = input.Recurrence
	}
	task.CustomSpec = input.CustomSpec
	task.StartTime = start
	task.EndTime = end
	task.UpdatedAt = s.timeFunc().UTC()

	if err := task.Validate(); err != nil {
		return nil, mapTaskValidation(err)
	}

	excludeID := task.ID
	txErr := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		conflicts, err := txStore.FindOverlapping(ctx, store.OverlapQuery{
			UserID:        userID,
			Start:         task.StartTime,
			End:           task.EndTime,
			ExcludeTaskID: &excludeID,
			SameDayOnly:   true,
		})
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return newOverlapError(conflicts)
		}

		return txStore.Update(ctx, task)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))
	return task, nil
}

// Get returns a task owned by the user.
// Returns store.ErrTaskNotFound if it does not exist and ErrTaskNotOwned
// when it belongs to someone else.
func (s *TaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrTaskNotOwned
	}
	return task, nil
}

// Delete removes a task owned by the user; its completion records go with
// it. Returns store.ErrTaskNotFound if the task does not exist and
// ErrTaskNotOwned when it belongs to someone else.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.UserID != userID {
		return ErrTaskNotOwned
	}

	if err := s.taskStore.Delete(ctx, taskID); err != nil {
		return err
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// List returns the user's tasks, newest first, each enriched with today's
// completion percentage and the task's completion history.
func (s *TaskService) List(ctx context.Context, userID uuid.UUID) ([]*TaskView, error) {
	tasks, err := s.taskStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := domain.TruncateToDay(s.timeFunc().UTC())
	views := make([]*TaskView, 0, len(tasks))
	for _, task := range tasks {
		view := &TaskView{
			Task:       task,
			StartClock: domain.FormatClock(task.StartTime),
			EndClock:   domain.FormatClock(task.EndTime),
			History:    []*domain.TaskCompletion{},
		}

		history, err := s.completionStore.ListByTask(ctx, task.ID, userID)
		if err != nil {
			return nil, err
		}
		view.History = history

		for _, c := range history {
			if c.Date.Equal(today) {
				view.CompletedToday = true
				view.TodayPercentage = c.Percentage
				break
			}
		}

		views = append(views, view)
	}

	return views, nil
}

// resolveWindow parses both HH:mm clock strings and anchors them onto the
// reference instant's calendar date.
func (s *TaskService) resolveWindow(reference time.Time, startStr, endStr string) (time.Time, time.Time, error) {
	startClock, err := domain.ParseClock(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endClock, err := domain.ParseClock(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start := domain.AnchorClock(reference, startClock)
	end := domain.AnchorClock(reference, endClock)
	if !end.After(start) {
		return time.Time{}, time.Time{}, domain.NewValidationError(
			"end_time", "end time must be after start time", domain.ErrEndBeforeStart)
	}

	return start, end, nil
}

// validateCustomSpec checks the optional cron expression attached to a
// Custom recurrence. The expression is parsed for shape only; nothing in
// the system ever evaluates it.
func validateCustomSpec(recurrence domain.Recurrence, spec string) error {
	if spec == "" {
		return nil
	}
	if recurrence != domain.RecurrenceCustom {
		return domain.NewValidationError(
			"custom_spec", "custom schedule spec requires Custom recurrence", domain.ErrInvalidRecurrence)
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return domain.NewValidationError(
			"custom_spec", fmt.Sprintf("invalid schedule expression: %v", err), err)
	}
	return nil
}

// newOverlapError packs the conflicting tasks into an *OverlapError with
// display-ready names and windows.
func newOverlapError(conflicts []*domain.Task) *OverlapError {
	out := make([]TaskConflict, len(conflicts))
	for i, t := range conflicts {
		out[i] = TaskConflict{Name: t.Name, TimeRange: t.TimeRange()}
	}
	return &OverlapError{Conflicts: out}
}

// mapTaskValidation wraps domain sentinel errors from Task.Validate into
// field-tagged validation errors for the API layer.
func mapTaskValidation(err error) error {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrEmptyTaskName):
		return domain.NewValidationError("name", err.Error(), err)
	case errors.Is(err, domain.ErrInvalidPriority):
		return domain.NewValidationError("priority", err.Error(), err)
	case errors.Is(err, domain.ErrInvalidRecurrence):
		return domain.NewValidationError("recurrence", err.Error(), err)
	case errors.Is(err, domain.ErrEndBeforeStart):
		return domain.NewValidationError("end_time", err.Error(), err)
	case errors.Is(err, domain.ErrInvalidTimeFormat):
		return domain.NewValidationError("time", err.Error(), err)
	}
	return err
}
