package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dayloop/dayloop-api/internal/domain"
	"github.com/dayloop/dayloop-api/internal/platform/logger"
	"github.com/dayloop/dayloop-api/internal/store"
)

// MarkCompleteInput carries the fields for recording a task completion.
// A nil Percentage means fully complete (100). A nil Date means today.
type MarkCompleteInput struct {
	Percentage *int
	Date       *time.Time
}

// CompletionService records and reads per-day task completion state.
// Marking is an upsert: completing the same task twice on one day
// overwrites the percentage rather than adding a second record.
type CompletionService struct {
	taskStore       store.TaskStore
	completionStore store.CompletionStore
	logger          *slog.Logger

	timeFunc func() time.Time
}

// NewCompletionService creates a new CompletionService.
func NewCompletionService(
	taskStore store.TaskStore,
	completionStore store.CompletionStore,
	logger *slog.Logger,
) *CompletionService {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if completionStore == nil {
		panic("completionStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CompletionService{
		taskStore:       taskStore,
		completionStore: completionStore,
		logger:          logger.With(slog.String("component", "completion_service")),
		timeFunc:        time.Now,
	}
}

// WithTimeFunc overrides the service's clock. Intended for tests.
func (s *CompletionService) WithTimeFunc(fn func() time.Time) *CompletionService {
	if fn != nil {
		s.timeFunc = fn
	}
	return s
}

// MarkComplete records the user's completion of a task for a calendar day.
// Returns store.ErrTaskNotFound if the task does not exist, ErrTaskNotOwned
// when it belongs to someone else, and a domain validation error when the
// percentage falls outside [0, 100].
func (s *CompletionService) MarkComplete(ctx context.Context, userID, taskID uuid.UUID, input MarkCompleteInput) (*domain.TaskCompletion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrTaskNotOwned
	}

	percentage := 100
	if input.Percentage != nil {
		percentage = *input.Percentage
	}
	if percentage < 0 || percentage > 100 {
		return nil, domain.NewValidationError(
			"completion_percentage",
			fmt.Sprintf("percentage %d is out of range [0, 100]", percentage),
			domain.ErrPercentageOutOfRange)
	}

	date := s.timeFunc().UTC()
	if input.Date != nil {
		date = *input.Date
	}

	completion, err := domain.NewTaskCompletion(taskID, userID, date, percentage)
	if err != nil {
		return nil, err
	}

	saved, err := s.completionStore.Upsert(ctx, completion)
	if err != nil {
		return nil, err
	}

	log.Info("task marked complete",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("percentage", saved.Percentage),
		slog.Time("date", saved.Date))
	return saved, nil
}

// TodayStatus reports the user's completion percentage for a task today.
// Absence of a record reads as zero percent, not as an error.
func (s *CompletionService) TodayStatus(ctx context.Context, userID, taskID uuid.UUID) (int, error) {
	today := domain.TruncateToDay(s.timeFunc().UTC())

	completion, err := s.completionStore.GetForDate(ctx, taskID, userID, today)
	if err != nil {
		if store.IsNotFoundError(err) {
			return 0, nil
		}
		return 0, err
	}
	return completion.Percentage, nil
}

// HistoryForTask returns all completion records for one task owned by the
// user, newest date first. Returns store.ErrTaskNotFound/ErrTaskNotOwned
// under the same rules as the other task operations.
func (s *CompletionService) HistoryForTask(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.TaskCompletion, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrTaskNotOwned
	}

	return s.completionStore.ListByTask(ctx, taskID, userID)
}

// History returns the user's full completion history across all their
// tasks, joined with task names, newest date first.
func (s *CompletionService) History(ctx context.Context, userID uuid.UUID) ([]*store.CompletionWithTask, error) {
	return s.completionStore.ListByUser(ctx, userID)
}
