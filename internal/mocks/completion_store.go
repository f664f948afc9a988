package mocks

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dayloop/dayloop-api/internal/domain"
	"github.com/dayloop/dayloop-api/internal/store"
)

// MockCompletionStore implements store.CompletionStore for testing.
//
// The default implementation keys records by (task, user, day) so Upsert
// exhibits the same exactly-one-record-per-key behavior as the real store.
type MockCompletionStore struct {
	UpsertFn     func(ctx context.Context, completion *domain.TaskCompletion) (*domain.TaskCompletion, error)
	GetForDateFn func(ctx context.Context, taskID, userID uuid.UUID, date time.Time) (*domain.TaskCompletion, error)
	ListByTaskFn func(ctx context.Context, taskID, userID uuid.UUID) ([]*domain.TaskCompletion, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID) ([]*store.CompletionWithTask, error)

	Completions map[completionKey]*domain.TaskCompletion

	// TaskNames supplies the join target for ListByUser.
	TaskNames map[uuid.UUID]string
}

type completionKey struct {
	TaskID uuid.UUID
	UserID uuid.UUID
	Date   time.Time
}

var _ store.CompletionStore = (*MockCompletionStore)(nil)

// NewMockCompletionStore creates a mock store with initialized maps.
func NewMockCompletionStore() *MockCompletionStore {
	return &MockCompletionStore{
		Completions: make(map[completionKey]*domain.TaskCompletion),
		TaskNames:   make(map[uuid.UUID]string),
	}
}

func keyOf(c *domain.TaskCompletion) completionKey {
	return completionKey{
		TaskID: c.TaskID,
		UserID: c.UserID,
		Date:   domain.TruncateToDay(c.Date),
	}
}

// Upsert implements the CompletionStore interface.
func (m *MockCompletionStore) Upsert(ctx context.Context, completion *domain.TaskCompletion) (*domain.TaskCompletion, error) {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, completion)
	}

	key := keyOf(completion)
	if existing, ok := m.Completions[key]; ok {
		existing.Percentage = completion.Percentage
		existing.CompletedAt = completion.CompletedAt
		existing.UpdatedAt = completion.UpdatedAt
		return existing, nil
	}

	m.Completions[key] = completion
	return completion, nil
}

// GetForDate implements the CompletionStore interface.
func (m *MockCompletionStore) GetForDate(ctx context.Context, taskID, userID uuid.UUID, date time.Time) (*domain.TaskCompletion, error) {
	if m.GetForDateFn != nil {
		return m.GetForDateFn(ctx, taskID, userID, date)
	}

	key := completionKey{TaskID: taskID, UserID: userID, Date: domain.TruncateToDay(date)}
	completion, ok := m.Completions[key]
	if !ok {
		return nil, store.ErrCompletionNotFound
	}
	return completion, nil
}

// ListByTask implements the CompletionStore interface, newest date first.
func (m *MockCompletionStore) ListByTask(ctx context.Context, taskID, userID uuid.UUID) ([]*domain.TaskCompletion, error) {
	if m.ListByTaskFn != nil {
		return m.ListByTaskFn(ctx, taskID, userID)
	}

	var out []*domain.TaskCompletion
	for key, completion := range m.Completions {
		if key.TaskID == taskID && key.UserID == userID {
			out = append(out, completion)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// ListByUser implements the CompletionStore interface, joining task names
// from the TaskNames map.
func (m *MockCompletionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*store.CompletionWithTask, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}

	var out []*store.CompletionWithTask
	for key, completion := range m.Completions {
		if key.UserID != userID {
			continue
		}
		out = append(out, &store.CompletionWithTask{
			TaskCompletion: *completion,
			TaskName:       m.TaskNames[key.TaskID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// WithTx implements the CompletionStore interface. The mock has no
// transaction state, so it returns itself.
func (m *MockCompletionStore) WithTx(tx *sql.Tx) store.CompletionStore {
	return m
}
