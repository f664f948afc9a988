package mocks

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"

	"github.com/dayloop/dayloop-api/internal/domain"
	"github.com/dayloop/dayloop-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing.
//
// Each method consults its Fn override first; with no override the mock
// falls back to an in-memory map and reimplements the store's query
// semantics (half-open overlap, same-day scoping, newest-first listing).
type MockTaskStore struct {
	CreateFn          func(ctx context.Context, task *domain.Task) error
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	FindOverlappingFn func(ctx context.Context, q store.OverlapQuery) ([]*domain.Task, error)
	ListByUserFn      func(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	UpdateFn          func(ctx context.Context, task *domain.Task) error
	DeleteFn          func(ctx context.Context, id uuid.UUID) error
	CountByUserFn     func(ctx context.Context, userID uuid.UUID) (int, error)

	Tasks map[uuid.UUID]*domain.Task
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a mock store with an initialized task map.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{Tasks: make(map[uuid.UUID]*domain.Task)}
}

// Add seeds a task into the in-memory map.
func (m *MockTaskStore) Add(task *domain.Task) {
	m.Tasks[task.ID] = task
}

// Create implements the TaskStore interface.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.Tasks[task.ID] = task
	return nil
}

// GetByID implements the TaskStore interface.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	task, ok := m.Tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// FindOverlapping implements the TaskStore interface with the same
// half-open interval semantics as the SQL query.
func (m *MockTaskStore) FindOverlapping(ctx context.Context, q store.OverlapQuery) ([]*domain.Task, error) {
	if m.FindOverlappingFn != nil {
		return m.FindOverlappingFn(ctx, q)
	}

	var dayStart, dayEnd = q.Start, q.End
	if q.SameDayOnly {
		dayStart, dayEnd = domain.DayBounds(q.Start)
	}

	var out []*domain.Task
	for _, task := range m.Tasks {
		if task.UserID != q.UserID {
			continue
		}
		if q.ExcludeTaskID != nil && task.ID == *q.ExcludeTaskID {
			continue
		}
		if q.SameDayOnly {
			if task.StartTime.Before(dayStart) || !task.StartTime.Before(dayEnd) {
				continue
			}
		}
		if task.StartTime.Before(q.End) && task.EndTime.After(q.Start) {
			out = append(out, task)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

// ListByUser implements the TaskStore interface, newest first.
func (m *MockTaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}

	var out []*domain.Task
	for _, task := range m.Tasks {
		if task.UserID == userID {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update implements the TaskStore interface.
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	if _, ok := m.Tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	m.Tasks[task.ID] = task
	return nil
}

// Delete implements the TaskStore interface.
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, ok := m.Tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// CountByUser implements the TaskStore interface.
func (m *MockTaskStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.CountByUserFn != nil {
		return m.CountByUserFn(ctx, userID)
	}

	count := 0
	for _, task := range m.Tasks {
		if task.UserID == userID {
			count++
		}
	}
	return count, nil
}

// WithTx implements the TaskStore interface. The mock has no transaction
// state, so it returns itself.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}
