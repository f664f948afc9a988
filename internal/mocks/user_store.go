package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dayloop/dayloop-api/internal/domain"
	"github.com/dayloop/dayloop-api/internal/store"
)

// MockUserStore implements store.UserStore for testing.
//
// Each method consults its Fn override first; with no override the mock
// falls back to a simple in-memory map keyed by user ID.
type MockUserStore struct {
	CreateFn               func(ctx context.Context, user *domain.User) error
	GetByIDFn              func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn           func(ctx context.Context, email string) (*domain.User, error)
	GetByUsernameFn        func(ctx context.Context, username string) (*domain.User, error)
	UpdateFn               func(ctx context.Context, user *domain.User) error
	UpdateRefreshTokenFn   func(ctx context.Context, id uuid.UUID, token *string) error
	UpdateProfilePictureFn func(ctx context.Context, id uuid.UUID, url string) error
	DeleteFn               func(ctx context.Context, id uuid.UUID) error

	Users map[uuid.UUID]*domain.User
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a mock store with an initialized user map.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{Users: make(map[uuid.UUID]*domain.User)}
}

// Add seeds a user into the in-memory map.
func (m *MockUserStore) Add(user *domain.User) {
	m.Users[user.ID] = user
}

// Create implements the UserStore interface.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	for _, existing := range m.Users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
		if existing.Username == user.Username {
			return store.ErrUsernameExists
		}
	}

	m.Users[user.ID] = user
	return nil
}

// GetByID implements the UserStore interface.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	user, ok := m.Users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// GetByEmail implements the UserStore interface. The lookup normalizes the
// address the same way the real store's lower(email) index does.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	normalized := domain.NormalizeEmail(email)
	for _, user := range m.Users {
		if user.Email == normalized {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByUsername implements the UserStore interface.
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}

	for _, user := range m.Users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements the UserStore interface.
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	if _, ok := m.Users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	for id, existing := range m.Users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
		if existing.Username == user.Username {
			return store.ErrUsernameExists
		}
	}

	m.Users[user.ID] = user
	return nil
}

// UpdateRefreshToken implements the UserStore interface.
func (m *MockUserStore) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	if m.UpdateRefreshTokenFn != nil {
		return m.UpdateRefreshTokenFn(ctx, id, token)
	}

	user, ok := m.Users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	user.RefreshToken = token
	return nil
}

// UpdateProfilePicture implements the UserStore interface.
func (m *MockUserStore) UpdateProfilePicture(ctx context.Context, id uuid.UUID, url string) error {
	if m.UpdateProfilePictureFn != nil {
		return m.UpdateProfilePictureFn(ctx, id, url)
	}

	user, ok := m.Users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	user.ProfilePictureURL = &url
	return nil
}

// Delete implements the UserStore interface.
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, ok := m.Users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.Users, id)
	return nil
}

// WithTx implements the UserStore interface. The mock has no transaction
// state, so it returns itself.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
