package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/dayloop/dayloop-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user must already carry a
	// hashed password; plaintext never reaches this layer.
	// Returns ErrEmailExists or ErrUsernameExists on uniqueness violations.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// The lookup is case-insensitive; callers may pass the address as the
	// client supplied it. Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername retrieves a user by their username.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update modifies an existing user's identity fields and hashed password.
	// Returns ErrUserNotFound if the user does not exist, or
	// ErrEmailExists/ErrUsernameExists when updating into a taken value.
	Update(ctx context.Context, user *domain.User) error

	// UpdateRefreshToken sets or clears the user's single refresh token
	// slot. Pass nil to clear (logout). Returns ErrUserNotFound if the user
	// does not exist.
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error

	// UpdateProfilePicture sets the user's profile picture URL.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateProfilePicture(ctx context.Context, id uuid.UUID, url string) error

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a UserStore bound to the provided transaction, so that
	// multiple operations can share one atomic unit of work.
	WithTx(tx *sql.Tx) UserStore
}
