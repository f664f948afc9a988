package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dayloop/dayloop-api/internal/domain"
	"github.com/dayloop/dayloop-api/internal/platform/logger"
	"github.com/dayloop/dayloop-api/internal/service/auth"
	"github.com/dayloop/dayloop-api/internal/store"
)

// RegisterInput carries the fields required to create a new user.
type RegisterInput struct {
	Fullname string
	Username string
	Email    string
	Password string
}

// ProfileInput carries the editable identity fields of a user.
type ProfileInput struct {
	Fullname string
	Username string
	Email    string
}

// UserService implements user registration, credential verification, and
// profile management. Passwords are hashed exactly once on the way in and
// never stored or returned in plaintext.
type UserService struct {
	userStore store.UserStore
	taskStore store.TaskStore
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userStore store.UserStore,
	taskStore store.TaskStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) *UserService {
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if hasher == nil {
		panic("hasher cannot be nil")
	}
	if verifier == nil {
		panic("verifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		userStore: userStore,
		taskStore: taskStore,
		hasher:    hasher,
		verifier:  verifier,
		logger:    logger.With(slog.String("component", "user_service")),
	}
}

// Register creates a new user from the given input.
// Returns a domain validation error when a field is missing or malformed,
// and store.ErrEmailExists/store.ErrUsernameExists when the identity is
// already taken (email comparison is case-insensitive).
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, domain.NewValidationError("password", err.Error(), err)
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUser(input.Fullname, input.Username, input.Email, hashed)
	if err != nil {
		return nil, err
	}

	// The unique indexes on lower(email) and username are the authority;
	// racing registrations resolve there rather than in a pre-check.
	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	return user, nil
}

// Authenticate verifies an email/password pair and returns the matching
// user. Returns auth.ErrInvalidCredentials for both an unknown email and a
// wrong password, so callers cannot probe which addresses are registered.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("failed to look up user by email", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}

// VerifyPassword reports whether the plaintext matches the user's stored
// hash.
func (s *UserService) VerifyPassword(user *domain.User, password string) bool {
	return s.verifier.Compare(user.HashedPassword, password) == nil
}

// GetByID returns the user with a fresh tasks count.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.taskStore.CountByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.TasksCount = count

	return user, nil
}

// UpdateProfile changes the user's identity fields. Uniqueness of the new
// email and username is enforced by the store.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Fullname = input.Fullname
	user.Username = input.Username
	user.Email = domain.NormalizeEmail(input.Email)
	user.UpdatedAt = time.Now().UTC()

	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Info("profile updated", slog.String("user_id", user.ID.String()))
	return user, nil
}

// ChangePassword re-hashes and persists a new password after verifying the
// current one. Returns auth.ErrInvalidCredentials when the current password
// does not match.
//
// The stored refresh token is left untouched: outstanding sessions become
// stale rather than revoked, and callers are expected to prompt a re-login.
func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidatePassword(newPassword); err != nil {
		return domain.NewValidationError("new_password", err.Error(), err)
	}

	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.verifier.Compare(user.HashedPassword, currentPassword); err != nil {
		return auth.ErrInvalidCredentials
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		log.Error("failed to hash new password", slog.String("error", err.Error()))
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	user.HashedPassword = hashed
	user.UpdatedAt = time.Now().UTC()

	if err := s.userStore.Update(ctx, user); err != nil {
		return err
	}

	log.Info("password changed", slog.String("user_id", user.ID.String()))
	return nil
}

// SetProfilePicture records the URL of an uploaded profile picture.
func (s *UserService) SetProfilePicture(ctx context.Context, id uuid.UUID, url string) (*domain.User, error) {
	if err := s.userStore.UpdateProfilePicture(ctx, id, url); err != nil {
		return nil, err
	}
	return s.userStore.GetByID(ctx, id)
}
