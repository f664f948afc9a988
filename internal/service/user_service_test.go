package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dayloop/dayloop-api/internal/domain"
	"github.com/dayloop/dayloop-api/internal/mocks"
	"github.com/dayloop/dayloop-api/internal/service/auth"
	"github.com/dayloop/dayloop-api/internal/store"
)

func newUserServiceForTest(t *testing.T) (*UserService, *mocks.MockUserStore, *mocks.MockTaskStore) {
	t.Helper()

	userStore := mocks.NewMockUserStore()
	taskStore := mocks.NewMockTaskStore()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	svc := NewUserService(userStore, taskStore, hasher, hasher, slog.Default())
	return svc, userStore, taskStore
}

func registerTestUser(t *testing.T, svc *UserService, email string) *domain.User {
	t.Helper()

	user, err := svc.Register(context.Background(), RegisterInput{
		Fullname: "Ada Lovelace",
		Username: "ada-" + uuid.NewString()[:8],
		Email:    email,
		Password: "secret1",
	})
	require.NoError(t, err)
	return user
}

func TestUserServiceRegister(t *testing.T) {
	t.Parallel()

	t.Run("success hashes password", func(t *testing.T) {
		t.Parallel()

		svc, userStore, _ := newUserServiceForTest(t)
		user := registerTestUser(t, svc, "ada@example.com")

		assert.NotEqual(t, "secret1", user.HashedPassword)
		assert.Contains(t, userStore.Users, user.ID)
		assert.True(t, svc.VerifyPassword(user, "secret1"))
	})

	t.Run("short password rejected", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newUserServiceForTest(t)
		_, err := svc.Register(context.Background(), RegisterInput{
			Fullname: "Ada Lovelace",
			Username: "ada",
			Email:    "ada@example.com",
			Password: "nope",
		})

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "password", vErr.Field)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newUserServiceForTest(t)
		registerTestUser(t, svc, "ada@example.com")

		_, err := svc.Register(context.Background(), RegisterInput{
			Fullname: "Another Person",
			Username: "someone-else",
			Email:    "ada@example.com",
			Password: "secret1",
		})
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newUserServiceForTest(t)
		_, err := svc.Register(context.Background(), RegisterInput{
			Fullname: "Ada Lovelace",
			Username: "ada",
			Email:    "not-an-email",
			Password: "secret1",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})
}

func TestUserServiceAuthenticate(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newUserServiceForTest(t)
		created := registerTestUser(t, svc, "ada@example.com")

		user, err := svc.Authenticate(context.Background(), "ada@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newUserServiceForTest(t)
		registerTestUser(t, svc, "ada@example.com")

		_, err := svc.Authenticate(context.Background(), "ADA@Example.COM", "secret1")
		assert.NoError(t, err)
	})

	t.Run("unknown email yields generic error", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newUserServiceForTest(t)
		_, err := svc.Authenticate(context.Background(), "ghost@example.com", "secret1")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("wrong password yields the same generic error", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newUserServiceForTest(t)
		registerTestUser(t, svc, "ada@example.com")

		_, err := svc.Authenticate(context.Background(), "ada@example.com", "wrong-password")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestUserServiceGetByID(t *testing.T) {
	t.Parallel()

	svc, _, taskStore := newUserServiceForTest(t)
	created := registerTestUser(t, svc, "ada@example.com")

	for i := 0; i < 3; i++ {
		task, err := domain.NewTask(created.ID, "Task", "", domain.PriorityLow,
			domain.AnchorClock(domain.TruncateToDay(created.CreatedAt).AddDate(0, 0, i), domain.Clock{Hour: 9}),
			domain.AnchorClock(domain.TruncateToDay(created.CreatedAt).AddDate(0, 0, i), domain.Clock{Hour: 10}),
			domain.RecurrenceDaily)
		require.NoError(t, err)
		taskStore.Add(task)
	}

	user, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, user.TasksCount)

	_, err = svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserServiceChangePassword(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newUserServiceForTest(t)
		created := registerTestUser(t, svc, "ada@example.com")

		err := svc.ChangePassword(context.Background(), created.ID, "secret1", "new-secret")
		require.NoError(t, err)

		_, err = svc.Authenticate(context.Background(), "ada@example.com", "new-secret")
		assert.NoError(t, err)
		_, err = svc.Authenticate(context.Background(), "ada@example.com", "secret1")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("wrong current password rejected", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newUserServiceForTest(t)
		created := registerTestUser(t, svc, "ada@example.com")

		err := svc.ChangePassword(context.Background(), created.ID, "not-it", "new-secret")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("short new password rejected", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newUserServiceForTest(t)
		created := registerTestUser(t, svc, "ada@example.com")

		err := svc.ChangePassword(context.Background(), created.ID, "secret1", "tiny")
		var vErr *domain.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestUserServiceUpdateProfile(t *testing.T) {
	t.Parallel()

	svc, _, _ := newUserServiceForTest(t)
	created := registerTestUser(t, svc, "ada@example.com")

	updated, err := svc.UpdateProfile(context.Background(), created.ID, ProfileInput{
		Fullname: "Ada King-Noel",
		Username: "countess",
		Email:    "Countess@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada King-Noel", updated.Fullname)
	assert.Equal(t, "countess", updated.Username)
	assert.Equal(t, "countess@example.com", updated.Email, "email must be normalized")
}

func TestUserServiceSetProfilePicture(t *testing.T) {
	t.Parallel()

	svc, _, _ := newUserServiceForTest(t)
	created := registerTestUser(t, svc, "ada@example.com")

	user, err := svc.SetProfilePicture(context.Background(), created.ID, "/uploads/abc.png")
	require.NoError(t, err)
	require.NotNil(t, user.ProfilePictureURL)
	assert.Equal(t, "/uploads/abc.png", *user.ProfilePictureURL)
}
