package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("valid user", func(t *testing.T) {
		t.Parallel()

		user, err := NewUser("Ada Lovelace", "ada", "Ada@Example.COM", "hashed-password")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", user.Email, "email must be normalized")
		assert.Equal(t, "Ada Lovelace", user.Fullname)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("identity fields trimmed", func(t *testing.T) {
		t.Parallel()

		user, err := NewUser("  Ada Lovelace  ", "  ada  ", "  ada@example.com  ", "hashed")
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", user.Fullname)
		assert.Equal(t, "ada", user.Username)
		assert.Equal(t, "ada@example.com", user.Email)
	})

	tests := []struct {
		name     string
		fullname string
		username string
		email    string
		hashed   string
		wantErr  error
	}{
		{name: "empty fullname", fullname: "", username: "ada", email: "ada@example.com", hashed: "h", wantErr: ErrEmptyFullname},
		{name: "short fullname", fullname: "Ada", username: "ada", email: "ada@example.com", hashed: "h", wantErr: ErrFullnameTooShort},
		{name: "empty username", fullname: "Ada Lovelace", username: "", email: "ada@example.com", hashed: "h", wantErr: ErrEmptyUsername},
		{name: "empty email", fullname: "Ada Lovelace", username: "ada", email: "", hashed: "h", wantErr: ErrEmptyEmail},
		{name: "email without at", fullname: "Ada Lovelace", username: "ada", email: "ada.example.com", hashed: "h", wantErr: ErrInvalidEmail},
		{name: "email without domain dot", fullname: "Ada Lovelace", username: "ada", email: "ada@example", hashed: "h", wantErr: ErrInvalidEmail},
		{name: "email with two ats", fullname: "Ada Lovelace", username: "ada", email: "ada@@example.com", hashed: "h", wantErr: ErrInvalidEmail},
		{name: "missing hash", fullname: "Ada Lovelace", username: "ada", email: "ada@example.com", hashed: "", wantErr: ErrEmptyPassword},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewUser(tt.fullname, tt.username, tt.email, tt.hashed)
			assert.ErrorIs(t, err, tt.wantErr)

			// Validation failures carry a field tag for the API layer.
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
			assert.NotEmpty(t, vErr.Field)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ada@example.com", NormalizeEmail("  ADA@Example.Com "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "valid", password: "secret1", wantErr: nil},
		{name: "minimum length", password: "sixsix", wantErr: nil},
		{name: "empty", password: "", wantErr: ErrEmptyPassword},
		{name: "too short", password: "five5", wantErr: ErrPasswordTooShort},
		{name: "too long", password: strings.Repeat("x", 73), wantErr: ErrPasswordTooLong},
		{name: "bcrypt limit boundary", password: strings.Repeat("x", 72), wantErr: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidatePassword(tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
