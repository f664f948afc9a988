package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dayloop/dayloop-api/internal/domain"
	"github.com/dayloop/dayloop-api/internal/service"
	"github.com/dayloop/dayloop-api/internal/service/auth"
	"github.com/dayloop/dayloop-api/internal/store"
)

// newUserValidationError produces the error a domain entity check emits,
// as opposed to one built at the request boundary.
func newUserValidationError() error {
	_, err := domain.NewUser("Ada Lovelace", "ada", "not-an-email", "hashed")
	return err
}

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation error", err: domain.NewValidationError("time", "bad clock", domain.ErrInvalidTimeFormat), want: http.StatusBadRequest},
		{name: "invalid id", err: domain.ErrInvalidID, want: http.StatusBadRequest},
		{name: "user entity validation failure", err: newUserValidationError(), want: http.StatusBadRequest},
		{name: "invalid credentials", err: auth.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "missing token", err: auth.ErrMissingToken, want: http.StatusUnauthorized},
		{name: "expired token", err: auth.ErrExpiredToken, want: http.StatusUnauthorized},
		{name: "refresh mismatch", err: auth.ErrRefreshTokenMismatch, want: http.StatusUnauthorized},
		{name: "task not owned", err: service.ErrTaskNotOwned, want: http.StatusForbidden},
		{name: "user not found", err: store.ErrUserNotFound, want: http.StatusNotFound},
		{name: "task not found", err: store.ErrTaskNotFound, want: http.StatusNotFound},
		{name: "email exists", err: store.ErrEmailExists, want: http.StatusConflict},
		{name: "username exists", err: store.ErrUsernameExists, want: http.StatusConflict},
		{name: "task overlap", err: store.ErrTaskOverlap, want: http.StatusConflict},
		{name: "overlap error wrapper", err: &service.OverlapError{}, want: http.StatusConflict},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("validation errors surface their field message", func(t *testing.T) {
		t.Parallel()

		err := domain.NewValidationError("time", `"25:00" is not a valid HH:mm time`, domain.ErrInvalidTimeFormat)
		assert.Equal(t, `"25:00" is not a valid HH:mm time`, GetSafeErrorMessage(err))
	})

	t.Run("internal detail never leaks", func(t *testing.T) {
		t.Parallel()

		err := errors.New("pq: connection to 10.0.0.5 refused")
		msg := GetSafeErrorMessage(err)
		assert.Equal(t, "An unexpected error occurred", msg)
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := errors.New(
		"Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag")
	assert.Equal(t, "Invalid Email: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}
