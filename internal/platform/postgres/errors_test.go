package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dayloop/dayloop-api/internal/store"
)

func pgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil passes through", in: nil, want: nil},
		{name: "no rows", in: sql.ErrNoRows, want: store.ErrNotFound},
		{
			name: "email unique violation",
			in:   pgError(uniqueViolationCode, emailUniqueConstraint),
			want: store.ErrEmailExists,
		},
		{
			name: "username unique violation",
			in:   pgError(uniqueViolationCode, usernameUniqueConstraint),
			want: store.ErrUsernameExists,
		},
		{
			name: "completion unique violation",
			in:   pgError(uniqueViolationCode, completionUniqueConstraint),
			want: store.ErrDuplicate,
		},
		{
			name: "other unique violation",
			in:   pgError(uniqueViolationCode, "some_other_key"),
			want: store.ErrDuplicate,
		},
		{
			name: "overlap exclusion violation",
			in:   pgError(exclusionViolationCode, taskOverlapConstraint),
			want: store.ErrTaskOverlap,
		},
		{
			name: "other exclusion violation",
			in:   pgError(exclusionViolationCode, "unrelated_excl"),
			want: store.ErrInvalidEntity,
		},
		{
			name: "foreign key violation",
			in:   pgError(foreignKeyViolationCode, "tasks_user_id_fkey"),
			want: store.ErrInvalidEntity,
		},
		{
			name: "check violation",
			in:   pgError(checkViolationCode, "tasks_window_check"),
			want: store.ErrInvalidEntity,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MapError(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	t.Run("unknown errors pass through unchanged", func(t *testing.T) {
		t.Parallel()

		plain := errors.New("connection reset")
		assert.Equal(t, plain, MapError(plain))
	})

	t.Run("completion unique violation names the day collision", func(t *testing.T) {
		t.Parallel()

		got := MapError(pgError(uniqueViolationCode, completionUniqueConstraint))
		assert.ErrorIs(t, got, store.ErrDuplicate)
		assert.Contains(t, got.Error(), "completion already recorded")
	})

	t.Run("wrapped pg errors are still classified", func(t *testing.T) {
		t.Parallel()

		wrapped := fmt.Errorf("insert user: %w", pgError(uniqueViolationCode, emailUniqueConstraint))
		assert.ErrorIs(t, MapError(wrapped), store.ErrEmailExists)
	})
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(pgError(uniqueViolationCode, "any")))
	assert.False(t, IsUniqueViolation(pgError(checkViolationCode, "any")))
	assert.False(t, IsUniqueViolation(errors.New("plain")))

	assert.True(t, IsExclusionViolation(pgError(exclusionViolationCode, taskOverlapConstraint)))
	assert.False(t, IsExclusionViolation(pgError(uniqueViolationCode, "any")))
}
