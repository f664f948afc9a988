package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskCompletion(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	userID := uuid.New()
	afternoon := time.Date(2025, 3, 14, 15, 42, 7, 999, time.UTC)

	t.Run("date truncated to day", func(t *testing.T) {
		t.Parallel()

		completion, err := NewTaskCompletion(taskID, userID, afternoon, 100)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), completion.Date)
		require.NotNil(t, completion.CompletedAt)
	})

	t.Run("zero percent allowed", func(t *testing.T) {
		t.Parallel()

		completion, err := NewTaskCompletion(taskID, userID, afternoon, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, completion.Percentage)
	})

	t.Run("negative percentage rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NewTaskCompletion(taskID, userID, afternoon, -1)
		assert.ErrorIs(t, err, ErrPercentageOutOfRange)
	})

	t.Run("over one hundred rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NewTaskCompletion(taskID, userID, afternoon, 101)
		assert.ErrorIs(t, err, ErrPercentageOutOfRange)
	})

	t.Run("missing task rejected", func(t *testing.T) {
		t.Parallel()

		_, err := NewTaskCompletion(uuid.Nil, userID, afternoon, 100)
		assert.ErrorIs(t, err, ErrCompletionTaskIDEmpty)
	})
}

func TestTruncateToDay(t *testing.T) {
	t.Parallel()

	local := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2025, 3, 15, 1, 30, 0, 0, local) // 2025-03-14T22:30Z
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), TruncateToDay(in))
}
