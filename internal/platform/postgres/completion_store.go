package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dayloop/dayloop-api/internal/domain"
	"github.com/dayloop/dayloop-api/internal/platform/logger"
	"github.com/dayloop/dayloop-api/internal/store"
)

// PostgresCompletionStore implements the store.CompletionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCompletionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCompletionStore creates a new PostgreSQL implementation of the
// CompletionStore interface.
func NewPostgresCompletionStore(db store.DBTX, logger *slog.Logger) *PostgresCompletionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCompletionStore{
		db:     db,
		logger: logger.With(slog.String("component", "completion_store")),
	}
}

// Ensure PostgresCompletionStore implements store.CompletionStore interface
var _ store.CompletionStore = (*PostgresCompletionStore)(nil)

// Upsert implements store.CompletionStore.Upsert.
// ON CONFLICT on (task_id, user_id, date) overwrites the percentage and
// completed_at of an existing record, so at most one record exists per
// task per owner per day.
func (s *PostgresCompletionStore) Upsert(
	ctx context.Context,
	completion *domain.TaskCompletion,
) (*domain.TaskCompletion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := completion.Validate(); err != nil {
		log.Warn("completion validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("task_id", completion.TaskID.String()))
		return nil, err
	}

	query := `
		INSERT INTO task_completions
			(id, task_id, user_id, date, completion_percentage, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (task_id, user_id, date) DO UPDATE
		SET completion_percentage = EXCLUDED.completion_percentage,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, task_id, user_id, date, completion_percentage, completed_at, created_at, updated_at
	`

	var saved domain.TaskCompletion
	err := s.db.QueryRowContext(
		ctx,
		query,
		completion.ID,
		completion.TaskID,
		completion.UserID,
		completion.Date,
		completion.Percentage,
		completion.CompletedAt,
		completion.CreatedAt,
		completion.UpdatedAt,
	).Scan(
		&saved.ID,
		&saved.TaskID,
		&saved.UserID,
		&saved.Date,
		&saved.Percentage,
		&saved.CompletedAt,
		&saved.CreatedAt,
		&saved.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert completion",
			slog.String("error", err.Error()),
			slog.String("task_id", completion.TaskID.String()),
			slog.String("user_id", completion.UserID.String()))
		return nil, MapError(err)
	}

	log.Info("completion upserted",
		slog.String("completion_id", saved.ID.String()),
		slog.String("task_id", saved.TaskID.String()),
		slog.Int("percentage", saved.Percentage))
	return &saved, nil
}

// GetForDate implements store.CompletionStore.GetForDate.
func (s *PostgresCompletionStore) GetForDate(
	ctx context.Context,
	taskID, userID uuid.UUID,
	date time.Time,
) (*domain.TaskCompletion, error) {
	query := `
		SELECT id, task_id, user_id, date, completion_percentage, completed_at, created_at, updated_at
		FROM task_completions
		WHERE task_id = $1 AND user_id = $2 AND date = $3
	`

	var completion domain.TaskCompletion
	err := s.db.QueryRowContext(ctx, query, taskID, userID, domain.TruncateToDay(date)).Scan(
		&completion.ID,
		&completion.TaskID,
		&completion.UserID,
		&completion.Date,
		&completion.Percentage,
		&completion.CompletedAt,
		&completion.CreatedAt,
		&completion.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrCompletionNotFound
		}
		return nil, MapError(err)
	}
	return &completion, nil
}

// ListByTask implements store.CompletionStore.ListByTask.
func (s *PostgresCompletionStore) ListByTask(
	ctx context.Context,
	taskID, userID uuid.UUID,
) ([]*domain.TaskCompletion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, user_id, date, completion_percentage, completed_at, created_at, updated_at
		FROM task_completions
		WHERE task_id = $1 AND user_id = $2
		ORDER BY date DESC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID, userID)
	if err != nil {
		log.Error("failed to list completions by task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	completions := []*domain.TaskCompletion{}
	for rows.Next() {
		var completion domain.TaskCompletion
		err := rows.Scan(
			&completion.ID,
			&completion.TaskID,
			&completion.UserID,
			&completion.Date,
			&completion.Percentage,
			&completion.CompletedAt,
			&completion.CreatedAt,
			&completion.UpdatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		completions = append(completions, &completion)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return completions, nil
}

// ListByUser implements store.CompletionStore.ListByUser.
// Each record is joined with its task's name for display.
func (s *PostgresCompletionStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*store.CompletionWithTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT c.id, c.task_id, c.user_id, c.date, c.completion_percentage,
			c.completed_at, c.created_at, c.updated_at, t.name
		FROM task_completions c
		JOIN tasks t ON t.id = c.task_id
		WHERE c.user_id = $1
		ORDER BY c.date DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list completion history",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	history := []*store.CompletionWithTask{}
	for rows.Next() {
		var record store.CompletionWithTask
		err := rows.Scan(
			&record.ID,
			&record.TaskID,
			&record.UserID,
			&record.Date,
			&record.Percentage,
			&record.CompletedAt,
			&record.CreatedAt,
			&record.UpdatedAt,
			&record.TaskName,
		)
		if err != nil {
			return nil, MapError(err)
		}
		history = append(history, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return history, nil
}

// WithTx implements store.CompletionStore.WithTx.
func (s *PostgresCompletionStore) WithTx(tx *sql.Tx) store.CompletionStore {
	return &PostgresCompletionStore{db: tx, logger: s.logger}
}
