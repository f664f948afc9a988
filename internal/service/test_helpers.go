package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/dayloop/dayloop-api/internal/service/auth"
	"github.com/dayloop/dayloop-api/internal/store"
)

// passthroughTx invokes the function directly with a nil transaction.
// Mock stores ignore the transaction handle, so tests exercise the same
// code path without a database connection.
func passthroughTx(ctx context.Context, _ *sql.DB, fn store.TxFn) error {
	return fn(ctx, nil)
}

// NewTestSessionService creates a SessionService whose transactional
// sections run without a database. Intended for tests.
func NewTestSessionService(userStore store.UserStore, jwtService auth.JWTService, logger *slog.Logger) *SessionService {
	s := NewSessionService(&sql.DB{}, userStore, jwtService, logger)
	s.runInTx = passthroughTx
	return s
}

// NewTestTaskService creates a TaskService whose transactional sections
// run without a database and whose clock is fixed when timeFunc is
// non-nil. Intended for tests.
func NewTestTaskService(
	taskStore store.TaskStore,
	completionStore store.CompletionStore,
	logger *slog.Logger,
	timeFunc func() time.Time,
) *TaskService {
	s := NewTaskService(&sql.DB{}, taskStore, completionStore, logger)
	s.runInTx = passthroughTx
	if timeFunc != nil {
		s.timeFunc = timeFunc
	}
	return s
}
