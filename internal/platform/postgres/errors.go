package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dayloop/dayloop-api/internal/store"
)

// PostgreSQL error codes.
const (
	// uniqueViolationCode is the error code for unique constraint violations.
	uniqueViolationCode = "23505"

	// exclusionViolationCode is the error code for exclusion constraint
	// violations; raised by the tasks_no_overlap guard.
	exclusionViolationCode = "23P01"

	// foreignKeyViolationCode is the error code for foreign key violations.
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the error code for check constraint violations.
	checkViolationCode = "23514"

	// notNullViolationCode is the error code for not null violations.
	notNullViolationCode = "23502"
)

// Constraint names referenced when classifying violations.
const (
	emailUniqueConstraint      = "users_email_lower_idx"
	usernameUniqueConstraint   = "users_username_key"
	completionUniqueConstraint = "task_completions_task_user_date_key"
	taskOverlapConstraint      = "tasks_no_overlap"
)

// MapError maps a database error to the store error taxonomy.
// It wraps the original error to preserve context for debugging.
// Every query in this package routes its error result through here.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			switch pgErr.ConstraintName {
			case emailUniqueConstraint:
				return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
			case usernameUniqueConstraint:
				return fmt.Errorf("%w: %v", store.ErrUsernameExists, err)
			case completionUniqueConstraint:
				// Only reachable outside the upsert path; the day's
				// record already exists.
				return fmt.Errorf("%w: completion already recorded for this day: %v",
					store.ErrDuplicate, err)
			}
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case exclusionViolationCode:
			if strings.Contains(pgErr.ConstraintName, taskOverlapConstraint) {
				return fmt.Errorf("%w: %v", store.ErrTaskOverlap, err)
			}
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		case foreignKeyViolationCode:
			return fmt.Errorf("%w: foreign key violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case checkViolationCode:
			return fmt.Errorf("%w: check constraint violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case notNullViolationCode:
			return fmt.Errorf("%w: not null violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ColumnName, err)
		}
	}

	return err
}

// IsUniqueViolation checks if the given error is a unique constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsExclusionViolation checks if the given error is an exclusion constraint
// violation, such as the task overlap guard firing.
func IsExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == exclusionViolationCode
}

// CheckRowsAffected examines the number of rows affected by a database
// operation. If no rows were affected, it returns notFoundErr; UPDATE and
// DELETE use this to detect that the target record does not exist.
func CheckRowsAffected(result sql.Result, notFoundErr error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundErr
	}
	return nil
}
