package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dayloop/dayloop-api/internal/store"
)

// Common service-level errors.
var (
	// ErrTaskNotOwned is returned when a user operates on a task that
	// belongs to someone else. This is an authorization failure, distinct
	// from the task not existing.
	ErrTaskNotOwned = errors.New("task does not belong to the user")
)

// TaskConflict summarizes one task blocking a requested time window.
type TaskConflict struct {
	Name      string `json:"name"`
	TimeRange string `json:"time"`
}

// OverlapError reports that a requested task window intersects one or more
// existing tasks. It carries the conflicting tasks' names and formatted
// windows so clients can show exactly what is in the way.
type OverlapError struct {
	Conflicts []TaskConflict
}

// Error implements the error interface.
func (e *OverlapError) Error() string {
	if len(e.Conflicts) == 0 {
		return "task overlaps an existing task"
	}
	names := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		names[i] = fmt.Sprintf("%s (%s)", c.Name, c.TimeRange)
	}
	return "task overlaps existing tasks: " + strings.Join(names, ", ")
}

// Unwrap ties OverlapError into the store taxonomy so callers can classify
// it with errors.Is(err, store.ErrTaskOverlap).
func (e *OverlapError) Unwrap() error {
	return store.ErrTaskOverlap
}
