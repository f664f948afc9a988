package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors.
var (
	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrTaskUserIDEmpty   = errors.New("task user ID cannot be empty")
	ErrEmptyTaskName     = errors.New("task name cannot be empty")
	ErrInvalidPriority   = errors.New("invalid task priority")
	ErrInvalidRecurrence = errors.New("invalid task recurrence")
)

// Priority is the urgency label attached to a task.
type Priority string

// Valid priorities.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// IsValid reports whether the priority is one of the known labels.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Recurrence labels how a task repeats. It is descriptive only: no component
// expands recurrences into future task instances.
type Recurrence string

// Valid recurrences.
const (
	RecurrenceDaily  Recurrence = "Daily"
	RecurrenceWeekly Recurrence = "Weekly"
	RecurrenceCustom Recurrence = "Custom"
	RecurrenceNone   Recurrence = "None"
)

// IsValid reports whether the recurrence is one of the known labels.
func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceCustom, RecurrenceNone:
		return true
	}
	return false
}

// Task represents a scheduled daily task owned by a single user.
//
// StartTime and EndTime are wall-clock times anchored onto a reference
// calendar date; only the time-of-day is user-editable. The window is
// half-open [StartTime, EndTime): tasks that touch at an endpoint do not
// overlap.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Recurrence  Recurrence `json:"recurrence"`
	// CustomSpec optionally carries a cron expression describing a Custom
	// recurrence. It is validated on input but never evaluated.
	CustomSpec string    `json:"custom_spec,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewTask creates a new Task for the given owner with an anchored time
// window. Empty priority and recurrence fall back to their defaults
// (Medium, Daily). Returns an error if validation fails.
func NewTask(
	userID uuid.UUID,
	name, description string,
	priority Priority,
	start, end time.Time,
	recurrence Recurrence,
) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}
	if recurrence == "" {
		recurrence = RecurrenceDaily
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Priority:    priority,
		StartTime:   start,
		EndTime:     end,
		Recurrence:  recurrence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}
	if t.Name == "" {
		return ErrEmptyTaskName
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if !t.Recurrence.IsValid() {
		return ErrInvalidRecurrence
	}
	if t.StartTime.IsZero() || t.EndTime.IsZero() {
		return ErrInvalidTimeFormat
	}
	if !t.EndTime.After(t.StartTime) {
		return ErrEndBeforeStart
	}
	return nil
}

// Overlaps reports whether two tasks' [start, end) windows intersect.
// Touching endpoints (t.EndTime == other.StartTime) do not overlap.
func (t *Task) Overlaps(other *Task) bool {
	return t.StartTime.Before(other.EndTime) && t.EndTime.After(other.StartTime)
}

// TimeRange renders the task window as "HH:mm - HH:mm" for display.
func (t *Task) TimeRange() string {
	return fmt.Sprintf("%s - %s", FormatClock(t.StartTime), FormatClock(t.EndTime))
}

// Clock is a wall-clock time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// clockRegex accepts HH:mm with hours 00-23 and minutes 00-59.
// A single-digit hour is tolerated, matching the original input format.
var clockRegex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// ParseClock parses a strict HH:mm clock string.
// Returns ErrInvalidTimeFormat (wrapped in a ValidationError) on failure.
func ParseClock(value string) (Clock, error) {
	m := clockRegex.FindStringSubmatch(value)
	if m == nil {
		return Clock{}, NewValidationError("time", fmt.Sprintf("%q is not a valid HH:mm time", value), ErrInvalidTimeFormat)
	}

	var c Clock
	// The regex guarantees both groups are numeric.
	fmt.Sscanf(m[1], "%d", &c.Hour)
	fmt.Sscanf(m[2], "%d", &c.Minute)
	return c, nil
}

// AnchorClock places a clock time onto the calendar date of the given
// reference instant, preserving the reference's location. Seconds and
// sub-second components are zeroed.
func AnchorClock(reference time.Time, c Clock) time.Time {
	return time.Date(
		reference.Year(), reference.Month(), reference.Day(),
		c.Hour, c.Minute, 0, 0,
		reference.Location(),
	)
}

// FormatClock renders a timestamp's time of day as "HH:mm".
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// DayBounds returns the inclusive start and exclusive end instants of the
// calendar day containing t, in t's location. Used to scope overlap checks
// to a single reference date.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
