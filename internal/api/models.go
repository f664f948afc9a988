package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/dayloop/dayloop-api/internal/domain"
	"github.com/dayloop/dayloop-api/internal/service"
	"github.com/dayloop/dayloop-api/internal/store"
)

// dateLayout is the wire format for calendar days.
const dateLayout = "2006-01-02"

// RegisterRequest defines the payload for the registration endpoint.
type RegisterRequest struct {
	Fullname string `json:"fullname" validate:"required,min=6"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
// The token may come from the body or from the refresh cookie; the body is
// optional when the cookie is present.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest defines the payload for profile updates.
type UpdateProfileRequest struct {
	Fullname string `json:"fullname" validate:"required,min=6"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email"    validate:"required,email"`
}

// ChangePasswordRequest defines the payload for password changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6,max=72"`
}

// TaskRequest defines the payload for creating or updating a task.
// StartTime and EndTime are wall-clock strings in HH:mm form.
type TaskRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=High Medium Low"`
	StartTime   string `json:"start_time"  validate:"required"`
	EndTime     string `json:"end_time"    validate:"required"`
	Recurrence  string `json:"recurrence"  validate:"omitempty,oneof=Daily Weekly Custom None"`
	CustomSpec  string `json:"custom_spec"`
}

// CompleteTaskRequest defines the payload for marking a task complete.
// Both fields are optional: percentage defaults to 100 and date to today.
type CompleteTaskRequest struct {
	Percentage *int    `json:"completion_percentage" validate:"omitempty,min=0,max=100"`
	Date       *string `json:"date"`
}

// UserResponse is the client-facing view of a user. The hashed password
// and refresh token never appear here.
type UserResponse struct {
	ID                uuid.UUID `json:"id"`
	Fullname          string    `json:"fullname"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	TasksCount        int       `json:"tasks_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewUserResponse builds a UserResponse from a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:                user.ID,
		Fullname:          user.Fullname,
		Username:          user.Username,
		Email:             user.Email,
		ProfilePictureURL: user.ProfilePictureURL,
		TasksCount:        user.TasksCount,
		CreatedAt:         user.CreatedAt,
	}
}

// ChangePasswordResponse tells the client that its sessions are now built
// on a stale credential and a fresh login is expected.
type ChangePasswordResponse struct {
	RequireReLogin bool `json:"requireReLogin"`
}

// AuthResponse is returned by login and refresh: the token pair plus the
// authenticated user.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         UserResponse `json:"user"`
}

// TaskResponse is the client-facing view of a task. The time window is
// rendered as HH:mm clock strings; completion fields are filled by list
// endpoints.
type TaskResponse struct {
	ID              uuid.UUID            `json:"id"`
	Name            string               `json:"name"`
	Description     string               `json:"description,omitempty"`
	Priority        domain.Priority      `json:"priority"`
	StartTime       string               `json:"start_time"`
	EndTime         string               `json:"end_time"`
	Recurrence      domain.Recurrence    `json:"recurrence"`
	CustomSpec      string               `json:"custom_spec,omitempty"`
	CompletedToday  bool                 `json:"completed_today"`
	TodayPercentage int                  `json:"today_percentage"`
	History         []CompletionResponse `json:"history,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// NewTaskResponse builds a TaskResponse from a domain task.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Priority:    task.Priority,
		StartTime:   domain.FormatClock(task.StartTime),
		EndTime:     domain.FormatClock(task.EndTime),
		Recurrence:  task.Recurrence,
		CustomSpec:  task.CustomSpec,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// NewTaskViewResponse builds a TaskResponse from a completion-enriched
// task view.
func NewTaskViewResponse(view *service.TaskView) TaskResponse {
	resp := NewTaskResponse(view.Task)
	resp.CompletedToday = view.CompletedToday
	resp.TodayPercentage = view.TodayPercentage
	resp.History = make([]CompletionResponse, len(view.History))
	for i, c := range view.History {
		resp.History[i] = NewCompletionResponse(c)
	}
	return resp
}

// CompletionResponse is the client-facing view of one completion record.
type CompletionResponse struct {
	ID          uuid.UUID  `json:"id"`
	TaskID      uuid.UUID  `json:"task_id"`
	Date        string     `json:"date"`
	Percentage  int        `json:"completion_percentage"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewCompletionResponse builds a CompletionResponse from a domain record.
func NewCompletionResponse(c *domain.TaskCompletion) CompletionResponse {
	return CompletionResponse{
		ID:          c.ID,
		TaskID:      c.TaskID,
		Date:        c.Date.Format(dateLayout),
		Percentage:  c.Percentage,
		CompletedAt: c.CompletedAt,
	}
}

// HistoryEntryResponse is one row of the user's completion history,
// joined with the task's name.
type HistoryEntryResponse struct {
	TaskID      uuid.UUID  `json:"task_id"`
	TaskName    string     `json:"task_name"`
	Date        string     `json:"date"`
	Percentage  int        `json:"completion_percentage"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewHistoryEntryResponse builds a HistoryEntryResponse from a joined
// store row.
func NewHistoryEntryResponse(row *store.CompletionWithTask) HistoryEntryResponse {
	return HistoryEntryResponse{
		TaskID:      row.TaskID,
		TaskName:    row.TaskName,
		Date:        row.Date.Format(dateLayout),
		Percentage:  row.Percentage,
		CompletedAt: row.CompletedAt,
	}
}
