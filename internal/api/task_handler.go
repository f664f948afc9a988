package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dayloop/dayloop-api/internal/api/shared"
	"github.com/dayloop/dayloop-api/internal/domain"
	"github.com/dayloop/dayloop-api/internal/service"
)

// TaskHandler handles task scheduling and completion API requests.
type TaskHandler struct {
	taskService       *service.TaskService
	completionService *service.CompletionService
	logger            *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(
	taskService *service.TaskService,
	completionService *service.CompletionService,
	logger *slog.Logger,
) *TaskHandler {
	if taskService == nil {
		panic("taskService cannot be nil")
	}
	if completionService == nil {
		panic("completionService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskHandler{
		taskService:       taskService,
		completionService: completionService,
		logger:            logger.With(slog.String("component", "task_handler")),
	}
}

// List handles GET /tasks, returning the user's tasks enriched with
// completion state, newest first.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	views, err := h.taskService.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	out := make([]TaskResponse, len(views))
	for i, view := range views {
		out[i] = NewTaskViewResponse(view)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out, "")
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req TaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, service.CreateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Recurrence:  domain.Recurrence(req.Recurrence),
		CustomSpec:  req.CustomSpec,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task), "Task created successfully")
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req TaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskService.Update(r.Context(), userID, taskID, service.UpdateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Recurrence:  domain.Recurrence(req.Recurrence),
		CustomSpec:  req.CustomSpec,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task), "Task updated successfully")
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, nil, "Task deleted successfully")
}

// Complete handles POST /tasks/{id}/complete. Completing a task twice on
// the same day overwrites the recorded percentage.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req CompleteTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	input := service.MarkCompleteInput{Percentage: req.Percentage}
	if req.Date != nil {
		parsed, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		input.Date = &parsed
	}

	completion, err := h.completionService.MarkComplete(r.Context(), userID, taskID, input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to mark task complete")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCompletionResponse(completion), "Task completion recorded")
}

// History handles GET /tasks/history, returning the user's completion
// records across all tasks, newest date first.
func (h *TaskHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, h.logger)
	if !ok {
		return
	}

	rows, err := h.completionService.History(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load completion history")
		return
	}

	out := make([]HistoryEntryResponse, len(rows))
	for i, row := range rows {
		out[i] = NewHistoryEntryResponse(row)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out, "")
}
