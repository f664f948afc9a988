package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTask drives the create endpoint and returns the decoded task.
func createTask(t *testing.T, env *apiTestEnv, req TaskRequest) TaskResponse {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/tasks", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var task TaskResponse
	decodeData(t, decodeEnvelope(t, rec), &task)
	return task
}

func TestTaskHandlerCreate(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())

		task := createTask(t, env, TaskRequest{
			Name:      "Deep work",
			Priority:  "High",
			StartTime: "09:00",
			EndTime:   "10:30",
		})

		assert.Equal(t, "Deep work", task.Name)
		assert.Equal(t, "09:00", task.StartTime)
		assert.Equal(t, "10:30", task.EndTime)
		assert.EqualValues(t, "High", task.Priority)
		assert.EqualValues(t, "Daily", task.Recurrence, "recurrence defaults to Daily")
	})

	t.Run("single-digit hour is normalized", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())

		task := createTask(t, env, TaskRequest{
			Name:      "Standup",
			StartTime: "9:05",
			EndTime:   "9:30",
		})
		assert.Equal(t, "09:05", task.StartTime)
		assert.Equal(t, "09:30", task.EndTime)
	})

	t.Run("overlap returns conflicts", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())

		createTask(t, env, TaskRequest{
			Name:      "Deep work",
			StartTime: "09:00",
			EndTime:   "10:00",
		})

		rec := env.do(t, http.MethodPost, "/tasks", TaskRequest{
			Name:      "Standup",
			StartTime: "09:30",
			EndTime:   "10:30",
		})

		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		envl := decodeEnvelope(t, rec)
		assert.False(t, envl.Success)

		var payload struct {
			Conflicts []struct {
				Name string `json:"name"`
				Time string `json:"time"`
			} `json:"conflicts"`
		}
		require.NoError(t, json.Unmarshal(envl.Data, &payload))
		require.Len(t, payload.Conflicts, 1)
		assert.Equal(t, "Deep work", payload.Conflicts[0].Name)
		assert.Equal(t, "09:00 - 10:00", payload.Conflicts[0].Time)
	})

	t.Run("touching windows do not conflict", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())

		createTask(t, env, TaskRequest{Name: "Deep work", StartTime: "09:00", EndTime: "10:00"})
		rec := env.do(t, http.MethodPost, "/tasks", TaskRequest{
			Name:      "Review",
			StartTime: "10:00",
			EndTime:   "11:00",
		})
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("invalid clock", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())

		rec := env.do(t, http.MethodPost, "/tasks", TaskRequest{
			Name:      "Impossible",
			StartTime: "25:00",
			EndTime:   "26:00",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("end before start", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())

		rec := env.do(t, http.MethodPost, "/tasks", TaskRequest{
			Name:      "Backwards",
			StartTime: "10:00",
			EndTime:   "09:00",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad priority rejected by validation", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())

		rec := env.do(t, http.MethodPost, "/tasks", TaskRequest{
			Name:      "Odd",
			Priority:  "Urgent",
			StartTime: "09:00",
			EndTime:   "10:00",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("custom recurrence requires a valid cron spec", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())

		rec := env.do(t, http.MethodPost, "/tasks", TaskRequest{
			Name:       "Weekly sync",
			StartTime:  "09:00",
			EndTime:    "10:00",
			Recurrence: "Custom",
			CustomSpec: "not a cron line",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = env.do(t, http.MethodPost, "/tasks", TaskRequest{
			Name:       "Weekly sync",
			StartTime:  "09:00",
			EndTime:    "10:00",
			Recurrence: "Custom",
			CustomSpec: "0 9 * * MON",
		})
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		rec := env.do(t, http.MethodPost, "/tasks", TaskRequest{
			Name:      "Deep work",
			StartTime: "09:00",
			EndTime:   "10:00",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestTaskHandlerUpdate(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())

		task := createTask(t, env, TaskRequest{Name: "Deep work", StartTime: "09:00", EndTime: "10:00"})

		rec := env.do(t, http.MethodPut, "/tasks/"+task.ID.String(), TaskRequest{
			Name:      "Deeper work",
			StartTime: "09:00",
			EndTime:   "11:00",
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated TaskResponse
		decodeData(t, decodeEnvelope(t, rec), &updated)
		assert.Equal(t, "Deeper work", updated.Name)
		assert.Equal(t, "11:00", updated.EndTime)
	})

	t.Run("foreign task", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		owner := uuid.New()
		env.asUser(owner)
		task := createTask(t, env, TaskRequest{Name: "Deep work", StartTime: "09:00", EndTime: "10:00"})

		env.asUser(uuid.New())
		rec := env.do(t, http.MethodPut, "/tasks/"+task.ID.String(), TaskRequest{
			Name:      "Hijack",
			StartTime: "09:00",
			EndTime:   "10:00",
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		envl := decodeEnvelope(t, rec)
		assert.Equal(t, "You do not own this task", envl.Message)
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())

		rec := env.do(t, http.MethodPut, "/tasks/"+uuid.NewString(), TaskRequest{
			Name:      "Ghost",
			StartTime: "09:00",
			EndTime:   "10:00",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())

		rec := env.do(t, http.MethodPut, "/tasks/not-a-uuid", TaskRequest{
			Name:      "Ghost",
			StartTime: "09:00",
			EndTime:   "10:00",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaskHandlerDelete(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	env.asUser(uuid.New())

	task := createTask(t, env, TaskRequest{Name: "Deep work", StartTime: "09:00", EndTime: "10:00"})

	rec := env.do(t, http.MethodDelete, "/tasks/"+task.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Gone on the second attempt.
	rec = env.do(t, http.MethodDelete, "/tasks/"+task.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskHandlerList(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	owner := uuid.New()
	env.asUser(owner)

	task := createTask(t, env, TaskRequest{Name: "Deep work", StartTime: "09:00", EndTime: "10:00"})
	createTask(t, env, TaskRequest{Name: "Review", StartTime: "11:00", EndTime: "12:00"})

	// Complete one of them for today.
	pct := 75
	rec := env.do(t, http.MethodPost, "/tasks/"+task.ID.String()+"/complete", CompleteTaskRequest{
		Percentage: &pct,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tasks []TaskResponse
	decodeData(t, decodeEnvelope(t, rec), &tasks)
	require.Len(t, tasks, 2)

	byName := map[string]TaskResponse{}
	for _, tk := range tasks {
		byName[tk.Name] = tk
	}
	assert.True(t, byName["Deep work"].CompletedToday)
	assert.Equal(t, 75, byName["Deep work"].TodayPercentage)
	assert.False(t, byName["Review"].CompletedToday)
	assert.Equal(t, 0, byName["Review"].TodayPercentage)

	// Another user sees nothing.
	env.asUser(uuid.New())
	rec = env.do(t, http.MethodGet, "/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks = nil
	decodeData(t, decodeEnvelope(t, rec), &tasks)
	assert.Empty(t, tasks)
}

func TestTaskHandlerComplete(t *testing.T) {
	t.Parallel()

	t.Run("defaults to 100 percent today", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())
		task := createTask(t, env, TaskRequest{Name: "Deep work", StartTime: "09:00", EndTime: "10:00"})

		rec := env.do(t, http.MethodPost, "/tasks/"+task.ID.String()+"/complete", CompleteTaskRequest{})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var completion CompletionResponse
		decodeData(t, decodeEnvelope(t, rec), &completion)
		assert.Equal(t, 100, completion.Percentage)
		assert.Equal(t, apiTestNow.Format(dateLayout), completion.Date)
	})

	t.Run("explicit date", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())
		task := createTask(t, env, TaskRequest{Name: "Deep work", StartTime: "09:00", EndTime: "10:00"})

		date := "2025-03-10"
		rec := env.do(t, http.MethodPost, "/tasks/"+task.ID.String()+"/complete", CompleteTaskRequest{
			Date: &date,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var completion CompletionResponse
		decodeData(t, decodeEnvelope(t, rec), &completion)
		assert.Equal(t, "2025-03-10", completion.Date)
	})

	t.Run("bad date format", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())
		task := createTask(t, env, TaskRequest{Name: "Deep work", StartTime: "09:00", EndTime: "10:00"})

		date := "10/03/2025"
		rec := env.do(t, http.MethodPost, "/tasks/"+task.ID.String()+"/complete", CompleteTaskRequest{
			Date: &date,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("percentage out of range", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())
		task := createTask(t, env, TaskRequest{Name: "Deep work", StartTime: "09:00", EndTime: "10:00"})

		pct := 101
		rec := env.do(t, http.MethodPost, "/tasks/"+task.ID.String()+"/complete", CompleteTaskRequest{
			Percentage: &pct,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("foreign task", func(t *testing.T) {
		t.Parallel()

		env := newAPITestEnv(t)
		env.asUser(uuid.New())
		task := createTask(t, env, TaskRequest{Name: "Deep work", StartTime: "09:00", EndTime: "10:00"})

		env.asUser(uuid.New())
		rec := env.do(t, http.MethodPost, "/tasks/"+task.ID.String()+"/complete", CompleteTaskRequest{})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestTaskHandlerHistory(t *testing.T) {
	t.Parallel()

	env := newAPITestEnv(t)
	env.asUser(uuid.New())

	task := createTask(t, env, TaskRequest{Name: "Deep work", StartTime: "09:00", EndTime: "10:00"})
	env.completionStore.TaskNames[task.ID] = task.Name

	for _, date := range []string{"2025-03-12", "2025-03-13", "2025-03-14"} {
		date := date
		rec := env.do(t, http.MethodPost, "/tasks/"+task.ID.String()+"/complete", CompleteTaskRequest{
			Date: &date,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := env.do(t, http.MethodGet, "/tasks/history", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rows []HistoryEntryResponse
	decodeData(t, decodeEnvelope(t, rec), &rows)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-03-14", rows[0].Date, "newest date first")
	assert.Equal(t, "Deep work", rows[0].TaskName)
}
