package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dayloop/dayloop-api/internal/api/shared"
	"github.com/dayloop/dayloop-api/internal/mocks"
	"github.com/dayloop/dayloop-api/internal/service"
	"github.com/dayloop/dayloop-api/internal/service/auth"
)

// apiTestNow fixes "today" for handler tests so clock anchoring and
// completion dates are deterministic.
var apiTestNow = time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

// envelope mirrors the response wrapper for decoding in tests.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

// apiTestEnv wires handlers over mock stores behind a real router, so
// tests exercise routing, path parameters, and the full request cycle.
type apiTestEnv struct {
	userStore       *mocks.MockUserStore
	taskStore       *mocks.MockTaskStore
	completionStore *mocks.MockCompletionStore

	userService       *service.UserService
	sessionService    *service.SessionService
	taskService       *service.TaskService
	completionService *service.CompletionService

	router http.Handler

	// currentUser is injected into the request context in place of the
	// JWT middleware. Zero means unauthenticated.
	currentUser uuid.UUID
}

func newAPITestEnv(t *testing.T) *apiTestEnv {
	t.Helper()

	env := &apiTestEnv{
		userStore:       mocks.NewMockUserStore(),
		taskStore:       mocks.NewMockTaskStore(),
		completionStore: mocks.NewMockCompletionStore(),
	}

	log := slog.Default()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	jwtSvc := auth.NewTestJWTService(
		"handler-test-access-secret-0123456789",
		"handler-test-refresh-secret-0123456789",
		time.Hour, 24*time.Hour, nil)

	env.userService = service.NewUserService(env.userStore, env.taskStore, hasher, hasher, log)
	env.sessionService = service.NewTestSessionService(env.userStore, jwtSvc, log)
	env.taskService = service.NewTestTaskService(env.taskStore, env.completionStore, log,
		func() time.Time { return apiTestNow })
	env.completionService = service.NewCompletionService(env.taskStore, env.completionStore, log).
		WithTimeFunc(func() time.Time { return apiTestNow })

	authHandler := NewAuthHandler(env.userService, env.sessionService, 24*time.Hour, log)
	taskHandler := NewTaskHandler(env.taskService, env.completionService, log)
	userHandler := NewUserHandler(env.userService, t.TempDir(), log)

	r := chi.NewRouter()
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/refresh-token", authHandler.RefreshToken)

	r.Group(func(r chi.Router) {
		r.Use(env.injectUser)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/users/me", userHandler.Me)
		r.Put("/users/profile", userHandler.UpdateProfile)
		r.Put("/users/profile/change-password", userHandler.ChangePassword)
		r.Get("/tasks", taskHandler.List)
		r.Post("/tasks", taskHandler.Create)
		r.Get("/tasks/history", taskHandler.History)
		r.Put("/tasks/{id}", taskHandler.Update)
		r.Delete("/tasks/{id}", taskHandler.Delete)
		r.Post("/tasks/{id}/complete", taskHandler.Complete)
	})

	env.router = r
	return env
}

// injectUser stands in for the JWT middleware.
func (e *apiTestEnv) injectUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if e.currentUser != uuid.Nil {
			ctx := context.WithValue(r.Context(), shared.UserIDContextKey, e.currentUser)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func (e *apiTestEnv) asUser(id uuid.UUID) {
	e.currentUser = id
}

// do performs a request against the test router with an optional JSON
// body and returns the recorder.
func (e *apiTestEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope parses the response wrapper and checks it is internally
// consistent with the HTTP status.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, rec.Code, env.StatusCode, "envelope statusCode must mirror the HTTP status")
	require.Equal(t, rec.Code < 400, env.Success)
	return env
}

// decodeData unmarshals the envelope's data payload into out.
func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// registerAndLogin registers a user through the API and logs them in,
// returning the auth response and the login recorder for cookie checks.
func (e *apiTestEnv) registerAndLogin(t *testing.T, email string) (AuthResponse, *httptest.ResponseRecorder) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/register", RegisterRequest{
		Fullname: "Grace Hopper",
		Username: "grace-" + uuid.NewString()[:8],
		Email:    email,
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/auth/login", LoginRequest{
		Email:    email,
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var authResp AuthResponse
	decodeData(t, decodeEnvelope(t, rec), &authResp)
	return authResp, rec
}
