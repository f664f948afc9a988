package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dayloop/dayloop-api/internal/api"
	apiMiddleware "github.com/dayloop/dayloop-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.sessionService, app.refreshTokenTTL(), app.logger)
	userHandler := api.NewUserHandler(app.userService, app.config.Upload.Dir, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.completionService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh-token", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/logout", authHandler.Logout)

			// Profile endpoints
			r.Get("/users/me", userHandler.Me)
			r.Put("/users/profile", userHandler.UpdateProfile)
			r.Put("/users/profile/change-password", userHandler.ChangePassword)
			r.Post("/users/profile/picture", userHandler.UploadPicture)

			// Task endpoints
			r.Get("/tasks", taskHandler.List)
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks/history", taskHandler.History)
			r.Put("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)
			r.Post("/tasks/{id}/complete", taskHandler.Complete)
		})
	})

	// Uploaded profile pictures are served statically.
	if app.config.Upload.Dir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.config.Upload.Dir)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
