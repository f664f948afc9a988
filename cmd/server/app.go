package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dayloop/dayloop-api/internal/config"
	"github.com/dayloop/dayloop-api/internal/platform/postgres"
	"github.com/dayloop/dayloop-api/internal/service"
	"github.com/dayloop/dayloop-api/internal/service/auth"
	"github.com/dayloop/dayloop-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (interfaces, so tests can substitute fakes)
	userStore       store.UserStore
	taskStore       store.TaskStore
	completionStore store.CompletionStore

	// Services
	jwtService        auth.JWTService
	userService       *service.UserService
	sessionService    *service.SessionService
	taskService       *service.TaskService
	completionService *service.CompletionService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established beforehand.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"access_token_lifetime_minutes", cfg.Auth.AccessTokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.completionStore = postgres.NewPostgresCompletionStore(db, logger)

	app.userService = service.NewUserService(app.userStore, app.taskStore, hasher, hasher, logger)
	app.sessionService = service.NewSessionService(db, app.userStore, app.jwtService, logger)
	app.taskService = service.NewTaskService(db, app.taskStore, app.completionStore, logger)
	app.completionService = service.NewCompletionService(app.taskStore, app.completionStore, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// refreshTokenTTL returns the configured refresh token lifetime, used to
// bound the refresh cookie.
func (app *application) refreshTokenTTL() time.Duration {
	return time.Duration(app.config.Auth.RefreshTokenLifetimeMinutes) * time.Minute
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
