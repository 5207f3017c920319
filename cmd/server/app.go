package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	apimiddleware "github.com/phrazzld/docket-api/internal/api/middleware"
	"github.com/phrazzld/docket-api/internal/config"
	"github.com/phrazzld/docket-api/internal/events"
	"github.com/phrazzld/docket-api/internal/platform/metrics"
	"github.com/phrazzld/docket-api/internal/platform/postgres"
	"github.com/phrazzld/docket-api/internal/service"
	"github.com/phrazzld/docket-api/internal/service/auth"
	"github.com/phrazzld/docket-api/internal/store"
	"github.com/phrazzld/docket-api/internal/worker"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Metrics
	registry  *prometheus.Registry
	collector *metrics.Collector

	// Stores (using interfaces for proper abstraction)
	userStore    store.UserStore
	sessionStore store.SessionStore
	taskStore    store.TaskStore

	// Service interfaces
	authService auth.AuthService
	taskService service.TaskService

	// Event system
	eventEmitter events.EventEmitter

	// Background work and request guards
	rateLimiter *apimiddleware.RateLimiter
	reaper      *worker.SessionReaper
}

// newApplication creates an application instance with all dependencies
// initialized. Core dependencies like configuration, logger, and the
// database connection must be established before this is called; the
// constructors panic on nil dependencies rather than limping along.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) *application {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.registry = prometheus.NewRegistry()
	app.collector = metrics.NewCollector(app.registry)

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	app.sessionStore = postgres.NewPostgresSessionStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	// Lifecycle events feed the metrics collector; services emit without
	// knowing metrics exist.
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(metrics.NewEventRecorder(app.collector, logger))
	app.eventEmitter = emitter

	app.authService = auth.NewAuthService(
		app.userStore,
		app.sessionStore,
		auth.NewBcryptVerifier(),
		app.eventEmitter,
		db,
		cfg.Auth,
		logger,
	)
	app.taskService = service.NewTaskService(app.taskStore, app.eventEmitter, db, logger)

	app.rateLimiter = apimiddleware.NewRateLimiter(
		cfg.Auth.RateLimitPerMinute,
		cfg.Auth.RateLimitBurst,
		logger,
	)

	if cfg.Maintenance.SessionReaperEnabled {
		app.reaper = worker.NewSessionReaper(
			app.sessionStore,
			app.collector,
			cfg.Maintenance.SessionReaperInterval(),
			logger,
		)
	}

	logger.Info("application initialized",
		"session_reaper_enabled", cfg.Maintenance.SessionReaperEnabled)
	return app
}

// Run starts the background workers and the HTTP server, handling
// lifecycle and cleanup. It blocks until shutdown completes.
func (app *application) Run(ctx context.Context) error {
	if app.reaper != nil {
		app.reaper.Start()
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.reaper != nil {
		app.reaper.Stop()
	}

	if app.rateLimiter != nil {
		app.rateLimiter.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
