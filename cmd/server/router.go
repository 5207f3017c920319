package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/phrazzld/docket-api/internal/api"
	apimiddleware "github.com/phrazzld/docket-api/internal/api/middleware"
	"github.com/phrazzld/docket-api/internal/platform/metrics"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(apimiddleware.TraceMiddleware)
	r.Use(apimiddleware.Metrics(app.collector))

	authHandler := api.NewAuthHandler(app.authService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	healthHandler := api.NewHealthHandler(app.db, app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.authService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints. Register and login sit behind the per-client
		// rate limiter. Logout stays outside the session guard so that
		// expired and revoked tokens can still log out.
		r.Group(func(r chi.Router) {
			r.Use(app.rateLimiter.Limit)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})
		r.Post("/logout", authHandler.Logout)
		r.Get("/health", healthHandler.Check)

		// Protected endpoints.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/verify", authHandler.Verify)
			r.Get("/tasks", taskHandler.ListTasks)
			r.Post("/tasks", taskHandler.CreateTask)
			r.Put("/tasks/{id}", taskHandler.UpdateTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)
		})
	})

	// Prometheus scrapes; served off the application registry so only
	// docket metrics appear.
	r.Method(http.MethodGet, "/metrics", metrics.Handler(app.registry))

	return r
}
