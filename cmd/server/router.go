package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kindlyhq/kindly-api/internal/api"
	apiMiddleware "github.com/kindlyhq/kindly-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)
	r.Use(apiMiddleware.Metrics)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.hasher, app.hasher, app.logger)
	taskHandler := api.NewTaskHandler(app.taskStore, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)
				r.Post("/", taskHandler.CreateTask)
				r.Delete("/", taskHandler.BulkDeleteTasks)
				r.Get("/{id}", taskHandler.GetTask)
				r.Put("/{id}", taskHandler.UpdateTask)
				r.Delete("/{id}", taskHandler.DeleteTask)
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
