package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lettervine/lettervine/internal/middleware"
	"github.com/lettervine/lettervine/internal/middleware/metrics"
	"github.com/lettervine/lettervine/internal/setup"
)

// New assembles the chi router with all routes and middleware.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(metrics.Middleware)

	allowedOrigins := deps.Config.Public.AllowedOrigins
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}

	h := deps.Handler

	r.Get("/health_check", h.HealthCheck)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/subscriptions", h.CreateSubscription)
	r.Get("/subscriptions/confirm", h.ConfirmSubscription)

	r.Post("/newsletters", h.PublishNewsletter)

	return r
}
