// Package server assembles the HTTP router.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"review-sentiment/internal/handlers"
	"review-sentiment/internal/logging"
	"review-sentiment/internal/metrics"
	"review-sentiment/internal/service"
)

const ServiceName = "review-sentiment"

type Deps struct {
	Reviews        *service.ReviewService
	Logger         *slog.Logger
	Registry       *prometheus.Registry
	HTTPMetrics    *metrics.HTTPMetrics
	MaxBodyBytes   int64
	AllowedOrigins []string
}

func NewRouter(d Deps) http.Handler {
	reviewHandler := handlers.NewReviewHandler(d.Reviews, d.MaxBodyBytes, d.Logger)
	healthHandler := handlers.NewHealthHandler(d.Reviews, ServiceName, d.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(logging.RequestIDMiddleware)
	r.Use(logging.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	if d.HTTPMetrics != nil {
		r.Use(d.HTTPMetrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", logging.RequestIDHeader},
		ExposedHeaders: []string{logging.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler.Health)
	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Registry))
	}

	r.Post("/reviews", reviewHandler.CreateReview)
	r.Get("/reviews", reviewHandler.ListReviews)

	return r
}
