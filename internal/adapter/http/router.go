package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/bankrecon/internal/adapter/http/handler"
	"github.com/iho/bankrecon/internal/adapter/http/middleware"
	"github.com/iho/bankrecon/internal/infrastructure/auth"
	"github.com/iho/bankrecon/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	IngestHandler    *handler.IngestHandler
	ReconcileHandler *handler.ReconcileHandler
	MovementHandler  *handler.MovementHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	JWTManager       *auth.JWTManager
	AuthEnabled      bool
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
	}))

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthEnabled && cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Reconciliation
		r.Route("/reconcile", func(r chi.Router) {
			r.Post("/", cfg.ReconcileHandler.Files)
			r.Get("/range", cfg.ReconcileHandler.Range)
		})

		// Movements
		r.Route("/movements", func(r chi.Router) {
			r.Get("/status", cfg.MovementHandler.Status)

			r.Route("/{source}", func(r chi.Router) {
				r.Get("/", cfg.MovementHandler.List)
				r.Get("/stats", cfg.MovementHandler.Stats)
				r.Post("/upload", cfg.IngestHandler.Upload)
				r.Post("/verify", cfg.IngestHandler.Verify)
				r.Post("/import", cfg.IngestHandler.Import)
				r.Patch("/handled", cfg.MovementHandler.SetHandled)
				r.Patch("/{id}/note", cfg.MovementHandler.SetNote)
			})
		})
	})

	return r
}
