package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/adapter/http/handler"
	"github.com/iho/creditledger/internal/adapter/http/middleware"
	"github.com/iho/creditledger/internal/infrastructure/metrics"
	"github.com/iho/creditledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LedgerHandler    *handler.LedgerHandler
	HoldHandler      *handler.HoldHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore // optional
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter // optional
	Metrics          *metrics.Metrics        // optional
	MetricsHandler   http.Handler            // served on /metrics when set
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotency.Wrap)
		}

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/balances/{currency}", cfg.LedgerHandler.GetBalance)
			r.Post("/credits", cfg.LedgerHandler.AddCredit)
			r.Post("/debits", cfg.LedgerHandler.DeductCredit)
			r.Get("/holds", cfg.HoldHandler.ListByUser)
		})

		r.Route("/holds", func(r chi.Router) {
			r.Post("/", cfg.HoldHandler.Create)
			r.Get("/{id}", cfg.HoldHandler.Get)
			r.Post("/{id}/release", cfg.HoldHandler.Release)
			r.Post("/{id}/void", cfg.HoldHandler.Void)
		})
	})

	return r
}

