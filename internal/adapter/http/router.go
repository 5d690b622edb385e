package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cultivategames/creditledger/internal/adapter/http/handler"
	"github.com/cultivategames/creditledger/internal/adapter/http/middleware"
	"github.com/cultivategames/creditledger/internal/infrastructure/auth"
	"github.com/cultivategames/creditledger/internal/infrastructure/metrics"
	"github.com/cultivategames/creditledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PlayerHandler     *handler.PlayerHandler
	TransferHandler   *handler.TransferHandler
	RedemptionHandler *handler.RedemptionHandler
	LedgerHandler     *handler.LedgerHandler
	HealthHandler     *handler.HealthHandler

	Logger           zerolog.Logger
	Metrics          *metrics.Metrics
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// Auth is enforced only when JWTManager is set.
	JWTManager *auth.JWTManager
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and telemetry endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Players
		r.Get("/players/lookup", cfg.PlayerHandler.LookupByUsername)
		r.Route("/players/{id}", func(r chi.Router) {
			r.Get("/", cfg.PlayerHandler.GetAccount)
			r.Get("/balance", cfg.PlayerHandler.GetBalance)
			r.Get("/transactions", cfg.PlayerHandler.ListTransactions)

			r.Group(func(r chi.Router) {
				if cfg.JWTManager != nil {
					r.Use(middleware.RequireScope(auth.ScopeAdmin))
				}
				r.Post("/credits", cfg.PlayerHandler.MutateCredits)
				r.Put("/username", cfg.PlayerHandler.SetUsername)
			})
		})

		// Transfers and redemptions
		r.Post("/transfers", cfg.TransferHandler.Create)
		r.Post("/redemptions", cfg.RedemptionHandler.Create)

		r.Get("/skills", cfg.RedemptionHandler.ListSkills)
		r.Get("/leaderboard", cfg.PlayerHandler.Leaderboard)

		// Ledger maintenance
		r.Group(func(r chi.Router) {
			if cfg.JWTManager != nil {
				r.Use(middleware.RequireScope(auth.ScopeAdmin))
			}
			r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		})
	})

	return r
}
