package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/govledger/internal/adapter/http/handler"
	"github.com/iho/govledger/internal/adapter/http/middleware"
	"github.com/iho/govledger/internal/domain"
	"github.com/iho/govledger/internal/infrastructure/metrics"
	"github.com/iho/govledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	HealthHandler     *handler.HealthHandler
	EntityHandler     *handler.EntityHandler
	AccountHandler    *handler.AccountHandler
	LedgerHandler     *handler.LedgerHandler
	JournalHandler    *handler.JournalHandler
	GovernanceHandler *handler.GovernanceHandler
	VaultHandler      *handler.VaultHandler
	EscrowHandler     *handler.EscrowHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// TokenVerifier enables bearer auth. When nil every request runs as
	// the built-in system operator.
	TokenVerifier middleware.TokenVerifier

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	Logger         zerolog.Logger
}

// systemOperator is used when authentication is disabled.
var systemOperator = &domain.Operator{ID: "system", Name: "system", Role: domain.RoleAdmin}

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

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			var failures *prometheus.CounterVec
			if cfg.Metrics != nil {
				failures = cfg.Metrics.AuthFailures
			}
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier, failures))
		} else {
			r.Use(middleware.StaticOperator(systemOperator))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, ttl, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		admin := middleware.RequireRole(domain.RoleAdmin)
		treasurer := middleware.RequireRole(domain.RoleTreasurer)
		signer := middleware.RequireRole(domain.RoleSigner)
		auditor := middleware.RequireRole(domain.RoleAuditor)
		reviewer := middleware.RequireRole(domain.RoleTreasurer, domain.RoleAuditor)

		// Entities
		r.Route("/entities", func(r chi.Router) {
			r.With(admin).Post("/", cfg.EntityHandler.Create)
			r.Get("/", cfg.EntityHandler.List)
			r.Get("/{id}", cfg.EntityHandler.Get)
			r.With(admin).Put("/{id}/status", cfg.EntityHandler.UpdateStatus)
			r.Get("/{id}/balance-sheet", cfg.EntityHandler.BalanceSheet)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.With(treasurer).Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/balance", cfg.AccountHandler.Balance)
			r.With(treasurer).Post("/{id}/deactivate", cfg.AccountHandler.Deactivate)
		})

		// Ledgers
		r.Route("/ledgers", func(r chi.Router) {
			r.With(treasurer).Post("/", cfg.LedgerHandler.Open)
			r.Get("/{id}", cfg.LedgerHandler.Get)
			r.With(admin).Post("/{id}/lock", cfg.LedgerHandler.Lock)
			r.Get("/{id}/entries", cfg.LedgerHandler.Entries)
			r.Get("/{id}/verify", cfg.LedgerHandler.Verify)
		})

		// Direct postings: capital injections and adjustments only.
		// Capital movements go through /proposals.
		r.Route("/journal-entries", func(r chi.Router) {
			r.With(admin).Post("/", cfg.JournalHandler.Post)
			r.Get("/{id}", cfg.JournalHandler.Get)
			r.With(admin).Post("/{id}/reverse", cfg.JournalHandler.Reverse)
		})

		// Governed proposals
		r.Route("/proposals", func(r chi.Router) {
			r.With(treasurer).Post("/", cfg.GovernanceHandler.Submit)
			r.With(reviewer).Post("/evaluate", cfg.GovernanceHandler.Evaluate)
		})

		// Vault
		r.Route("/vault/proposals", func(r chi.Router) {
			r.With(treasurer).Post("/", cfg.VaultHandler.Create)
			r.Get("/{id}", cfg.VaultHandler.Get)
			r.With(signer).Post("/{id}/signatures", cfg.VaultHandler.Sign)
		})

		// Escrow
		r.Route("/escrows", func(r chi.Router) {
			r.With(treasurer).Post("/", cfg.EscrowHandler.Create)
			r.Get("/{id}", cfg.EscrowHandler.Get)
			r.With(treasurer).Post("/{id}/milestones", cfg.EscrowHandler.DefineMilestone)
			r.With(auditor).Post("/{id}/milestones/{index}/release", cfg.EscrowHandler.Release)
		})
	})

	return r
}
