package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/cashstock/internal/adapter/http/handler"
	"github.com/iho/cashstock/internal/adapter/http/middleware"
	"github.com/iho/cashstock/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	KioskHandler       *handler.KioskHandler
	StockHandler       *handler.StockHandler
	ReservationHandler *handler.ReservationHandler
	MovementHandler    *handler.MovementHandler
	CurrencyHandler    *handler.CurrencyHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	RateLimiter        *middleware.RateLimiter
	Logging            *middleware.LoggingMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", cfg.HealthHandler.Liveness)
		r.Get("/ready", cfg.HealthHandler.Readiness)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		r.Get("/currencies", cfg.CurrencyHandler.List)

		// Kiosks and their per-currency stock
		r.Route("/kiosks", func(r chi.Router) {
			r.Post("/", cfg.KioskHandler.Create)
			r.Get("/", cfg.KioskHandler.List)
			r.Get("/{kioskID}", cfg.KioskHandler.Get)
			r.Delete("/{kioskID}", cfg.KioskHandler.Deactivate)

			r.Route("/{kioskID}/stock/{currency}", func(r chi.Router) {
				r.Get("/", cfg.StockHandler.Status)
				r.Get("/quote", cfg.ReservationHandler.Quote)
				r.Get("/composable", cfg.StockHandler.Composable)
				r.Get("/consistency", cfg.StockHandler.Consistency)
				r.Post("/deposits", cfg.StockHandler.Deposit)
				r.Post("/withdrawals", cfg.StockHandler.Withdraw)
			})
		})

		// Reservations
		r.Post("/reservations", cfg.ReservationHandler.Reserve)

		// Movements
		r.Route("/movements", func(r chi.Router) {
			r.Get("/", cfg.MovementHandler.List)
			r.Get("/{movementID}", cfg.MovementHandler.Get)
			r.Post("/{movementID}/confirm", cfg.ReservationHandler.Confirm)
			r.Post("/{movementID}/cancel", cfg.ReservationHandler.Cancel)
		})

		// Payment collaborator webhook
		r.Post("/payments/resolved", cfg.ReservationHandler.PaymentResolved)
	})

	return r
}
