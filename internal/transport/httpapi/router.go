package httpapi

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerly-app/ledgerly/internal/transport/httpapi/handler"
	"github.com/ledgerly-app/ledgerly/internal/transport/httpapi/middleware"
	"github.com/ledgerly-app/ledgerly/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger             *logger.Logger
	AllowedOrigins     []string
	TransactionHandler *handler.TransactionHandler
}

// NewRouter creates the ledger API router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit())
	r.Use(middleware.CSRF())

	r.Get("/health", handler.GetHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/transactions", cfg.TransactionHandler.ListTransactions)
		r.Post("/transactions", cfg.TransactionHandler.CreateTransaction)
		r.Post("/transactions/import", cfg.TransactionHandler.ImportTransactions)
	})

	return r
}
