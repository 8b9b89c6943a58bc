package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"networth/pkg/ledger"
)

// Options carry router-level configuration.
type Options struct {
	// RiskFreeRate is the annual rate used to project cash yield in the
	// summary. Overridable per request via ?risk_free_rate=.
	RiskFreeRate float64
	// InterpretAPIKey is used for /api/interpret when the request carries
	// no key of its own.
	InterpretAPIKey string
	Logger          *slog.Logger
}

// NewRouter builds the HTTP API router.
func NewRouter(core *ledger.Core, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(recoveryLoggingMiddleware(opts.Logger))
	r.Use(requestLoggingMiddleware(opts.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	h := &handler{core: core, riskFreeRate: opts.RiskFreeRate, interpretAPIKey: opts.InterpretAPIKey}

	r.Get("/api/health", h.health)

	// Positions and portfolio views
	r.Get("/api/positions", h.getPositions)
	r.Post("/api/positions", h.addPosition)
	r.Delete("/api/positions/{id}", h.deletePosition)
	r.Get("/api/summary", h.getSummary)

	// Accounts
	r.Get("/api/accounts", h.getAccounts)
	r.Post("/api/accounts", h.addAccount)
	r.Delete("/api/accounts/{id}", h.deleteAccount)

	// Transaction history
	r.Get("/api/transactions", h.getTransactions)

	// Trade execution
	r.Post("/api/actions", h.executeAction)
	r.Post("/api/interpret", h.interpret)

	// Prices
	r.Post("/api/prices", h.setMarketPrice)
	r.Post("/api/prices/custom", h.setCustomPrice)
	r.Delete("/api/prices/custom/{symbol}", h.deleteCustomPrice)
	r.Post("/api/fx-rates", h.setFXRate)

	return r
}

type handler struct {
	core            *ledger.Core
	riskFreeRate    float64
	interpretAPIKey string
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
