// Package handlers assembles the HTTP API from the per-domain handler
// packages.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	analyticshandler "github.com/suprebose/wallet-platform/pkg/handlers/analytics"
	groupshandler "github.com/suprebose/wallet-platform/pkg/handlers/groups"
	loanshandler "github.com/suprebose/wallet-platform/pkg/handlers/loans"
	savingshandler "github.com/suprebose/wallet-platform/pkg/handlers/savings"
	walletshandler "github.com/suprebose/wallet-platform/pkg/handlers/wallets"
	"github.com/suprebose/wallet-platform/pkg/middleware"
	"github.com/suprebose/wallet-platform/pkg/storage"
)

// Deps are the wired services the router mounts.
type Deps struct {
	Store   storage.Storage
	Wallet  walletshandler.WalletService
	Engine  groupshandler.LifecycleEngine
	Loans   loanshandler.LoanService
	Savings savingshandler.SavingsService
	Logger  *slog.Logger
}

// NewRouter builds the full API router with logging and rate limiting.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewStructuredLogger(deps.Logger))
	r.Use(middleware.RateLimit(rate.NewLimiter(rate.Every(time.Second/100), 200)))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		walletshandler.NewWalletsHandler(deps.Wallet).Routes(r)
		groupshandler.NewGroupsHandler(deps.Store, deps.Engine).Routes(r)
		loanshandler.NewLoansHandler(deps.Loans).Routes(r)
		savingshandler.NewSavingsHandler(deps.Savings).Routes(r)
		analyticshandler.NewAnalyticsHandler(deps.Store, deps.Store).Routes(r)
	})

	return r
}
