// Package analytics exposes the scoring and aggregate endpoints. Each
// endpoint reads the event log through the storage layer and runs the
// pure reducers over it.
package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/suprebose/wallet-platform/pkg/analytics"
	"github.com/suprebose/wallet-platform/pkg/handlers/respond"
	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/storage"
)

// AnalyticsHandler holds the dependencies for analytics handlers.
type AnalyticsHandler struct {
	Users  storage.UserStore
	Events storage.EventStore
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(users storage.UserStore, events storage.EventStore) *AnalyticsHandler {
	return &AnalyticsHandler{Users: users, Events: events}
}

// Routes mounts the analytics endpoints.
func (h *AnalyticsHandler) Routes(r chi.Router) {
	r.Get("/analytics/summary", h.Summary)
	r.Get("/analytics/inclusion", h.Inclusion)
	r.Get("/analytics/savings", h.Savings)
	r.Get("/analytics/loans", h.Loans)
	r.Get("/analytics/groups", h.Groups)
	r.Get("/analytics/pools", h.Pools)
	r.Get("/analytics/unbanked", h.Unbanked)
	r.Get("/analytics/regularity", h.Regularity)
	r.Get("/analytics/improvement", h.Improvement)
	r.Get("/analytics/users/{userID}", h.UserProfile)
	r.Get("/events", h.ListEvents)
}

// Summary returns the admin dashboard aggregate.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	events, err := h.Events.QueryEvents(r.Context(), storage.EventFilter{})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, analytics.Summarize(users, events))
}

// Inclusion returns the financial-inclusion metrics.
func (h *AnalyticsHandler) Inclusion(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.QueryEvents(r.Context(), storage.EventFilter{})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, analytics.FinancialInclusion(events))
}

// Savings returns the savings engagement index and volume.
func (h *AnalyticsHandler) Savings(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.QueryEvents(r.Context(), storage.EventFilter{})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, struct {
		Activity analytics.SavingsActivity `json:"activity"`
		Totals   analytics.SavingsTotal    `json:"totals"`
	}{analytics.SavingsMetrics(events), analytics.TotalSavings(events)})
}

// Loans returns the loan prompt-to-decision funnel.
func (h *AnalyticsHandler) Loans(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.QueryEvents(r.Context(), storage.EventFilter{})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, analytics.LoanBehaviorAnalysis(events))
}

// Groups returns the per-group join and contribution tallies.
func (h *AnalyticsHandler) Groups(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.QueryEvents(r.Context(), storage.EventFilter{})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, analytics.RoscaGroupAnalysis(events))
}

// Pools returns the per-group contribution pool summaries.
func (h *AnalyticsHandler) Pools(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.QueryEvents(r.Context(), storage.EventFilter{})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, analytics.RoscaPoolSummary(events))
}

// Unbanked returns users who save without a linked bank account.
func (h *AnalyticsHandler) Unbanked(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.QueryEvents(r.Context(), storage.EventFilter{})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, analytics.UnbankedUsers(events))
}

// Regularity returns the regular-saver share.
func (h *AnalyticsHandler) Regularity(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.QueryEvents(r.Context(), storage.EventFilter{})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, analytics.RegularContributionRate(events))
}

// Improvement returns the savings-improvement share.
func (h *AnalyticsHandler) Improvement(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.QueryEvents(r.Context(), storage.EventFilter{})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, analytics.SavingsImprovement(events))
}

// UserProfile returns the combined behavioral readout for one user.
func (h *AnalyticsHandler) UserProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	events, err := h.Events.QueryEvents(r.Context(), storage.EventFilter{UserID: userID})
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, analytics.UserBehaviorProfile(userID, events))
}

// ListEvents returns the raw event log, optionally filtered by user and
// action type.
func (h *AnalyticsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := storage.EventFilter{
		UserID:     r.URL.Query().Get("user_id"),
		ActionType: models.ActionType(r.URL.Query().Get("action_type")),
	}
	events, err := h.Events.QueryEvents(r.Context(), filter)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, events)
}
