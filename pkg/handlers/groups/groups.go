// Package groups exposes the ROSCA catalog and lifecycle endpoints.
package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/suprebose/wallet-platform/pkg/handlers/respond"
	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/rosca"
	"github.com/suprebose/wallet-platform/pkg/storage"
)

// LifecycleEngine is the group lifecycle surface the handler depends on.
type LifecycleEngine interface {
	Join(ctx context.Context, userID, groupID string) (*models.User, error)
	EvaluatePeriod(ctx context.Context, userID, groupID string) (*rosca.EvaluationResult, error)
	QuoteAdvance(ctx context.Context, userID, groupID string) (*rosca.AdvanceQuote, error)
	LoanAgainstPayout(ctx context.Context, userID, groupID string, principal int64) (*models.Loan, error)
}

// GroupsHandler holds the dependencies for group-related handlers.
type GroupsHandler struct {
	Catalog storage.GroupStore
	Engine  LifecycleEngine
}

// NewGroupsHandler creates a new GroupsHandler.
func NewGroupsHandler(catalog storage.GroupStore, engine LifecycleEngine) *GroupsHandler {
	return &GroupsHandler{Catalog: catalog, Engine: engine}
}

// Routes mounts the group endpoints.
func (h *GroupsHandler) Routes(r chi.Router) {
	r.Get("/groups", h.ListGroups)
	r.Get("/groups/{groupID}", h.GetGroup)
	r.Post("/groups/{groupID}/join", h.Join)
	r.Post("/groups/{groupID}/evaluate", h.Evaluate)
	r.Get("/groups/{groupID}/advance", h.QuoteAdvance)
	r.Post("/groups/{groupID}/advance", h.TakeAdvance)
}

// ListGroups returns the catalog, open groups first.
func (h *GroupsHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Catalog.ListGroups(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Open() && !groups[j].Open()
	})
	respond.JSON(w, http.StatusOK, groups)
}

// GetGroup returns one catalog entry.
func (h *GroupsHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.Catalog.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, group)
}

// Join adds the requesting user to the group.
func (h *GroupsHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	user, err := h.Engine.Join(r.Context(), req.UserID, chi.URLParam(r, "groupID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, user)
}

// Evaluate runs one period evaluation for a membership. Normally driven
// by the deduction consumer; exposed for admin and local runs.
func (h *GroupsHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := h.Engine.EvaluatePeriod(r.Context(), req.UserID, chi.URLParam(r, "groupID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// QuoteAdvance returns the borrowing headroom against a pending payout.
func (h *GroupsHandler) QuoteAdvance(w http.ResponseWriter, r *http.Request) {
	quote, err := h.Engine.QuoteAdvance(r.Context(), r.URL.Query().Get("user_id"), chi.URLParam(r, "groupID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, quote)
}

// TakeAdvance issues a loan against the user's pending payout.
func (h *GroupsHandler) TakeAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"user_id"`
		Principal int64  `json:"principal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	loan, err := h.Engine.LoanAgainstPayout(r.Context(), req.UserID, chi.URLParam(r, "groupID"), req.Principal)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, loan)
}
