// Package savings exposes the savings and investment endpoints.
package savings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/suprebose/wallet-platform/pkg/handlers/respond"
	"github.com/suprebose/wallet-platform/pkg/models"
)

// SavingsService is the savings operations the handler depends on.
type SavingsService interface {
	LockFixed(ctx context.Context, userID string, amount int64, durationLabel string) (*models.FixedSavingsPosition, error)
	CreateTarget(ctx context.Context, userID, name string, targetAmount, weeklyAmount int64) (*models.TargetSavingsGoal, error)
	ContributeTarget(ctx context.Context, userID, goalID string) (*models.TargetSavingsGoal, error)
	Invest(ctx context.Context, userID, productID string, amount int64) (*models.InvestmentPosition, error)
}

// SavingsHandler holds the dependencies for savings-related handlers.
type SavingsHandler struct {
	Service SavingsService
}

// NewSavingsHandler creates a new SavingsHandler.
func NewSavingsHandler(service SavingsService) *SavingsHandler {
	return &SavingsHandler{Service: service}
}

// Routes mounts the savings endpoints.
func (h *SavingsHandler) Routes(r chi.Router) {
	r.Get("/savings/plans", h.Plans)
	r.Post("/savings/fixed", h.LockFixed)
	r.Post("/savings/targets", h.CreateTarget)
	r.Post("/savings/targets/{goalID}/contribute", h.ContributeTarget)
	r.Get("/investments/products", h.Products)
	r.Post("/investments", h.Invest)
}

// Plans lists the fixed-savings catalog.
func (h *SavingsHandler) Plans(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, models.FixedSavingsPlans)
}

// Products lists the investment catalog.
func (h *SavingsHandler) Products(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, models.InvestmentProducts)
}

// LockFixed locks a fixed-savings deposit.
func (h *SavingsHandler) LockFixed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        string `json:"user_id"`
		Amount        int64  `json:"amount"`
		DurationLabel string `json:"duration_label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	pos, err := h.Service.LockFixed(r.Context(), req.UserID, req.Amount, req.DurationLabel)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, pos)
}

// CreateTarget opens a weekly target-savings goal.
func (h *SavingsHandler) CreateTarget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       string `json:"user_id"`
		Name         string `json:"name"`
		TargetAmount int64  `json:"target_amount"`
		WeeklyAmount int64  `json:"weekly_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	goal, err := h.Service.CreateTarget(r.Context(), req.UserID, req.Name, req.TargetAmount, req.WeeklyAmount)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, goal)
}

// ContributeTarget debits one weekly contribution into a goal.
func (h *SavingsHandler) ContributeTarget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	goal, err := h.Service.ContributeTarget(r.Context(), req.UserID, chi.URLParam(r, "goalID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, goal)
}

// Invest places an investment in a catalog product.
func (h *SavingsHandler) Invest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"user_id"`
		ProductID string `json:"product_id"`
		Amount    int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	pos, err := h.Service.Invest(r.Context(), req.UserID, req.ProductID, req.Amount)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, pos)
}
