// Package loans exposes the loan endpoints.
package loans

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/suprebose/wallet-platform/pkg/fincalc"
	"github.com/suprebose/wallet-platform/pkg/handlers/respond"
	"github.com/suprebose/wallet-platform/pkg/models"
)

// LoanService is the loan operations the handler depends on.
type LoanService interface {
	Issue(ctx context.Context, userID string, principal int64, purpose, linkedGroupID string) (*models.Loan, error)
	RecordDecision(ctx context.Context, userID string, decision models.Decision, reason string, amount int64, groupID string) error
	RecordRepayment(ctx context.Context, userID, loanID, method string) error
}

// LoansHandler holds the dependencies for loan-related handlers.
type LoansHandler struct {
	Service LoanService
}

// NewLoansHandler creates a new LoansHandler.
func NewLoansHandler(service LoanService) *LoansHandler {
	return &LoansHandler{Service: service}
}

// Routes mounts the loan endpoints.
func (h *LoansHandler) Routes(r chi.Router) {
	r.Get("/loans/quote", h.Quote)
	r.Get("/loans/purposes", h.Purposes)
	r.Post("/loans", h.Issue)
	r.Post("/loans/decision", h.Decision)
	r.Post("/loans/{loanID}/repayment", h.Repayment)
}

// Quote prices a loan without issuing it.
func (h *LoansHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var principal int64
	if _, err := fmt.Sscan(r.URL.Query().Get("principal"), &principal); err != nil {
		http.Error(w, "Invalid principal", http.StatusBadRequest)
		return
	}

	quote, err := fincalc.QuoteLoan(principal)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, quote)
}

// Purposes lists the selectable loan purposes.
func (h *LoansHandler) Purposes(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, models.LoanPurposes)
}

// Issue issues a loan and credits the principal to the wallet.
func (h *LoansHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        string `json:"user_id"`
		Principal     int64  `json:"principal"`
		Purpose       string `json:"purpose"`
		LinkedGroupID string `json:"linked_group_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	loan, err := h.Service.Issue(r.Context(), req.UserID, req.Principal, req.Purpose, req.LinkedGroupID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, loan)
}

// Decision records a user's answer to a loan prompt.
func (h *LoansHandler) Decision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string          `json:"user_id"`
		Decision models.Decision `json:"decision"`
		Reason   string          `json:"reason"`
		Amount   int64           `json:"amount"`
		GroupID  string          `json:"group_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Decision != models.DecisionAccepted && req.Decision != models.DecisionDeclined {
		http.Error(w, "Decision must be accepted or declined", http.StatusBadRequest)
		return
	}

	if err := h.Service.RecordDecision(r.Context(), req.UserID, req.Decision, req.Reason, req.Amount, req.GroupID); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Repayment records a caller-reported loan repayment.
func (h *LoansHandler) Repayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Method string `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.Service.RecordRepayment(r.Context(), req.UserID, chi.URLParam(r, "loanID"), req.Method); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
