// Package wallets exposes the user and wallet endpoints.
package wallets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/suprebose/wallet-platform/pkg/handlers/respond"
	"github.com/suprebose/wallet-platform/pkg/models"
)

// WalletService is the wallet operations the handler depends on.
type WalletService interface {
	Register(ctx context.Context, id, name, email string) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ClaimToken(ctx context.Context, userID string) (*models.User, error)
	LinkBank(ctx context.Context, userID, bankName string) (*models.User, error)
	TrackScreenView(ctx context.Context, userID, screenName string, timeSpentSeconds int) error
	TrackFeatureClick(ctx context.Context, userID, featureName string) error
}

// WalletsHandler holds the dependencies for wallet-related handlers.
type WalletsHandler struct {
	Service WalletService
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(service WalletService) *WalletsHandler {
	return &WalletsHandler{Service: service}
}

// Routes mounts the wallet endpoints.
func (h *WalletsHandler) Routes(r chi.Router) {
	r.Post("/users", h.Register)
	r.Get("/users/{userID}", h.GetUser)
	r.Post("/users/{userID}/token", h.ClaimToken)
	r.Post("/users/{userID}/bank", h.LinkBank)
	r.Post("/users/{userID}/track/screen", h.TrackScreen)
	r.Post("/users/{userID}/track/feature", h.TrackFeature)
}

// Register creates a new participant ledger record.
func (h *WalletsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	user, err := h.Service.Register(r.Context(), req.ID, req.Name, req.Email)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, user)
}

// GetUser retrieves a ledger record.
func (h *WalletsHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// ClaimToken grants the one-time research token.
func (h *WalletsHandler) ClaimToken(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.ClaimToken(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// LinkBank marks the user's bank account as linked.
func (h *WalletsHandler) LinkBank(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BankName string `json:"bank_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	user, err := h.Service.LinkBank(r.Context(), chi.URLParam(r, "userID"), req.BankName)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

// TrackScreen records a screen-view event.
func (h *WalletsHandler) TrackScreen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScreenName       string `json:"screen_name"`
		TimeSpentSeconds int    `json:"time_spent_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.Service.TrackScreenView(r.Context(), chi.URLParam(r, "userID"), req.ScreenName, req.TimeSpentSeconds); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TrackFeature records a feature-click event.
func (h *WalletsHandler) TrackFeature(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FeatureName string `json:"feature_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.Service.TrackFeatureClick(r.Context(), chi.URLParam(r, "userID"), req.FeatureName); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
