// Package respond holds the JSON and error plumbing shared by the
// domain handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/suprebose/wallet-platform/pkg/fincalc"
	"github.com/suprebose/wallet-platform/pkg/loans"
	"github.com/suprebose/wallet-platform/pkg/rosca"
	"github.com/suprebose/wallet-platform/pkg/savings"
	"github.com/suprebose/wallet-platform/pkg/storage"
	"github.com/suprebose/wallet-platform/pkg/wallet"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// Error maps a domain error onto its HTTP status and writes it.
func Error(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusFor(err))
}

// StatusFor maps the domain error taxonomy to HTTP statuses. Unmapped
// errors are treated as internal.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrGroupFull),
		errors.Is(err, storage.ErrAlreadyClaimed),
		errors.Is(err, rosca.ErrAlreadyJoined),
		errors.Is(err, rosca.ErrPayoutReceived),
		errors.Is(err, savings.ErrGoalCompleted):
		return http.StatusConflict
	case errors.Is(err, fincalc.ErrInvalidAmount),
		errors.Is(err, savings.ErrBelowMinimum),
		errors.Is(err, savings.ErrUnknownPlan),
		errors.Is(err, savings.ErrUnknownProduct):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, rosca.ErrNotAMember):
		return http.StatusNotFound
	case errors.Is(err, wallet.ErrRateLimited),
		errors.Is(err, loans.ErrRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}
