package storage

import (
	"context"

	"github.com/suprebose/wallet-platform/pkg/models"
)

// HoldingsUpdate carries the holdings mutated alongside a wallet delta.
// Nil fields are left untouched. Memberships, loans and target goals
// are keyed by ID and put/replaced; fixed savings and investments are
// append-only.
type HoldingsUpdate struct {
	Membership   *models.JoinedGroup
	Loans        []models.Loan
	TargetGoal   *models.TargetSavingsGoal
	FixedSavings *models.FixedSavingsPosition
	Investment   *models.InvestmentPosition
	LinkBank     bool

	// ExpectContributions, when non-nil with a Membership set, requires
	// the stored membership's contributions_made to still equal this
	// value. ExpectPayoutPending requires payout_received to still be
	// false. Both guard against double application of a period
	// evaluation; violation returns ErrStale.
	ExpectContributions *int
	ExpectPayoutPending bool
}

// UserStore manages the per-user ledger records.
type UserStore interface {
	// GetUser retrieves a user's ledger record by ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// CreateUser creates a new ledger record. Creating an existing user
	// is an error.
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)

	// ListUsers retrieves all ledger records.
	ListUsers(ctx context.Context) ([]models.User, error)

	// ClaimToken atomically grants the one-time research token: credits
	// the wallet and sets the claimed flag. A second claim returns
	// ErrAlreadyClaimed with the balance unchanged.
	ClaimToken(ctx context.Context, userID string, amount int64) (*models.User, error)

	// ApplyWalletDelta atomically adjusts the wallet balance and applies
	// the holdings update as one unit. A debit that would take the
	// balance negative returns ErrInsufficientFunds and applies nothing.
	ApplyWalletDelta(ctx context.Context, userID string, delta int64, update *HoldingsUpdate) (*models.User, error)
}
