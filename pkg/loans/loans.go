// Package loans issues loans and records the prompt/decision/repayment
// events the conversion analytics are built from.
package loans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/suprebose/wallet-platform/pkg/fincalc"
	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/scheduler"
	"github.com/suprebose/wallet-platform/pkg/storage"
)

// ErrRateLimited is returned when loan issuance exceeds the
// service-wide rate limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// Prompt reasons, recorded on loan_prompt_shown events and folded into
// the per-reason acceptance analytics.
const (
	ReasonRoscaJoin     = "rosca_join"
	ReasonRoscaPayment  = "rosca_payment"
	ReasonTargetSavings = "target_savings"
	ReasonInvestment    = "investment"
)

// repaymentWindow is how long a borrower has before a loan falls due.
const repaymentWindow = 30 * 24 * time.Hour

// Service implements loan issuance and event recording.
type Service struct {
	users        storage.UserStore
	events       storage.EventStore
	clock        scheduler.Clock
	logger       *slog.Logger
	issueLimiter *rate.Limiter
}

// New creates a loan Service.
func New(users storage.UserStore, events storage.EventStore, clock scheduler.Clock, logger *slog.Logger) *Service {
	return &Service{
		users:        users,
		events:       events,
		clock:        clock,
		logger:       logger,
		issueLimiter: rate.NewLimiter(rate.Every(time.Second), 25),
	}
}

// Issue prices a loan at the fixed rate, credits the wallet with the
// principal (the borrower receives the principal and owes the total)
// and appends the loan_taken event. linkedGroupID ties a ROSCA advance
// to its group for net settlement at payout time.
func (s *Service) Issue(ctx context.Context, userID string, principal int64, purpose, linkedGroupID string) (*models.Loan, error) {
	if !s.issueLimiter.Allow() {
		return nil, fmt.Errorf("loan issuance: %w", ErrRateLimited)
	}

	quote, err := fincalc.QuoteLoan(principal)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	loan := models.Loan{
		ID:              uuid.New().String(),
		Principal:       quote.Principal,
		Interest:        quote.Interest,
		TotalRepayable:  quote.Total,
		InterestPercent: fincalc.LoanInterestPercent,
		Purpose:         purpose,
		LinkedGroupID:   linkedGroupID,
		IssuedAt:        now,
		Status:          models.LoanActive,
		DueAt:           now.Add(repaymentWindow),
	}

	user, err := s.users.ApplyWalletDelta(ctx, userID, loan.Principal, &storage.HoldingsUpdate{Loans: []models.Loan{loan}})
	if err != nil {
		return nil, fmt.Errorf("failed to credit loan principal: %w", err)
	}

	ev := models.NewEvent(user, &models.LoanTakenMeta{
		Amount:         loan.Principal,
		Purpose:        loan.Purpose,
		Interest:       loan.Interest,
		TotalRepayment: loan.TotalRepayable,
		GroupID:        linkedGroupID,
		IsRoscaAdvance: linkedGroupID != "",
	}, now)
	if err := s.events.AppendEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to record loan: %w", err)
	}

	s.logger.Info("loan issued",
		slog.String("user_id", userID),
		slog.Int64("principal", loan.Principal),
		slog.Int64("total_repayable", loan.TotalRepayable),
		slog.String("purpose", purpose),
	)
	return &loan, nil
}

// PromptForUser records that a loan offer was shown to the user because
// an operation came up short. Recorded before any decision is known: an
// unanswered prompt stays in the acceptance-rate denominator.
func (s *Service) PromptForUser(ctx context.Context, user *models.User, reason string, shortfall int64, groupID string) error {
	ev := models.NewEvent(user, &models.LoanPromptMeta{
		Reason:    reason,
		GroupID:   groupID,
		Shortfall: shortfall,
		Balance:   user.WalletBalance,
	}, s.clock.Now())
	if err := s.events.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("failed to record loan prompt: %w", err)
	}
	return nil
}

// RecordDecision records the user's answer to an earlier prompt,
// carrying the originating reason so prompt and decision pair up in the
// per-reason funnel.
func (s *Service) RecordDecision(ctx context.Context, userID string, decision models.Decision, reason string, amount int64, groupID string) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	ev := models.NewEvent(user, &models.LoanDecisionMeta{
		Decision: decision,
		Reason:   reason,
		Amount:   amount,
		GroupID:  groupID,
	}, s.clock.Now())
	if err := s.events.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("failed to record loan decision: %w", err)
	}
	return nil
}

// RecordRepayment records a caller-reported repayment and marks the
// loan repaid. There is no automatic due-date sweep; repayment is
// tracked through the event log only.
func (s *Service) RecordRepayment(ctx context.Context, userID, loanID, method string) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	loan, ok := user.Loans[loanID]
	if !ok {
		return fmt.Errorf("loan %s: %w", loanID, storage.ErrNotFound)
	}

	if loan.Status != models.LoanRepaid {
		loan.Status = models.LoanRepaid
		if user, err = s.users.ApplyWalletDelta(ctx, userID, 0, &storage.HoldingsUpdate{Loans: []models.Loan{loan}}); err != nil {
			return fmt.Errorf("failed to mark loan repaid: %w", err)
		}
	}

	ev := models.NewEvent(user, &models.LoanRepaymentMeta{
		LoanID: loan.ID,
		Amount: loan.TotalRepayable,
		Method: method,
	}, s.clock.Now())
	if err := s.events.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("failed to record loan repayment: %w", err)
	}
	return nil
}
