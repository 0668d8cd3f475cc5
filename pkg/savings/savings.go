// Package savings implements the fixed-savings, target-savings and
// investment flows on top of the ledger.
package savings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/suprebose/wallet-platform/pkg/fincalc"
	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/scheduler"
	"github.com/suprebose/wallet-platform/pkg/storage"
)

var (
	// ErrGoalCompleted is returned when a contribution targets a goal
	// that has already completed.
	ErrGoalCompleted = errors.New("goal already completed")
	// ErrBelowMinimum is returned when an amount is under the catalog
	// minimum for the chosen plan or product.
	ErrBelowMinimum = errors.New("amount below product minimum")
	// ErrUnknownPlan is returned for a duration label not in the
	// fixed-savings catalog.
	ErrUnknownPlan = errors.New("unknown savings plan")
	// ErrUnknownProduct is returned for an investment product ID not in
	// the catalog.
	ErrUnknownProduct = errors.New("unknown investment product")
)

// maxTargetWeeks caps a target plan's length. The weekly amount is the
// user's choice either way; a capped plan simply takes more
// contributions than planned to complete.
const maxTargetWeeks = 6

// Prompter records that a loan offer was shown when a wallet came up
// short.
type Prompter interface {
	PromptForUser(ctx context.Context, user *models.User, reason string, shortfall int64, groupID string) error
}

// Service implements the savings and investment operations.
type Service struct {
	users    storage.UserStore
	events   storage.EventStore
	prompter Prompter
	clock    scheduler.Clock
	logger   *slog.Logger
}

// New creates a savings Service.
func New(users storage.UserStore, events storage.EventStore, prompter Prompter, clock scheduler.Clock, logger *slog.Logger) *Service {
	return &Service{users: users, events: events, prompter: prompter, clock: clock, logger: logger}
}

// LockFixed locks a fixed-savings deposit on the chosen plan. The
// principal leaves the wallet immediately and cannot be withdrawn
// before maturity. There is no loan prompt here: locked savings are a
// surplus product, not an obligation.
func (s *Service) LockFixed(ctx context.Context, userID string, amount int64, durationLabel string) (*models.FixedSavingsPosition, error) {
	plan, ok := models.FixedSavingsPlanFor(durationLabel)
	if !ok {
		return nil, fmt.Errorf("%q: %w", durationLabel, ErrUnknownPlan)
	}
	if amount < plan.MinAmount {
		return nil, fmt.Errorf("minimum for %s is %d: %w", plan.DurationLabel, plan.MinAmount, ErrBelowMinimum)
	}

	now := s.clock.Now()
	quote := fincalc.FixedSavingsReturn(amount, plan.RatePercent, plan.DurationLabel)
	pos := models.FixedSavingsPosition{
		ID:              uuid.New().String(),
		Principal:       amount,
		RatePercent:     plan.RatePercent,
		DurationLabel:   plan.DurationLabel,
		MaturityReturn:  quote.Returns,
		TotalAtMaturity: quote.Total,
		LockedAt:        now,
		MaturesAt:       quote.MaturesAt(now),
	}

	user, err := s.users.ApplyWalletDelta(ctx, userID, -amount, &storage.HoldingsUpdate{FixedSavings: &pos})
	if err != nil {
		return nil, err
	}

	ev := models.NewEvent(user, &models.FixedSavingsMeta{
		Amount:          amount,
		DurationLabel:   plan.DurationLabel,
		RatePercent:     plan.RatePercent,
		ExpectedReturns: quote.Returns,
	}, now)
	if err := s.events.AppendEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to record fixed savings: %w", err)
	}

	s.logger.Info("fixed savings locked",
		slog.String("user_id", userID),
		slog.Int64("amount", amount),
		slog.String("duration", plan.DurationLabel),
	)
	return &pos, nil
}

// CreateTarget opens a weekly savings goal. The plan length is
// ceil(target/weekly), capped at six weeks. The cap is advisory: the
// weekly amount stays as chosen and the goal completes whenever the
// saved total reaches the target.
func (s *Service) CreateTarget(ctx context.Context, userID, name string, targetAmount, weeklyAmount int64) (*models.TargetSavingsGoal, error) {
	weeks, err := fincalc.TargetPlanWeeks(targetAmount, weeklyAmount)
	if err != nil {
		return nil, err
	}
	if weeks > maxTargetWeeks {
		weeks = maxTargetWeeks
	}

	goal := models.TargetSavingsGoal{
		ID:                uuid.New().String(),
		Name:              name,
		TargetAmount:      targetAmount,
		WeeklyAmount:      weeklyAmount,
		TotalWeeksPlanned: weeks,
		Status:            models.GoalActive,
		CreatedAt:         s.clock.Now(),
	}

	user, err := s.users.ApplyWalletDelta(ctx, userID, 0, &storage.HoldingsUpdate{TargetGoal: &goal})
	if err != nil {
		return nil, err
	}

	ev := models.NewEvent(user, &models.TargetCreatedMeta{
		GoalID:       goal.ID,
		GoalName:     goal.Name,
		TargetAmount: goal.TargetAmount,
		WeeklyAmount: goal.WeeklyAmount,
		TotalWeeks:   goal.TotalWeeksPlanned,
	}, goal.CreatedAt)
	if err := s.events.AppendEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to record target goal: %w", err)
	}
	return &goal, nil
}

// ContributeTarget debits one weekly contribution into the goal. The
// goal completes, irreversibly, when the saved amount reaches the
// target. A short wallet records a loan prompt and returns
// storage.ErrInsufficientFunds.
func (s *Service) ContributeTarget(ctx context.Context, userID, goalID string) (*models.TargetSavingsGoal, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	goal, ok := user.TargetSavings[goalID]
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", goalID, storage.ErrNotFound)
	}
	if goal.Status == models.GoalCompleted {
		return nil, ErrGoalCompleted
	}

	if user.WalletBalance < goal.WeeklyAmount {
		if perr := s.prompter.PromptForUser(ctx, user, "target_savings", goal.WeeklyAmount-user.WalletBalance, ""); perr != nil {
			return nil, perr
		}
		return nil, fmt.Errorf("contribution to %s: %w", goal.Name, storage.ErrInsufficientFunds)
	}

	goal.CurrentAmount += goal.WeeklyAmount
	goal.WeeksCompleted++
	if goal.CurrentAmount >= goal.TargetAmount {
		goal.Status = models.GoalCompleted
	}

	user, err = s.users.ApplyWalletDelta(ctx, userID, -goal.WeeklyAmount, &storage.HoldingsUpdate{TargetGoal: &goal})
	if err != nil {
		return nil, err
	}

	ev := models.NewEvent(user, &models.TargetContributionMeta{
		GoalID:             goal.ID,
		GoalName:           goal.Name,
		ContributionAmount: goal.WeeklyAmount,
		CurrentTotal:       goal.CurrentAmount,
		TargetAmount:       goal.TargetAmount,
		WeekNumber:         goal.WeeksCompleted,
	}, s.clock.Now())
	if err := s.events.AppendEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to record target contribution: %w", err)
	}
	return &goal, nil
}

// Invest places an investment in a catalog product. A short wallet
// records a loan prompt and returns storage.ErrInsufficientFunds.
func (s *Service) Invest(ctx context.Context, userID, productID string, amount int64) (*models.InvestmentPosition, error) {
	product, ok := models.InvestmentProductFor(productID)
	if !ok {
		return nil, fmt.Errorf("%q: %w", productID, ErrUnknownProduct)
	}
	if amount < product.MinInvest {
		return nil, fmt.Errorf("minimum for %s is %d: %w", product.Name, product.MinInvest, ErrBelowMinimum)
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.WalletBalance < amount {
		if perr := s.prompter.PromptForUser(ctx, user, "investment", amount-user.WalletBalance, ""); perr != nil {
			return nil, perr
		}
		return nil, fmt.Errorf("investment in %s: %w", product.Name, storage.ErrInsufficientFunds)
	}

	quote, err := fincalc.InvestmentReturn(amount, product.ReturnPercent, product.DurationMonths)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	pos := models.InvestmentPosition{
		ID:              uuid.New().String(),
		Name:            product.Name,
		Principal:       amount,
		ReturnPercent:   product.ReturnPercent,
		DurationMonths:  product.DurationMonths,
		MaturityReturn:  quote.Returns,
		TotalAtMaturity: quote.Total,
		InvestedAt:      now,
		MaturesAt:       quote.MaturesAt(now),
	}

	user, err = s.users.ApplyWalletDelta(ctx, userID, -amount, &storage.HoldingsUpdate{Investment: &pos})
	if err != nil {
		return nil, err
	}

	ev := models.NewEvent(user, &models.InvestmentMeta{
		InvestmentID:    pos.ID,
		Name:            product.Name,
		Amount:          amount,
		ExpectedReturns: quote.Returns,
		DurationMonths:  product.DurationMonths,
		Risk:            product.Risk,
	}, now)
	if err := s.events.AppendEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to record investment: %w", err)
	}

	s.logger.Info("investment placed",
		slog.String("user_id", userID),
		slog.String("product", product.Name),
		slog.Int64("amount", amount),
	)
	return &pos, nil
}
