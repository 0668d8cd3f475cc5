package savings

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/suprebose/wallet-platform/pkg/loans"
	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/storage"
	"github.com/suprebose/wallet-platform/pkg/storage/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newService(t *testing.T, balance int64) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	clock := fixedClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prompter := loans.New(store, store, clock, logger)
	svc := New(store, store, prompter, clock, logger)

	u := models.NewUser("u1", "Test User", "u1@example.com", clock.now)
	u.WalletBalance = balance
	_, err := store.CreateUser(context.Background(), u)
	assert.NoError(t, err)
	return svc, store
}

func TestLockFixed(t *testing.T) {
	t.Run("Locks And Computes Return", func(t *testing.T) {
		svc, store := newService(t, 100000)

		pos, err := svc.LockFixed(context.Background(), "u1", 50000, "6 months")

		assert.NoError(t, err)
		assert.Equal(t, int64(50000), pos.Principal)
		// 50000 * 12% * 6/12.
		assert.Equal(t, int64(3000), pos.MaturityReturn)
		assert.Equal(t, int64(53000), pos.TotalAtMaturity)

		user, err := store.GetUser(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Equal(t, int64(50000), user.WalletBalance)
		assert.Len(t, user.FixedSavings, 1)

		events, err := store.QueryEvents(context.Background(), storage.EventFilter{ActionType: models.ActionFixedSavingsLocked})
		assert.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("Below Plan Minimum Rejected", func(t *testing.T) {
		svc, _ := newService(t, 100000)

		_, err := svc.LockFixed(context.Background(), "u1", 20000, "6 months")
		assert.ErrorIs(t, err, ErrBelowMinimum)
	})

	t.Run("Unknown Plan Rejected", func(t *testing.T) {
		svc, _ := newService(t, 100000)

		_, err := svc.LockFixed(context.Background(), "u1", 50000, "50 months")
		assert.ErrorIs(t, err, ErrUnknownPlan)
	})

	t.Run("Insufficient Balance Fails Without Prompt", func(t *testing.T) {
		svc, store := newService(t, 5000)

		_, err := svc.LockFixed(context.Background(), "u1", 50000, "6 months")
		assert.ErrorIs(t, err, storage.ErrInsufficientFunds)

		prompts, err := store.QueryEvents(context.Background(), storage.EventFilter{ActionType: models.ActionLoanPromptShown})
		assert.NoError(t, err)
		assert.Empty(t, prompts)
	})
}

func TestCreateTarget(t *testing.T) {
	t.Run("Plans The Weeks", func(t *testing.T) {
		svc, _ := newService(t, 0)

		goal, err := svc.CreateTarget(context.Background(), "u1", "School Fees", 30000, 5000)

		assert.NoError(t, err)
		assert.Equal(t, 6, goal.TotalWeeksPlanned)
		assert.Equal(t, int64(5000), goal.WeeklyAmount)
		assert.Equal(t, models.GoalActive, goal.Status)
	})

	t.Run("Caps At Six Weeks", func(t *testing.T) {
		svc, _ := newService(t, 0)

		goal, err := svc.CreateTarget(context.Background(), "u1", "Rent", 60000, 5000)

		assert.NoError(t, err)
		assert.Equal(t, 6, goal.TotalWeeksPlanned)
		// The cap trims the plan, never the chosen weekly amount.
		assert.Equal(t, int64(5000), goal.WeeklyAmount)
	})
}

func TestContributeTarget(t *testing.T) {
	t.Run("Progresses And Completes", func(t *testing.T) {
		svc, store := newService(t, 30000)
		goal, err := svc.CreateTarget(context.Background(), "u1", "School Fees", 10000, 5000)
		assert.NoError(t, err)

		first, err := svc.ContributeTarget(context.Background(), "u1", goal.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(5000), first.CurrentAmount)
		assert.Equal(t, models.GoalActive, first.Status)

		second, err := svc.ContributeTarget(context.Background(), "u1", goal.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(10000), second.CurrentAmount)
		assert.Equal(t, models.GoalCompleted, second.Status)

		user, err := store.GetUser(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Equal(t, int64(20000), user.WalletBalance)

		events, err := store.QueryEvents(context.Background(), storage.EventFilter{ActionType: models.ActionTargetContribution})
		assert.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("Completed Goal Rejects More", func(t *testing.T) {
		svc, _ := newService(t, 30000)
		goal, err := svc.CreateTarget(context.Background(), "u1", "School Fees", 5000, 5000)
		assert.NoError(t, err)

		_, err = svc.ContributeTarget(context.Background(), "u1", goal.ID)
		assert.NoError(t, err)

		_, err = svc.ContributeTarget(context.Background(), "u1", goal.ID)
		assert.ErrorIs(t, err, ErrGoalCompleted)
	})

	t.Run("Short Wallet Prompts A Loan", func(t *testing.T) {
		svc, store := newService(t, 2000)
		goal, err := svc.CreateTarget(context.Background(), "u1", "School Fees", 30000, 5000)
		assert.NoError(t, err)

		_, err = svc.ContributeTarget(context.Background(), "u1", goal.ID)
		assert.ErrorIs(t, err, storage.ErrInsufficientFunds)

		prompts, err := store.QueryEvents(context.Background(), storage.EventFilter{ActionType: models.ActionLoanPromptShown})
		assert.NoError(t, err)
		if assert.Len(t, prompts, 1) {
			meta := prompts[0].Metadata.(*models.LoanPromptMeta)
			assert.Equal(t, "target_savings", meta.Reason)
			assert.Equal(t, int64(3000), meta.Shortfall)
		}
	})

	t.Run("Unknown Goal Rejected", func(t *testing.T) {
		svc, _ := newService(t, 30000)

		_, err := svc.ContributeTarget(context.Background(), "u1", "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestInvest(t *testing.T) {
	t.Run("Places Investment", func(t *testing.T) {
		svc, store := newService(t, 100000)

		pos, err := svc.Invest(context.Background(), "u1", "sf1", 50000)

		assert.NoError(t, err)
		assert.Equal(t, "SupreFarm - Rice Production", pos.Name)
		// 18% flat on 50000.
		assert.Equal(t, int64(9000), pos.MaturityReturn)
		assert.Equal(t, int64(59000), pos.TotalAtMaturity)

		user, err := store.GetUser(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Equal(t, int64(50000), user.WalletBalance)
		assert.Len(t, user.Investments, 1)
	})

	t.Run("Below Product Minimum Rejected", func(t *testing.T) {
		svc, _ := newService(t, 100000)

		_, err := svc.Invest(context.Background(), "u1", "sf1", 10000)
		assert.ErrorIs(t, err, ErrBelowMinimum)
	})

	t.Run("Unknown Product Rejected", func(t *testing.T) {
		svc, _ := newService(t, 100000)

		_, err := svc.Invest(context.Background(), "u1", "crypto9000", 50000)
		assert.ErrorIs(t, err, ErrUnknownProduct)
	})

	t.Run("Short Wallet Prompts A Loan", func(t *testing.T) {
		svc, store := newService(t, 30000)

		_, err := svc.Invest(context.Background(), "u1", "sf1", 50000)
		assert.ErrorIs(t, err, storage.ErrInsufficientFunds)

		prompts, err := store.QueryEvents(context.Background(), storage.EventFilter{ActionType: models.ActionLoanPromptShown})
		assert.NoError(t, err)
		if assert.Len(t, prompts, 1) {
			assert.Equal(t, "investment", prompts[0].Metadata.(*models.LoanPromptMeta).Reason)
		}
	})
}
