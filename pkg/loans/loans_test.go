package loans

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/suprebose/wallet-platform/pkg/fincalc"
	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/storage"
	"github.com/suprebose/wallet-platform/pkg/storage/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newService(t *testing.T) (*Service, *memory.Store, time.Time) {
	t.Helper()
	store := memory.New()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := New(store, store, fixedClock{now: now}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := store.CreateUser(context.Background(), models.NewUser("u1", "Test User", "u1@example.com", now))
	assert.NoError(t, err)
	return svc, store, now
}

func TestIssue(t *testing.T) {
	t.Run("Credits Principal Owes Total", func(t *testing.T) {
		svc, store, now := newService(t)

		loan, err := svc.Issue(context.Background(), "u1", 20000, "Business", "")

		assert.NoError(t, err)
		assert.Equal(t, int64(20000), loan.Principal)
		assert.Equal(t, int64(1000), loan.Interest)
		assert.Equal(t, int64(21000), loan.TotalRepayable)
		assert.Equal(t, models.LoanActive, loan.Status)
		assert.Equal(t, now.Add(30*24*time.Hour), loan.DueAt)

		user, err := store.GetUser(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Equal(t, int64(20000), user.WalletBalance)
		assert.Contains(t, user.Loans, loan.ID)

		events, err := store.QueryEvents(context.Background(), storage.EventFilter{UserID: "u1", ActionType: models.ActionLoanTaken})
		assert.NoError(t, err)
		if assert.Len(t, events, 1) {
			meta := events[0].Metadata.(*models.LoanTakenMeta)
			assert.Equal(t, int64(20000), meta.Amount)
			assert.Equal(t, int64(21000), meta.TotalRepayment)
			assert.False(t, meta.IsRoscaAdvance)
		}
	})

	t.Run("Linked Loan Flagged As Advance", func(t *testing.T) {
		svc, store, _ := newService(t)

		loan, err := svc.Issue(context.Background(), "u1", 10000, "ROSCA Advance - Weekly Hustlers", "wk1")

		assert.NoError(t, err)
		assert.Equal(t, "wk1", loan.LinkedGroupID)

		events, err := store.QueryEvents(context.Background(), storage.EventFilter{ActionType: models.ActionLoanTaken})
		assert.NoError(t, err)
		if assert.Len(t, events, 1) {
			assert.True(t, events[0].Metadata.(*models.LoanTakenMeta).IsRoscaAdvance)
		}
	})

	t.Run("Out Of Range Principal Rejected", func(t *testing.T) {
		svc, store, _ := newService(t)

		_, err := svc.Issue(context.Background(), "u1", 1000, "Emergency", "")
		assert.ErrorIs(t, err, fincalc.ErrInvalidAmount)

		user, err := store.GetUser(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), user.WalletBalance)
	})
}

func TestPromptAndDecision(t *testing.T) {
	svc, store, _ := newService(t)
	user, err := store.GetUser(context.Background(), "u1")
	assert.NoError(t, err)

	err = svc.PromptForUser(context.Background(), user, ReasonRoscaJoin, 3000, "wk1")
	assert.NoError(t, err)

	err = svc.RecordDecision(context.Background(), "u1", models.DecisionDeclined, ReasonRoscaJoin, 5000, "wk1")
	assert.NoError(t, err)

	prompts, err := store.QueryEvents(context.Background(), storage.EventFilter{ActionType: models.ActionLoanPromptShown})
	assert.NoError(t, err)
	if assert.Len(t, prompts, 1) {
		meta := prompts[0].Metadata.(*models.LoanPromptMeta)
		assert.Equal(t, ReasonRoscaJoin, meta.Reason)
		assert.Equal(t, int64(3000), meta.Shortfall)
	}

	decisions, err := store.QueryEvents(context.Background(), storage.EventFilter{ActionType: models.ActionLoanDecision})
	assert.NoError(t, err)
	if assert.Len(t, decisions, 1) {
		meta := decisions[0].Metadata.(*models.LoanDecisionMeta)
		assert.Equal(t, models.DecisionDeclined, meta.Decision)
		assert.Equal(t, ReasonRoscaJoin, meta.Reason)
	}
}

func TestRecordRepayment(t *testing.T) {
	t.Run("Marks Loan Repaid", func(t *testing.T) {
		svc, store, _ := newService(t)
		loan, err := svc.Issue(context.Background(), "u1", 20000, "Business", "")
		assert.NoError(t, err)

		err = svc.RecordRepayment(context.Background(), "u1", loan.ID, "wallet")
		assert.NoError(t, err)

		user, err := store.GetUser(context.Background(), "u1")
		assert.NoError(t, err)
		assert.Equal(t, models.LoanRepaid, user.Loans[loan.ID].Status)
		// Repayment is event-tracked only, never debited here.
		assert.Equal(t, int64(20000), user.WalletBalance)

		events, err := store.QueryEvents(context.Background(), storage.EventFilter{ActionType: models.ActionLoanRepayment})
		assert.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("Unknown Loan Rejected", func(t *testing.T) {
		svc, _, _ := newService(t)

		err := svc.RecordRepayment(context.Background(), "u1", "missing", "wallet")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
