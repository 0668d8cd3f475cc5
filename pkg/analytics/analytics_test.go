package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/suprebose/wallet-platform/pkg/models"
)

func event(userID string, meta models.Metadata) models.Event {
	return models.Event{
		UserID:     userID,
		ActionType: meta.Action(),
		Metadata:   meta,
		Timestamp:  time.Now(),
	}
}

func TestTrustScore(t *testing.T) {
	t.Run("Empty History Scores Zero", func(t *testing.T) {
		assert.Equal(t, 0, TrustScore(nil))
		assert.Equal(t, 0, TrustScore([]models.Event{}))
	})

	t.Run("Perfect Payer", func(t *testing.T) {
		events := []models.Event{
			event("u1", &models.RoscaJoinMeta{GroupID: "wk1"}),
		}
		for i := 0; i < 6; i++ {
			events = append(events, event("u1", &models.RoscaPaymentMeta{GroupID: "wk1", Amount: 5000, OnTime: true}))
		}

		// 40 payment + 10 participation + 0 repayment + 7/8 engagement,
		// rounded once at the end.
		assert.Equal(t, 51, TrustScore(events))
	})

	t.Run("Fractional Engagement Rounds", func(t *testing.T) {
		var events []models.Event
		for i := 0; i < 12; i++ {
			events = append(events, event("u1", &models.ScreenViewMeta{ScreenName: "home"}))
		}

		// 12/8 = 1.5 engagement rounds up, not truncates.
		assert.Equal(t, 2, TrustScore(events))
	})

	t.Run("Half On Time", func(t *testing.T) {
		events := []models.Event{
			event("u1", &models.RoscaPaymentMeta{OnTime: true}),
			event("u1", &models.RoscaPaymentMeta{OnTime: false}),
		}

		assert.Equal(t, 20, TrustScore(events))
	})

	t.Run("Caps Hold", func(t *testing.T) {
		var events []models.Event
		for i := 0; i < 10; i++ {
			events = append(events, event("u1", &models.RoscaJoinMeta{}))
			events = append(events, event("u1", &models.LoanTakenMeta{Amount: 10000}))
		}
		for i := 0; i < 500; i++ {
			events = append(events, event("u1", &models.ScreenViewMeta{ScreenName: "home"}))
		}

		// No payments, so: 0 + 20 + 20 + 20.
		assert.Equal(t, 60, TrustScore(events))
	})
}

func TestCreditScore(t *testing.T) {
	t.Run("Empty History", func(t *testing.T) {
		// 300 base + 0 history + 300 utilization + 200 age + 100 new + 100 mix, clamped.
		assert.Equal(t, 900, CreditScore(nil))
	})

	t.Run("Heavy Borrower", func(t *testing.T) {
		var events []models.Event
		for i := 0; i < 20; i++ {
			events = append(events, event("u1", &models.LoanTakenMeta{Amount: 10000}))
		}

		assert.Equal(t, 600, CreditScore(events))
	})

	t.Run("Always In Range", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			taken := rapid.IntRange(0, 100).Draw(t, "taken")
			repaid := rapid.IntRange(0, 100).Draw(t, "repaid")

			var events []models.Event
			for i := 0; i < taken; i++ {
				events = append(events, event("u1", &models.LoanTakenMeta{Amount: 5000}))
			}
			for i := 0; i < repaid; i++ {
				events = append(events, event("u1", &models.LoanRepaymentMeta{Amount: 5250}))
			}

			score := CreditScore(events)
			if score < 300 || score > 900 {
				t.Fatalf("score %d out of [300, 900]", score)
			}
		})
	})
}

func TestClassifyBehavior(t *testing.T) {
	t.Run("Empty Is Balanced", func(t *testing.T) {
		assert.Equal(t, BehaviorBalanced, ClassifyBehavior(nil))
	})

	t.Run("Borrower", func(t *testing.T) {
		events := []models.Event{
			event("u1", &models.LoanTakenMeta{}),
			event("u1", &models.LoanTakenMeta{}),
			event("u1", &models.FixedSavingsMeta{Amount: 10000}),
		}
		assert.Equal(t, BehaviorBorrower, ClassifyBehavior(events))
	})

	t.Run("Saver", func(t *testing.T) {
		events := []models.Event{
			event("u1", &models.InvestmentMeta{Amount: 50000}),
			event("u1", &models.TargetContributionMeta{ContributionAmount: 5000}),
		}
		assert.Equal(t, BehaviorSaver, ClassifyBehavior(events))
	})
}

func TestFinancialInclusion(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		m := FinancialInclusion(nil)
		assert.Equal(t, 0, m.TotalUsers)
		assert.Equal(t, "0.0", m.InclusionRate)
	})

	t.Run("Mixed Cohort", func(t *testing.T) {
		events := []models.Event{
			event("u1", &models.FixedSavingsMeta{Amount: 10000}),
			event("u2", &models.TargetCreatedMeta{TargetAmount: 30000}),
			event("u3", &models.ScreenViewMeta{ScreenName: "home"}),
		}

		m := FinancialInclusion(events)
		assert.Equal(t, 3, m.TotalUsers)
		assert.Equal(t, 2, m.Savers)
		assert.Equal(t, "66.7", m.InclusionRate)
	})
}

func TestSavingsMetrics(t *testing.T) {
	events := []models.Event{
		event("u1", &models.FixedSavingsMeta{Amount: 10000}),
		event("u1", &models.InvestmentMeta{Amount: 50000}),
		event("u1", &models.TargetContributionMeta{ContributionAmount: 5000}),
	}

	m := SavingsMetrics(events)
	assert.Equal(t, 1, m.FixedSavingsCount)
	assert.Equal(t, 1, m.InvestmentCount)
	assert.Equal(t, 1, m.TargetContributionCount)
	// (1*0.4 + 1*0.3 + 1*0.2) / 10
	assert.Equal(t, "0.1", m.BehaviorScore)
}

func TestBorrowingBehavior(t *testing.T) {
	t.Run("No Loans", func(t *testing.T) {
		p := BorrowingBehavior(nil)
		assert.Equal(t, 0, p.Frequency)
		assert.Equal(t, int64(0), p.AvgLoanAmount)
		assert.Equal(t, "0.0", p.RepaymentRate)
	})

	t.Run("Averages And Rate", func(t *testing.T) {
		events := []models.Event{
			event("u1", &models.LoanTakenMeta{Amount: 10000}),
			event("u1", &models.LoanTakenMeta{Amount: 30000}),
			event("u1", &models.LoanRepaymentMeta{Amount: 10500}),
		}

		p := BorrowingBehavior(events)
		assert.Equal(t, 2, p.Frequency)
		assert.Equal(t, int64(20000), p.AvgLoanAmount)
		assert.Equal(t, "50.0", p.RepaymentRate)
	})
}

func TestRoscaGroupAnalysis(t *testing.T) {
	events := []models.Event{
		event("u1", &models.RoscaJoinMeta{GroupID: "wk1"}),
		event("u2", &models.RoscaJoinMeta{GroupID: "wk1"}),
		event("u1", &models.RoscaPaymentMeta{GroupID: "wk1", Amount: 5000}),
		event("u2", &models.RoscaPaymentMeta{GroupID: "wk1", Amount: 5000}),
		event("u3", &models.RoscaJoinMeta{GroupID: "mn1"}),
	}

	got := RoscaGroupAnalysis(events)
	assert.Equal(t, GroupActivity{Members: 2, Contributions: 10000}, got["wk1"])
	assert.Equal(t, GroupActivity{Members: 1}, got["mn1"])

	// Pure fold: same input, same output.
	assert.Equal(t, got, RoscaGroupAnalysis(events))
}

func TestRoscaPoolSummary(t *testing.T) {
	events := []models.Event{
		event("u1", &models.RoscaPaymentMeta{GroupID: "wk1", Amount: 5000}),
		event("u1", &models.RoscaPaymentMeta{GroupID: "wk1", Amount: 5000}),
		event("u2", &models.RoscaPaymentMeta{GroupID: "wk1", Amount: 5000}),
		event("u1", &models.RoscaJoinMeta{GroupID: "wk1"}),
	}

	got := RoscaPoolSummary(events)
	assert.Equal(t, PoolSummary{TotalPool: 15000, Members: 2, AvgContribution: 7500}, got["wk1"])
}

func TestTotalSavings(t *testing.T) {
	events := []models.Event{
		event("u1", &models.TargetContributionMeta{ContributionAmount: 5000}),
		event("u1", &models.FixedSavingsMeta{Amount: 10000}),
		event("u2", &models.InvestmentMeta{Amount: 50000}),
		event("u2", &models.LoanTakenMeta{Amount: 99999}),
	}

	got := TotalSavings(events)
	assert.Equal(t, SavingsTotal{Total: 65000, Count: 3}, got)
	assert.Equal(t, got, TotalSavings(events))
}

func TestUnbankedUsers(t *testing.T) {
	events := []models.Event{
		event("u1", &models.RoscaPaymentMeta{GroupID: "wk1", Amount: 5000}),
		event("u2", &models.FixedSavingsMeta{Amount: 10000}),
		event("u2", &models.BankLinkedMeta{BankName: "GTB"}),
		event("u3", &models.BankLinkedMeta{BankName: "UBA"}),
	}

	got := UnbankedUsers(events)
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, []string{"u1"}, got.UserIDs)
}

func TestRegularContributionRate(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		got := RegularContributionRate(nil)
		assert.Equal(t, "0.0", got.Rate)
	})

	t.Run("Threshold At Four", func(t *testing.T) {
		var events []models.Event
		for i := 0; i < 4; i++ {
			events = append(events, event("regular", &models.TargetContributionMeta{ContributionAmount: 1000}))
		}
		for i := 0; i < 3; i++ {
			events = append(events, event("casual", &models.TargetContributionMeta{ContributionAmount: 1000}))
		}

		got := RegularContributionRate(events)
		assert.Equal(t, 2, got.SavingUsers)
		assert.Equal(t, 1, got.RegularUsers)
		assert.Equal(t, "50.0", got.Rate)
	})
}

func TestSavingsImprovement(t *testing.T) {
	t.Run("Improved User", func(t *testing.T) {
		var events []models.Event
		for _, amount := range []int64{1000, 1000, 1000, 3000, 3000, 3000} {
			events = append(events, event("u1", &models.TargetContributionMeta{ContributionAmount: amount}))
		}

		got := SavingsImprovement(events)
		assert.Equal(t, 1, got.EvaluatedUsers)
		assert.Equal(t, 1, got.ImprovedUsers)
		assert.Equal(t, "100.0", got.Rate)
	})

	t.Run("Too Few Contributions Not Evaluated", func(t *testing.T) {
		var events []models.Event
		for _, amount := range []int64{1000, 2000, 3000, 4000, 5000} {
			events = append(events, event("u1", &models.TargetContributionMeta{ContributionAmount: amount}))
		}

		got := SavingsImprovement(events)
		assert.Equal(t, 0, got.EvaluatedUsers)
		assert.Equal(t, "0.0", got.Rate)
	})

	t.Run("Flat Saver Not Improved", func(t *testing.T) {
		var events []models.Event
		for i := 0; i < 6; i++ {
			events = append(events, event("u1", &models.FixedSavingsMeta{Amount: 10000}))
		}

		got := SavingsImprovement(events)
		assert.Equal(t, 1, got.EvaluatedUsers)
		assert.Equal(t, 0, got.ImprovedUsers)
	})
}

func TestLoanBehaviorAnalysis(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		got := LoanBehaviorAnalysis(nil)
		assert.Equal(t, "0.00", got.AcceptanceRate)
		assert.Empty(t, got.ByReason)
	})

	t.Run("Funnel Per Reason", func(t *testing.T) {
		var events []models.Event
		for i := 0; i < 10; i++ {
			events = append(events, event("u1", &models.LoanPromptMeta{Reason: "rosca_join", Shortfall: 5000}))
		}
		for i := 0; i < 7; i++ {
			events = append(events, event("u1", &models.LoanDecisionMeta{Decision: models.DecisionAccepted, Reason: "rosca_join"}))
		}
		for i := 0; i < 3; i++ {
			events = append(events, event("u1", &models.LoanDecisionMeta{Decision: models.DecisionDeclined, Reason: "rosca_join"}))
		}

		got := LoanBehaviorAnalysis(events)
		assert.Equal(t, ReasonFunnel{Prompted: 10, Accepted: 7, Declined: 3}, got.ByReason["rosca_join"])
		assert.Equal(t, "70.00", got.AcceptanceRate)
	})

	t.Run("Decision Without Reason Stays Out Of Funnels", func(t *testing.T) {
		events := []models.Event{
			event("u1", &models.LoanPromptMeta{Reason: "investment"}),
			event("u1", &models.LoanDecisionMeta{Decision: models.DecisionAccepted}),
		}

		got := LoanBehaviorAnalysis(events)
		assert.Equal(t, 1, got.Accepted)
		assert.Equal(t, ReasonFunnel{Prompted: 1}, got.ByReason["investment"])
		assert.Equal(t, "100.00", got.AcceptanceRate)
	})
}

func TestSummarize(t *testing.T) {
	users := []models.User{
		{ID: "u1", HasClaimedToken: true},
		{ID: "u2", HasClaimedToken: true},
		{ID: "u3"},
	}
	events := []models.Event{
		event("u1", &models.RoscaJoinMeta{GroupID: "wk1"}),
		event("u1", &models.LoanPromptMeta{Reason: "rosca_join"}),
		event("u1", &models.LoanPromptMeta{Reason: "rosca_join"}),
		event("u1", &models.LoanTakenMeta{Amount: 20000}),
		event("u2", &models.FixedSavingsMeta{Amount: 10000}),
	}

	s := Summarize(users, events)
	assert.Equal(t, 3, s.TotalUsers)
	assert.Equal(t, 2, s.TokensClaimed)
	assert.Equal(t, "66.7", s.TokenClaimRate)
	assert.Equal(t, 1, s.GroupsJoined)
	assert.Equal(t, 2, s.LoansPrompted)
	assert.Equal(t, 1, s.LoansTaken)
	assert.Equal(t, "50.00", s.AcceptanceRate)
	assert.Equal(t, int64(10000), s.TotalSaved)
	assert.Equal(t, 1, s.UnbankedSavers)
}

func TestUserBehaviorProfile(t *testing.T) {
	events := []models.Event{
		event("u1", &models.LoanTakenMeta{Amount: 20000}),
		event("u1", &models.FixedSavingsMeta{Amount: 10000}),
		event("u1", &models.InvestmentMeta{Amount: 50000}),
	}

	p := UserBehaviorProfile("u1", events)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, BehaviorSaver, p.Behavior)
	assert.Equal(t, 3, p.EventCount)
	assert.GreaterOrEqual(t, p.CreditScore, 300)
	assert.LessOrEqual(t, p.CreditScore, 900)
}
