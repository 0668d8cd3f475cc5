package analytics

import (
	"github.com/suprebose/wallet-platform/pkg/models"
)

// Summary is the admin-dashboard aggregate over the whole cohort.
type Summary struct {
	TotalUsers     int    `json:"total_users"`
	TokensClaimed  int    `json:"tokens_claimed"`
	TokenClaimRate string `json:"token_claim_rate"`
	TotalEvents    int    `json:"total_events"`
	GroupsJoined   int    `json:"groups_joined"`
	LoansPrompted  int    `json:"loans_prompted"`
	LoansTaken     int    `json:"loans_taken"`
	AcceptanceRate string `json:"acceptance_rate"`
	TotalSaved     int64  `json:"total_saved"`
	UnbankedSavers int    `json:"unbanked_savers"`
}

// Summarize builds the admin dashboard aggregate. The acceptance rate
// here is taken loans over prompts shown, a looser conversion measure
// than the per-reason decision funnel.
func Summarize(users []models.User, events []models.Event) Summary {
	s := Summary{TotalUsers: len(users), TotalEvents: len(events)}
	for i := range users {
		if users[i].HasClaimedToken {
			s.TokensClaimed++
		}
	}
	for i := range events {
		switch events[i].ActionType {
		case models.ActionRoscaJoin:
			s.GroupsJoined++
		case models.ActionLoanPromptShown:
			s.LoansPrompted++
		case models.ActionLoanTaken:
			s.LoansTaken++
		}
	}
	s.TokenClaimRate = percent(int64(s.TokensClaimed), int64(len(users)), 1)
	s.AcceptanceRate = percent(int64(s.LoansTaken), int64(s.LoansPrompted), 2)
	saved := TotalSavings(events)
	s.TotalSaved = saved.Total
	s.UnbankedSavers = UnbankedUsers(events).Count
	return s
}

// UserProfile is the full per-user behavioral readout.
type UserProfile struct {
	UserID      string           `json:"user_id"`
	TrustScore  int              `json:"trust_score"`
	CreditScore int              `json:"credit_score"`
	Behavior    Behavior         `json:"behavior"`
	Borrowing   BorrowingProfile `json:"borrowing"`
	Savings     SavingsActivity  `json:"savings"`
	EventCount  int              `json:"event_count"`
}

// UserBehaviorProfile folds one user's events into the combined
// scoring readout. The caller is expected to pass events already
// filtered to the user.
func UserBehaviorProfile(userID string, events []models.Event) UserProfile {
	return UserProfile{
		UserID:      userID,
		TrustScore:  TrustScore(events),
		CreditScore: CreditScore(events),
		Behavior:    ClassifyBehavior(events),
		Borrowing:   BorrowingBehavior(events),
		Savings:     SavingsMetrics(events),
		EventCount:  len(events),
	}
}
