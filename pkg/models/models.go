package models

import (
	"time"
)

// Frequency is the contribution cadence of a ROSCA group.
type Frequency string

const (
	Weekly  Frequency = "Weekly"
	Monthly Frequency = "Monthly"
)

// Period returns the length of one contribution period. Periods are
// simulated: a "month" is a flat 30 days.
func (f Frequency) Period() time.Duration {
	if f == Monthly {
		return 30 * 24 * time.Hour
	}
	return 7 * 24 * time.Hour
}

// Role distinguishes research participants from platform admins.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleAdmin       Role = "admin"
)

// User is the per-user ledger record: wallet balance plus all holdings.
// It is owned exclusively by the user and mutated only through the
// storage layer's update operations.
type User struct {
	ID              string                       `json:"id" dynamodbav:"id"`
	Name            string                       `json:"name" dynamodbav:"name"`
	Email           string                       `json:"email" dynamodbav:"email"`
	WalletBalance   int64                        `json:"wallet_balance" dynamodbav:"wallet_balance"`
	HasClaimedToken bool                         `json:"has_claimed_token" dynamodbav:"has_claimed_token"`
	CreditScoreSeed int                          `json:"credit_score_seed" dynamodbav:"credit_score_seed"`
	Role            Role                         `json:"role" dynamodbav:"role"`
	BankLinked      bool                         `json:"bank_linked" dynamodbav:"bank_linked"`
	JoinedGroups    map[string]JoinedGroup       `json:"joined_groups" dynamodbav:"joined_groups"`
	GroupRequests   []string                     `json:"group_requests,omitempty" dynamodbav:"group_requests,omitempty"`
	Loans           map[string]Loan              `json:"loans" dynamodbav:"loans"`
	FixedSavings    []FixedSavingsPosition       `json:"fixed_savings" dynamodbav:"fixed_savings"`
	TargetSavings   map[string]TargetSavingsGoal `json:"target_savings" dynamodbav:"target_savings"`
	Investments     []InvestmentPosition         `json:"investments" dynamodbav:"investments"`
	CreatedAt       time.Time                    `json:"created_at" dynamodbav:"created_at"`
}

// Group is an entry in the shared, read-mostly ROSCA catalog.
// CurrentMemberCount is the only mutable field; updates to it are
// serialized by the storage layer.
type Group struct {
	ID                 string    `json:"id" dynamodbav:"id"`
	Name               string    `json:"name" dynamodbav:"name"`
	ContributionAmount int64     `json:"contribution_amount" dynamodbav:"contribution_amount"`
	Frequency          Frequency `json:"frequency" dynamodbav:"frequency"`
	MemberCapacity     int       `json:"member_capacity" dynamodbav:"member_capacity"`
	CurrentMemberCount int       `json:"current_member_count" dynamodbav:"current_member_count"`
	CompletionRateHint int       `json:"completion_rate_hint" dynamodbav:"completion_rate_hint"`
}

// Open reports whether the group can still accept members.
func (g *Group) Open() bool {
	return g.CurrentMemberCount < g.MemberCapacity
}

// JoinedGroup is a user's membership in a ROSCA group. Group terms are
// denormalized onto the membership so periodic evaluation does not need
// a catalog read.
type JoinedGroup struct {
	GroupID            string    `json:"group_id" dynamodbav:"group_id"`
	GroupName          string    `json:"group_name" dynamodbav:"group_name"`
	ContributionAmount int64     `json:"contribution_amount" dynamodbav:"contribution_amount"`
	Frequency          Frequency `json:"frequency" dynamodbav:"frequency"`
	MemberCapacity     int       `json:"member_capacity" dynamodbav:"member_capacity"`
	JoinedAt           time.Time `json:"joined_at" dynamodbav:"joined_at"`
	PayoutPosition     int       `json:"payout_position" dynamodbav:"payout_position"`
	PayoutWeek         int       `json:"payout_week" dynamodbav:"payout_week"`
	TotalPayoutAmount  int64     `json:"total_payout_amount" dynamodbav:"total_payout_amount"`
	ContributionsMade  int       `json:"contributions_made" dynamodbav:"contributions_made"`
	NextDeductionDue   time.Time `json:"next_deduction_due" dynamodbav:"next_deduction_due"`
	PayoutReceived     bool      `json:"payout_received" dynamodbav:"payout_received"`
}

// PayoutPending reports whether the member is still waiting on their
// turn in the rotation.
func (j *JoinedGroup) PayoutPending() bool {
	return !j.PayoutReceived && j.ContributionsMade < j.PayoutPosition
}

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanActive LoanStatus = "Active"
	LoanRepaid LoanStatus = "Repaid"
)

// Loan is an issued loan. The borrower receives Principal and owes
// TotalRepayable. A loan linked to a ROSCA group is netted from that
// group's payout at settlement.
type Loan struct {
	ID              string     `json:"id" dynamodbav:"id"`
	Principal       int64      `json:"principal" dynamodbav:"principal"`
	Interest        int64      `json:"interest" dynamodbav:"interest"`
	TotalRepayable  int64      `json:"total_repayable" dynamodbav:"total_repayable"`
	InterestPercent int        `json:"interest_percent" dynamodbav:"interest_percent"`
	Purpose         string     `json:"purpose" dynamodbav:"purpose"`
	LinkedGroupID   string     `json:"linked_group_id,omitempty" dynamodbav:"linked_group_id,omitempty"`
	IssuedAt        time.Time  `json:"issued_at" dynamodbav:"issued_at"`
	Status          LoanStatus `json:"status" dynamodbav:"status"`
	DueAt           time.Time  `json:"due_at" dynamodbav:"due_at"`
}

// FixedSavingsPosition is a locked fixed-savings deposit. Read-only
// after creation; there is no early withdrawal.
type FixedSavingsPosition struct {
	ID              string    `json:"id" dynamodbav:"id"`
	Principal       int64     `json:"principal" dynamodbav:"principal"`
	RatePercent     int       `json:"rate_percent" dynamodbav:"rate_percent"`
	DurationLabel   string    `json:"duration_label" dynamodbav:"duration_label"`
	MaturityReturn  int64     `json:"maturity_return" dynamodbav:"maturity_return"`
	TotalAtMaturity int64     `json:"total_at_maturity" dynamodbav:"total_at_maturity"`
	LockedAt        time.Time `json:"locked_at" dynamodbav:"locked_at"`
	MaturesAt       time.Time `json:"matures_at" dynamodbav:"matures_at"`
}

// GoalStatus is the state of a target-savings goal. Completed is
// irreversible.
type GoalStatus string

const (
	GoalActive    GoalStatus = "Active"
	GoalCompleted GoalStatus = "Completed"
)

// TargetSavingsGoal is a weekly savings plan towards a fixed target.
type TargetSavingsGoal struct {
	ID                string     `json:"id" dynamodbav:"id"`
	Name              string     `json:"name" dynamodbav:"name"`
	TargetAmount      int64      `json:"target_amount" dynamodbav:"target_amount"`
	WeeklyAmount      int64      `json:"weekly_amount" dynamodbav:"weekly_amount"`
	TotalWeeksPlanned int        `json:"total_weeks_planned" dynamodbav:"total_weeks_planned"`
	CurrentAmount     int64      `json:"current_amount" dynamodbav:"current_amount"`
	WeeksCompleted    int        `json:"weeks_completed" dynamodbav:"weeks_completed"`
	Status            GoalStatus `json:"status" dynamodbav:"status"`
	CreatedAt         time.Time  `json:"created_at" dynamodbav:"created_at"`
}

// InvestmentPosition is a placed investment. Read-only after creation.
type InvestmentPosition struct {
	ID              string    `json:"id" dynamodbav:"id"`
	Name            string    `json:"name" dynamodbav:"name"`
	Principal       int64     `json:"principal" dynamodbav:"principal"`
	ReturnPercent   string    `json:"return_percent" dynamodbav:"return_percent"`
	DurationMonths  int       `json:"duration_months" dynamodbav:"duration_months"`
	MaturityReturn  int64     `json:"maturity_return" dynamodbav:"maturity_return"`
	TotalAtMaturity int64     `json:"total_at_maturity" dynamodbav:"total_at_maturity"`
	InvestedAt      time.Time `json:"invested_at" dynamodbav:"invested_at"`
	MaturesAt       time.Time `json:"matures_at" dynamodbav:"matures_at"`
}

// NewUser returns a user record with all holdings initialized, so the
// storage layer can update nested maps without existence checks.
func NewUser(id, name, email string, now time.Time) *User {
	return &User{
		ID:            id,
		Name:          name,
		Email:         email,
		Role:          RoleParticipant,
		JoinedGroups:  map[string]JoinedGroup{},
		Loans:         map[string]Loan{},
		FixedSavings:  []FixedSavingsPosition{},
		TargetSavings: map[string]TargetSavingsGoal{},
		Investments:   []InvestmentPosition{},
		CreatedAt:     now,
	}
}
