package models

import (
	"time"
)

// ActionType is the fixed vocabulary of tracked user actions.
type ActionType string

const (
	ActionTokenClaim         ActionType = "token_claim"
	ActionRoscaJoin          ActionType = "rosca_join"
	ActionRoscaPayment       ActionType = "rosca_payment"
	ActionRoscaPayout        ActionType = "rosca_payout"
	ActionLoanPromptShown    ActionType = "loan_prompt_shown"
	ActionLoanDecision       ActionType = "loan_decision"
	ActionLoanTaken          ActionType = "loan_taken"
	ActionLoanRepayment      ActionType = "loan_repayment"
	ActionFixedSavingsLocked ActionType = "fixed_savings_locked"
	ActionTargetCreated      ActionType = "target_created"
	ActionTargetContribution ActionType = "target_contribution"
	ActionInvestmentMade     ActionType = "investment_made"
	ActionBankLinked         ActionType = "bank_linked"
	ActionScreenView         ActionType = "screen_view"
	ActionFeatureClick       ActionType = "feature_click"
)

// Metadata is the tagged-variant payload of an event. Each action type
// carries its own concrete metadata struct.
type Metadata interface {
	Action() ActionType
}

// DeviceInfo is the client device snapshot captured with each event.
type DeviceInfo struct {
	UserAgent string `json:"user_agent,omitempty" dynamodbav:"user_agent,omitempty"`
	Platform  string `json:"platform,omitempty" dynamodbav:"platform,omitempty"`
	Language  string `json:"language,omitempty" dynamodbav:"language,omitempty"`
}

// Event is one entry in the append-only action log. Events are immutable
// once appended; insertion order per user defines the chronological
// sequence the analytics reducers fold over.
type Event struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	UserName   string     `json:"user_name"`
	UserEmail  string     `json:"user_email,omitempty"`
	ActionType ActionType `json:"action_type"`
	Metadata   Metadata   `json:"metadata"`
	Timestamp  time.Time  `json:"timestamp"`
	SessionID  string     `json:"session_id,omitempty"`
	Device     DeviceInfo `json:"device,omitempty"`
}

// NewEvent stamps a log entry for the given user. The caller supplies
// the timestamp so logical clocks stay in control during tests.
func NewEvent(u *User, meta Metadata, at time.Time) *Event {
	return &Event{
		UserID:     u.ID,
		UserName:   u.Name,
		UserEmail:  u.Email,
		ActionType: meta.Action(),
		Metadata:   meta,
		Timestamp:  at,
	}
}

type TokenClaimMeta struct {
	Claimed bool  `json:"claimed" dynamodbav:"claimed"`
	Amount  int64 `json:"amount" dynamodbav:"amount"`
}

func (*TokenClaimMeta) Action() ActionType { return ActionTokenClaim }

type RoscaJoinMeta struct {
	GroupID              string    `json:"group_id" dynamodbav:"group_id"`
	GroupName            string    `json:"group_name" dynamodbav:"group_name"`
	Amount               int64     `json:"amount" dynamodbav:"amount"`
	Frequency            Frequency `json:"frequency" dynamodbav:"frequency"`
	Position             int       `json:"position" dynamodbav:"position"`
	HadSufficientBalance bool      `json:"had_sufficient_balance" dynamodbav:"had_sufficient_balance"`
	TookLoan             bool      `json:"took_loan" dynamodbav:"took_loan"`
}

func (*RoscaJoinMeta) Action() ActionType { return ActionRoscaJoin }

type RoscaPaymentMeta struct {
	GroupID       string `json:"group_id" dynamodbav:"group_id"`
	GroupName     string `json:"group_name" dynamodbav:"group_name"`
	Amount        int64  `json:"amount" dynamodbav:"amount"`
	PaymentNumber int    `json:"payment_number" dynamodbav:"payment_number"`
	TotalPayments int    `json:"total_payments" dynamodbav:"total_payments"`
	OnTime        bool   `json:"on_time" dynamodbav:"on_time"`
}

func (*RoscaPaymentMeta) Action() ActionType { return ActionRoscaPayment }

type RoscaPayoutMeta struct {
	GroupID       string `json:"group_id" dynamodbav:"group_id"`
	GroupName     string `json:"group_name" dynamodbav:"group_name"`
	GrossAmount   int64  `json:"gross_amount" dynamodbav:"gross_amount"`
	LoanDeduction int64  `json:"loan_deduction" dynamodbav:"loan_deduction"`
	NetAmount     int64  `json:"net_amount" dynamodbav:"net_amount"`
	Position      int    `json:"position" dynamodbav:"position"`
}

func (*RoscaPayoutMeta) Action() ActionType { return ActionRoscaPayout }

type LoanPromptMeta struct {
	Reason    string `json:"reason" dynamodbav:"reason"`
	GroupID   string `json:"group_id,omitempty" dynamodbav:"group_id,omitempty"`
	Shortfall int64  `json:"shortfall" dynamodbav:"shortfall"`
	Balance   int64  `json:"balance" dynamodbav:"balance"`
}

func (*LoanPromptMeta) Action() ActionType { return ActionLoanPromptShown }

// Decision is the outcome of a loan prompt.
type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionDeclined Decision = "declined"
)

type LoanDecisionMeta struct {
	Decision Decision `json:"decision" dynamodbav:"decision"`
	Reason   string   `json:"reason" dynamodbav:"reason"`
	Amount   int64    `json:"amount" dynamodbav:"amount"`
	GroupID  string   `json:"group_id,omitempty" dynamodbav:"group_id,omitempty"`
}

func (*LoanDecisionMeta) Action() ActionType { return ActionLoanDecision }

type LoanTakenMeta struct {
	Amount         int64  `json:"amount" dynamodbav:"amount"`
	Purpose        string `json:"purpose" dynamodbav:"purpose"`
	Interest       int64  `json:"interest" dynamodbav:"interest"`
	TotalRepayment int64  `json:"total_repayment" dynamodbav:"total_repayment"`
	GroupID        string `json:"group_id,omitempty" dynamodbav:"group_id,omitempty"`
	IsRoscaAdvance bool   `json:"is_rosca_advance" dynamodbav:"is_rosca_advance"`
}

func (*LoanTakenMeta) Action() ActionType { return ActionLoanTaken }

type LoanRepaymentMeta struct {
	LoanID string `json:"loan_id" dynamodbav:"loan_id"`
	Amount int64  `json:"amount" dynamodbav:"amount"`
	Method string `json:"method" dynamodbav:"method"`
}

func (*LoanRepaymentMeta) Action() ActionType { return ActionLoanRepayment }

type FixedSavingsMeta struct {
	Amount          int64  `json:"amount" dynamodbav:"amount"`
	DurationLabel   string `json:"duration_label" dynamodbav:"duration_label"`
	RatePercent     int    `json:"rate_percent" dynamodbav:"rate_percent"`
	ExpectedReturns int64  `json:"expected_returns" dynamodbav:"expected_returns"`
}

func (*FixedSavingsMeta) Action() ActionType { return ActionFixedSavingsLocked }

type TargetCreatedMeta struct {
	GoalID       string `json:"goal_id" dynamodbav:"goal_id"`
	GoalName     string `json:"goal_name" dynamodbav:"goal_name"`
	TargetAmount int64  `json:"target_amount" dynamodbav:"target_amount"`
	WeeklyAmount int64  `json:"weekly_amount" dynamodbav:"weekly_amount"`
	TotalWeeks   int    `json:"total_weeks" dynamodbav:"total_weeks"`
}

func (*TargetCreatedMeta) Action() ActionType { return ActionTargetCreated }

type TargetContributionMeta struct {
	GoalID             string `json:"goal_id" dynamodbav:"goal_id"`
	GoalName           string `json:"goal_name" dynamodbav:"goal_name"`
	ContributionAmount int64  `json:"contribution_amount" dynamodbav:"contribution_amount"`
	CurrentTotal       int64  `json:"current_total" dynamodbav:"current_total"`
	TargetAmount       int64  `json:"target_amount" dynamodbav:"target_amount"`
	WeekNumber         int    `json:"week_number" dynamodbav:"week_number"`
}

func (*TargetContributionMeta) Action() ActionType { return ActionTargetContribution }

type InvestmentMeta struct {
	InvestmentID    string `json:"investment_id" dynamodbav:"investment_id"`
	Name            string `json:"name" dynamodbav:"name"`
	Amount          int64  `json:"amount" dynamodbav:"amount"`
	ExpectedReturns int64  `json:"expected_returns" dynamodbav:"expected_returns"`
	DurationMonths  int    `json:"duration_months" dynamodbav:"duration_months"`
	Risk            string `json:"risk,omitempty" dynamodbav:"risk,omitempty"`
}

func (*InvestmentMeta) Action() ActionType { return ActionInvestmentMade }

type BankLinkedMeta struct {
	BankName string `json:"bank_name" dynamodbav:"bank_name"`
}

func (*BankLinkedMeta) Action() ActionType { return ActionBankLinked }

type ScreenViewMeta struct {
	ScreenName       string `json:"screen_name" dynamodbav:"screen_name"`
	TimeSpentSeconds int    `json:"time_spent_seconds" dynamodbav:"time_spent_seconds"`
}

func (*ScreenViewMeta) Action() ActionType { return ActionScreenView }

type FeatureClickMeta struct {
	FeatureName string `json:"feature_name" dynamodbav:"feature_name"`
}

func (*FeatureClickMeta) Action() ActionType { return ActionFeatureClick }

// MetadataFor returns an empty metadata value of the concrete type for
// the given action, for unmarshalling stored events. Unknown actions
// return nil.
func MetadataFor(at ActionType) Metadata {
	switch at {
	case ActionTokenClaim:
		return &TokenClaimMeta{}
	case ActionRoscaJoin:
		return &RoscaJoinMeta{}
	case ActionRoscaPayment:
		return &RoscaPaymentMeta{}
	case ActionRoscaPayout:
		return &RoscaPayoutMeta{}
	case ActionLoanPromptShown:
		return &LoanPromptMeta{}
	case ActionLoanDecision:
		return &LoanDecisionMeta{}
	case ActionLoanTaken:
		return &LoanTakenMeta{}
	case ActionLoanRepayment:
		return &LoanRepaymentMeta{}
	case ActionFixedSavingsLocked:
		return &FixedSavingsMeta{}
	case ActionTargetCreated:
		return &TargetCreatedMeta{}
	case ActionTargetContribution:
		return &TargetContributionMeta{}
	case ActionInvestmentMade:
		return &InvestmentMeta{}
	case ActionBankLinked:
		return &BankLinkedMeta{}
	case ActionScreenView:
		return &ScreenViewMeta{}
	case ActionFeatureClick:
		return &FeatureClickMeta{}
	}
	return nil
}
