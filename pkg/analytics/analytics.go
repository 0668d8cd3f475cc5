// Package analytics computes the research scores and aggregates as pure
// folds over the action log. Every function is deterministic, performs
// no I/O and treats an empty input as a defined zero result.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/suprebose/wallet-platform/pkg/models"
)

// percent renders numer/denom*100 with a fixed number of decimals. A
// zero denominator renders as zero.
func percent(numer, denom int64, places int32) string {
	if denom == 0 {
		return decimal.Zero.StringFixed(places)
	}
	return decimal.NewFromInt(numer * 100).Div(decimal.NewFromInt(denom)).StringFixed(places)
}

// amountOf extracts the monetary amount carried by an event's metadata.
// Target contributions carry it as the contribution amount; everything
// else as a plain amount. Events without one report zero.
func amountOf(ev *models.Event) int64 {
	switch m := ev.Metadata.(type) {
	case *models.TargetContributionMeta:
		return m.ContributionAmount
	case *models.FixedSavingsMeta:
		return m.Amount
	case *models.InvestmentMeta:
		return m.Amount
	case *models.RoscaPaymentMeta:
		return m.Amount
	case *models.LoanTakenMeta:
		return m.Amount
	case *models.LoanRepaymentMeta:
		return m.Amount
	case *models.TokenClaimMeta:
		return m.Amount
	}
	return 0
}

// TrustScore scores a user's reliability 0-100 from payment timeliness,
// participation, repayment and engagement. Each term is capped, so the
// score degrades gracefully on sparse histories.
func TrustScore(events []models.Event) int {
	var roscaPayments, onTime, joins, loansTaken int
	for i := range events {
		switch m := events[i].Metadata.(type) {
		case *models.RoscaPaymentMeta:
			roscaPayments++
			if m.OnTime {
				onTime++
			}
		case *models.RoscaJoinMeta:
			joins++
		case *models.LoanTakenMeta:
			loansTaken++
		}
	}

	payment := decimal.Zero
	if roscaPayments > 0 {
		payment = decimal.NewFromInt(int64(onTime) * 40).Div(decimal.NewFromInt(int64(roscaPayments)))
	}
	participation := joins * 10
	if participation > 20 {
		participation = 20
	}
	repayment := loansTaken * 10
	if repayment > 20 {
		repayment = 20
	}
	// The engagement term keeps its fraction until the single final
	// rounding, like the payment term.
	engagement := decimal.NewFromInt(int64(len(events))).Div(decimal.NewFromInt(8))
	engagementCap := decimal.NewFromInt(20)
	if engagement.GreaterThan(engagementCap) {
		engagement = engagementCap
	}
	return int(payment.Add(engagement).Add(decimal.NewFromInt(int64(participation + repayment))).Round(0).IntPart())
}

const (
	creditScoreFloor = 300
	creditScoreCeil  = 900
)

// CreditScore derives a 300-900 credit score from the loan history:
// repayments build it, heavy borrowing erodes utilization and new-credit
// headroom. Age and mix terms are fixed for the research cohort.
func CreditScore(events []models.Event) int {
	var taken, repaid int
	for i := range events {
		switch events[i].ActionType {
		case models.ActionLoanTaken:
			taken++
		case models.ActionLoanRepayment:
			repaid++
		}
	}

	paymentHistory := repaid * 30
	if paymentHistory > 300 {
		paymentHistory = 300
	}
	utilization := 300 - taken*40
	if utilization < 0 {
		utilization = 0
	}
	newCredit := 100 - taken*10
	if newCredit < 0 {
		newCredit = 0
	}

	score := creditScoreFloor + paymentHistory + utilization + 200 + newCredit + 100
	if score < creditScoreFloor {
		score = creditScoreFloor
	}
	if score > creditScoreCeil {
		score = creditScoreCeil
	}
	return score
}

// Behavior is a coarse borrower/saver classification.
type Behavior string

const (
	BehaviorBorrower Behavior = "Borrower"
	BehaviorSaver    Behavior = "Saver"
	BehaviorBalanced Behavior = "Balanced"
)

// savingAction reports whether an action counts as a saving act.
func savingAction(at models.ActionType) bool {
	switch at {
	case models.ActionFixedSavingsLocked, models.ActionInvestmentMade, models.ActionTargetContribution:
		return true
	}
	return false
}

// ClassifyBehavior labels the event history by whether borrowing or
// saving dominates.
func ClassifyBehavior(events []models.Event) Behavior {
	var borrow, save int
	for i := range events {
		switch {
		case events[i].ActionType == models.ActionLoanTaken:
			borrow++
		case savingAction(events[i].ActionType):
			save++
		}
	}
	switch {
	case borrow > save:
		return BehaviorBorrower
	case save > borrow:
		return BehaviorSaver
	}
	return BehaviorBalanced
}

// InclusionMetrics reports what share of the cohort saves through any
// formal product.
type InclusionMetrics struct {
	TotalUsers    int    `json:"total_users"`
	Savers        int    `json:"savers"`
	InclusionRate string `json:"inclusion_rate"`
}

// FinancialInclusion computes the saver share across all users seen in
// the log. Creating a target counts as saving intent even before the
// first contribution.
func FinancialInclusion(events []models.Event) InclusionMetrics {
	users := map[string]bool{}
	savers := map[string]bool{}
	for i := range events {
		users[events[i].UserID] = true
		switch events[i].ActionType {
		case models.ActionFixedSavingsLocked, models.ActionInvestmentMade, models.ActionTargetCreated:
			savers[events[i].UserID] = true
		}
	}
	return InclusionMetrics{
		TotalUsers:    len(users),
		Savers:        len(savers),
		InclusionRate: percent(int64(len(savers)), int64(len(users)), 1),
	}
}

// SavingsActivity is the weighted savings-engagement index.
type SavingsActivity struct {
	FixedSavingsCount       int    `json:"fixed_savings_count"`
	InvestmentCount         int    `json:"investment_count"`
	TargetContributionCount int    `json:"target_contribution_count"`
	BehaviorScore           string `json:"behavior_score"`
}

// SavingsMetrics folds the savings events into a weighted engagement
// index: fixed savings weigh most, investments next, target
// contributions least. A relative index, not a percentage.
func SavingsMetrics(events []models.Event) SavingsActivity {
	var fixed, invest, target int
	for i := range events {
		switch events[i].ActionType {
		case models.ActionFixedSavingsLocked:
			fixed++
		case models.ActionInvestmentMade:
			invest++
		case models.ActionTargetContribution:
			target++
		}
	}
	score := decimal.NewFromInt(int64(fixed)).Mul(decimal.New(4, -1)).
		Add(decimal.NewFromInt(int64(invest)).Mul(decimal.New(3, -1))).
		Add(decimal.NewFromInt(int64(target)).Mul(decimal.New(2, -1))).
		Div(decimal.New(10, 0))
	return SavingsActivity{
		FixedSavingsCount:       fixed,
		InvestmentCount:         invest,
		TargetContributionCount: target,
		BehaviorScore:           score.StringFixed(1),
	}
}

// BorrowingProfile summarizes loan usage.
type BorrowingProfile struct {
	Frequency     int    `json:"frequency"`
	AvgLoanAmount int64  `json:"avg_loan_amount"`
	RepaymentRate string `json:"repayment_rate"`
}

// BorrowingBehavior folds loan events into frequency, average principal
// and repayment rate.
func BorrowingBehavior(events []models.Event) BorrowingProfile {
	var taken, repaid int
	var sum int64
	for i := range events {
		switch events[i].ActionType {
		case models.ActionLoanTaken:
			taken++
			sum += amountOf(&events[i])
		case models.ActionLoanRepayment:
			repaid++
		}
	}
	var avg int64
	if taken > 0 {
		avg = sum / int64(taken)
	}
	return BorrowingProfile{
		Frequency:     taken,
		AvgLoanAmount: avg,
		RepaymentRate: percent(int64(repaid), int64(taken), 1),
	}
}

// GroupActivity is the per-group join and contribution tally.
type GroupActivity struct {
	Members       int   `json:"members"`
	Contributions int64 `json:"contributions"`
}

// RoscaGroupAnalysis folds join and payment events per group.
func RoscaGroupAnalysis(events []models.Event) map[string]GroupActivity {
	out := map[string]GroupActivity{}
	for i := range events {
		switch m := events[i].Metadata.(type) {
		case *models.RoscaJoinMeta:
			g := out[m.GroupID]
			g.Members++
			out[m.GroupID] = g
		case *models.RoscaPaymentMeta:
			g := out[m.GroupID]
			g.Contributions += m.Amount
			out[m.GroupID] = g
		}
	}
	return out
}

// PoolSummary is the contribution pool of one group.
type PoolSummary struct {
	TotalPool       int64 `json:"total_pool"`
	Members         int   `json:"members"`
	AvgContribution int64 `json:"avg_contribution"`
}

// RoscaPoolSummary sizes each group's pool from payment events alone:
// total contributed, distinct contributors and the average per
// contributor.
func RoscaPoolSummary(events []models.Event) map[string]PoolSummary {
	pools := map[string]int64{}
	contributors := map[string]map[string]bool{}
	for i := range events {
		m, ok := events[i].Metadata.(*models.RoscaPaymentMeta)
		if !ok {
			continue
		}
		pools[m.GroupID] += m.Amount
		if contributors[m.GroupID] == nil {
			contributors[m.GroupID] = map[string]bool{}
		}
		contributors[m.GroupID][events[i].UserID] = true
	}

	out := make(map[string]PoolSummary, len(pools))
	for gid, total := range pools {
		members := len(contributors[gid])
		avg := int64(0)
		if members > 0 {
			avg = total / int64(members)
		}
		out[gid] = PoolSummary{TotalPool: total, Members: members, AvgContribution: avg}
	}
	return out
}

// SavingsTotal is the cohort-wide savings volume.
type SavingsTotal struct {
	Total int64 `json:"total"`
	Count int   `json:"count"`
}

// TotalSavings sums the amounts saved across target contributions,
// fixed savings and investments.
func TotalSavings(events []models.Event) SavingsTotal {
	var out SavingsTotal
	for i := range events {
		if !savingAction(events[i].ActionType) {
			continue
		}
		out.Total += amountOf(&events[i])
		out.Count++
	}
	return out
}

// UnbankedReport lists users who save without a linked bank account.
type UnbankedReport struct {
	Count   int      `json:"count"`
	UserIDs []string `json:"user_ids"`
}

// UnbankedUsers finds users who save through the platform (target
// contributions, fixed savings or ROSCA payments) but never linked a
// bank account.
func UnbankedUsers(events []models.Event) UnbankedReport {
	saved := map[string]bool{}
	banked := map[string]bool{}
	for i := range events {
		switch events[i].ActionType {
		case models.ActionTargetContribution, models.ActionFixedSavingsLocked, models.ActionRoscaPayment:
			saved[events[i].UserID] = true
		case models.ActionBankLinked:
			banked[events[i].UserID] = true
		}
	}

	var ids []string
	for id := range saved {
		if !banked[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return UnbankedReport{Count: len(ids), UserIDs: ids}
}

// RegularityReport reports how many saving users save regularly.
type RegularityReport struct {
	SavingUsers  int    `json:"saving_users"`
	RegularUsers int    `json:"regular_users"`
	Rate         string `json:"rate"`
}

// regularThreshold is the saving-event count at which a user counts as
// a regular saver.
const regularThreshold = 4

// RegularContributionRate counts users with at least four saving events
// as regulars. A count threshold, not a cadence check.
func RegularContributionRate(events []models.Event) RegularityReport {
	perUser := map[string]int{}
	for i := range events {
		if savingAction(events[i].ActionType) {
			perUser[events[i].UserID]++
		}
	}
	regular := 0
	for _, n := range perUser {
		if n >= regularThreshold {
			regular++
		}
	}
	return RegularityReport{
		SavingUsers:  len(perUser),
		RegularUsers: regular,
		Rate:         percent(int64(regular), int64(len(perUser)), 1),
	}
}

// ImprovementReport reports how many evaluated users saved more over
// time.
type ImprovementReport struct {
	EvaluatedUsers int    `json:"evaluated_users"`
	ImprovedUsers  int    `json:"improved_users"`
	Rate           string `json:"rate"`
}

// SavingsImprovement compares each user's first three contribution
// amounts against their last three; only users with at least six
// contributions (target contributions and fixed savings, in log order)
// are evaluated.
func SavingsImprovement(events []models.Event) ImprovementReport {
	perUser := map[string][]int64{}
	var order []string
	for i := range events {
		at := events[i].ActionType
		if at != models.ActionTargetContribution && at != models.ActionFixedSavingsLocked {
			continue
		}
		uid := events[i].UserID
		if _, seen := perUser[uid]; !seen {
			order = append(order, uid)
		}
		perUser[uid] = append(perUser[uid], amountOf(&events[i]))
	}

	var evaluated, improved int
	for _, uid := range order {
		amounts := perUser[uid]
		if len(amounts) < 6 {
			continue
		}
		evaluated++
		var first, last int64
		for _, a := range amounts[:3] {
			first += a
		}
		for _, a := range amounts[len(amounts)-3:] {
			last += a
		}
		if last > first {
			improved++
		}
	}
	return ImprovementReport{
		EvaluatedUsers: evaluated,
		ImprovedUsers:  improved,
		Rate:           percent(int64(improved), int64(evaluated), 1),
	}
}

// ReasonFunnel is the prompt-to-decision funnel for one prompt reason.
type ReasonFunnel struct {
	Prompted int `json:"prompted"`
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`
}

// LoanFunnel is the overall loan-prompt conversion picture.
type LoanFunnel struct {
	Prompted       int                     `json:"prompted"`
	Accepted       int                     `json:"accepted"`
	Declined       int                     `json:"declined"`
	AcceptanceRate string                  `json:"acceptance_rate"`
	ByReason       map[string]ReasonFunnel `json:"by_reason"`
}

// LoanBehaviorAnalysis pairs loan prompts with the decisions they led
// to, per prompt reason. Decisions without a reason are not attributed
// to any funnel.
func LoanBehaviorAnalysis(events []models.Event) LoanFunnel {
	out := LoanFunnel{ByReason: map[string]ReasonFunnel{}}
	for i := range events {
		switch m := events[i].Metadata.(type) {
		case *models.LoanPromptMeta:
			out.Prompted++
			f := out.ByReason[m.Reason]
			f.Prompted++
			out.ByReason[m.Reason] = f
		case *models.LoanDecisionMeta:
			accepted := m.Decision == models.DecisionAccepted
			if accepted {
				out.Accepted++
			} else {
				out.Declined++
			}
			if m.Reason == "" {
				continue
			}
			f := out.ByReason[m.Reason]
			if accepted {
				f.Accepted++
			} else {
				f.Declined++
			}
			out.ByReason[m.Reason] = f
		}
	}
	out.AcceptanceRate = percent(int64(out.Accepted), int64(out.Prompted), 2)
	return out
}
