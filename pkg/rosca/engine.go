// Package rosca implements the rotating-savings lifecycle: joining a
// group, periodic contribution deductions and the one-time payout with
// loan netting.
package rosca

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/suprebose/wallet-platform/pkg/fincalc"
	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/scheduler"
	"github.com/suprebose/wallet-platform/pkg/storage"
)

var (
	// ErrAlreadyJoined is returned when a user joins a group they are
	// already a member of.
	ErrAlreadyJoined = errors.New("already a member of this group")
	// ErrNotAMember is returned when an operation targets a group the
	// user never joined.
	ErrNotAMember = errors.New("not a member of this group")
	// ErrPayoutReceived is returned when an advance is requested against
	// a payout that is no longer pending.
	ErrPayoutReceived = errors.New("payout no longer pending")
)

// joinRetries bounds the optimistic retry loop on the member counter.
const joinRetries = 5

// Prompter records that a loan offer was shown when a wallet came up
// short.
type Prompter interface {
	PromptForUser(ctx context.Context, user *models.User, reason string, shortfall int64, groupID string) error
}

// LoanIssuer issues a loan and credits the principal to the wallet.
type LoanIssuer interface {
	Issue(ctx context.Context, userID string, principal int64, purpose, linkedGroupID string) (*models.Loan, error)
}

// Engine drives the group lifecycle against the storage layer.
type Engine struct {
	store    storage.Storage
	prompter Prompter
	issuer   LoanIssuer
	sched    scheduler.Scheduler
	clock    scheduler.Clock
	logger   *slog.Logger
}

// NewEngine creates a lifecycle Engine.
func NewEngine(store storage.Storage, prompter Prompter, issuer LoanIssuer, sched scheduler.Scheduler, clock scheduler.Clock, logger *slog.Logger) *Engine {
	return &Engine{
		store:    store,
		prompter: prompter,
		issuer:   issuer,
		sched:    sched,
		clock:    clock,
		logger:   logger,
	}
}

// Join adds the user to a group. The assigned payout position is the
// member count after the join, so positions are dense and unique. The
// first contribution is debited immediately; the remaining ones are
// scheduled one period apart.
//
// A wallet short of the contribution amount records a loan prompt and
// returns storage.ErrInsufficientFunds without touching the group.
func (e *Engine) Join(ctx context.Context, userID, groupID string) (*models.User, error) {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, ok := user.JoinedGroups[groupID]; ok {
		return nil, ErrAlreadyJoined
	}

	group, err := e.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.Open() {
		return nil, storage.ErrGroupFull
	}

	if user.WalletBalance < group.ContributionAmount {
		shortfall := group.ContributionAmount - user.WalletBalance
		if err := e.prompter.PromptForUser(ctx, user, "rosca_join", shortfall, groupID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("join %s: %w", group.Name, storage.ErrInsufficientFunds)
	}

	// Claim a slot first. The counter is the position authority, so the
	// increment must settle before the membership is written.
	var updated *models.Group
	expected := group.CurrentMemberCount
	for attempt := 0; ; attempt++ {
		updated, err = e.store.AdjustMemberCount(ctx, groupID, 1, expected)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrStale) || attempt >= joinRetries {
			return nil, err
		}
		group, err = e.store.GetGroup(ctx, groupID)
		if err != nil {
			return nil, err
		}
		if !group.Open() {
			return nil, storage.ErrGroupFull
		}
		expected = group.CurrentMemberCount
	}

	now := e.clock.Now()
	position := updated.CurrentMemberCount
	membership := models.JoinedGroup{
		GroupID:            group.ID,
		GroupName:          group.Name,
		ContributionAmount: group.ContributionAmount,
		Frequency:          group.Frequency,
		MemberCapacity:     group.MemberCapacity,
		JoinedAt:           now,
		PayoutPosition:     position,
		PayoutWeek:         position,
		TotalPayoutAmount:  group.ContributionAmount * int64(group.MemberCapacity),
		ContributionsMade:  1,
		NextDeductionDue:   now.Add(group.Frequency.Period()),
	}

	debited, err := e.store.ApplyWalletDelta(ctx, userID, -group.ContributionAmount, &storage.HoldingsUpdate{Membership: &membership})
	if err != nil {
		// Release the slot we claimed.
		if _, derr := e.store.AdjustMemberCount(ctx, groupID, -1, -1); derr != nil {
			e.logger.Error("failed to release group slot after debit failure",
				slog.String("group_id", groupID), slog.String("error", derr.Error()))
		}
		if errors.Is(err, storage.ErrInsufficientFunds) {
			if perr := e.prompter.PromptForUser(ctx, user, "rosca_join", group.ContributionAmount, groupID); perr != nil {
				return nil, perr
			}
		}
		return nil, err
	}
	user = debited

	tookLoan := false
	for _, l := range user.Loans {
		if l.LinkedGroupID == groupID && l.Status == models.LoanActive {
			tookLoan = true
			break
		}
	}

	// The first contribution rides on the membership counter only;
	// rosca_payment events track the periodic deductions.
	joinEv := models.NewEvent(user, &models.RoscaJoinMeta{
		GroupID:              group.ID,
		GroupName:            group.Name,
		Amount:               group.ContributionAmount,
		Frequency:            group.Frequency,
		Position:             position,
		HadSufficientBalance: !tookLoan,
		TookLoan:             tookLoan,
	}, now)
	if err := e.store.AppendEvent(ctx, joinEv); err != nil {
		return nil, fmt.Errorf("failed to record group join: %w", err)
	}

	if err := e.sched.ScheduleDeduction(ctx, &scheduler.DeductionTick{
		UserID:  userID,
		GroupID: groupID,
		DueAt:   membership.NextDeductionDue,
	}); err != nil {
		e.logger.Error("failed to schedule deduction",
			slog.String("user_id", userID), slog.String("group_id", groupID), slog.String("error", err.Error()))
	}

	e.logger.Info("joined group",
		slog.String("user_id", userID),
		slog.String("group_id", groupID),
		slog.Int("position", position),
	)
	return user, nil
}

// EvaluationResult reports what one period evaluation did.
type EvaluationResult struct {
	ContributionApplied bool  `json:"contribution_applied"`
	OnTime              bool  `json:"on_time"`
	PromptedLoan        bool  `json:"prompted_loan"`
	PayoutApplied       bool  `json:"payout_applied"`
	GrossPayout         int64 `json:"gross_payout"`
	LoanDeduction       int64 `json:"loan_deduction"`
	NetPayout           int64 `json:"net_payout"`
	Completed           bool  `json:"completed"`
}

// EvaluatePeriod runs one lifecycle step for a membership: debit the
// contribution if one is due, then credit the payout if the member's
// turn has come. Safe to call repeatedly; a tick delivered twice finds
// the guards stale and applies nothing.
func (e *Engine) EvaluatePeriod(ctx context.Context, userID, groupID string) (*EvaluationResult, error) {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	m, ok := user.JoinedGroups[groupID]
	if !ok {
		return nil, ErrNotAMember
	}

	res := &EvaluationResult{}
	now := e.clock.Now()

	if m.ContributionsMade < m.MemberCapacity && !now.Before(m.NextDeductionDue) {
		due := m.NextDeductionDue
		onTime := !now.After(due.Add(m.Frequency.Period()))

		next := m
		next.ContributionsMade++
		next.NextDeductionDue = due.Add(m.Frequency.Period())

		prev := m.ContributionsMade
		updated, err := e.store.ApplyWalletDelta(ctx, userID, -m.ContributionAmount, &storage.HoldingsUpdate{
			Membership:          &next,
			ExpectContributions: &prev,
		})
		switch {
		case errors.Is(err, storage.ErrStale):
			// Another delivery of this tick already processed the period.
			return res, nil
		case errors.Is(err, storage.ErrInsufficientFunds):
			if perr := e.prompter.PromptForUser(ctx, user, "rosca_payment", m.ContributionAmount-user.WalletBalance, groupID); perr != nil {
				return nil, perr
			}
			res.PromptedLoan = true
			// Re-enqueue so the membership is evaluated again next period;
			// a wallet topped up by the prompted loan is picked up then.
			if serr := e.sched.ScheduleDeduction(ctx, &scheduler.DeductionTick{
				UserID:  userID,
				GroupID: groupID,
				DueAt:   now.Add(m.Frequency.Period()),
			}); serr != nil {
				e.logger.Error("failed to reschedule deduction after shortfall",
					slog.String("user_id", userID), slog.String("group_id", groupID), slog.String("error", serr.Error()))
			}
			return res, fmt.Errorf("contribution to %s: %w", m.GroupName, storage.ErrInsufficientFunds)
		case err != nil:
			return nil, err
		}
		user = updated

		res.ContributionApplied = true
		res.OnTime = onTime
		m = user.JoinedGroups[groupID]

		ev := models.NewEvent(user, &models.RoscaPaymentMeta{
			GroupID:       groupID,
			GroupName:     m.GroupName,
			Amount:        m.ContributionAmount,
			PaymentNumber: m.ContributionsMade,
			TotalPayments: m.MemberCapacity,
			OnTime:        onTime,
		}, now)
		if err := e.store.AppendEvent(ctx, ev); err != nil {
			return nil, fmt.Errorf("failed to record contribution: %w", err)
		}
	}

	if m.ContributionsMade >= m.PayoutPosition && !m.PayoutReceived {
		if err := e.settlePayout(ctx, user, m, res); err != nil {
			return nil, err
		}
		user, err = e.store.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		m = user.JoinedGroups[groupID]
	}

	if m.ContributionsMade < m.MemberCapacity {
		if err := e.sched.ScheduleDeduction(ctx, &scheduler.DeductionTick{
			UserID:  userID,
			GroupID: groupID,
			DueAt:   m.NextDeductionDue,
		}); err != nil {
			e.logger.Error("failed to schedule next deduction",
				slog.String("user_id", userID), slog.String("group_id", groupID), slog.String("error", err.Error()))
		}
	} else {
		res.Completed = true
	}
	return res, nil
}

// settlePayout credits the member's payout exactly once, netting any
// loans that were taken against it. Only a loan whose total fits in the
// remaining gross is netted; a partially coverable loan stays active
// and due on its own schedule.
func (e *Engine) settlePayout(ctx context.Context, user *models.User, m models.JoinedGroup, res *EvaluationResult) error {
	gross := m.TotalPayoutAmount
	remaining := gross
	var repaid []models.Loan
	for _, l := range user.Loans {
		if l.Status != models.LoanActive || l.LinkedGroupID != m.GroupID {
			continue
		}
		if l.TotalRepayable <= remaining {
			remaining -= l.TotalRepayable
			l.Status = models.LoanRepaid
			repaid = append(repaid, l)
		}
	}
	net := remaining
	deduction := gross - net

	paid := m
	paid.PayoutReceived = true

	ts := e.clock.Now()
	updated, err := e.store.ApplyWalletDelta(ctx, user.ID, net, &storage.HoldingsUpdate{
		Membership:          &paid,
		Loans:               repaid,
		ExpectPayoutPending: true,
	})
	if errors.Is(err, storage.ErrStale) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to credit payout: %w", err)
	}

	for _, l := range repaid {
		ev := models.NewEvent(updated, &models.LoanRepaymentMeta{
			LoanID: l.ID,
			Amount: l.TotalRepayable,
			Method: "rosca_deduction",
		}, ts)
		if err := e.store.AppendEvent(ctx, ev); err != nil {
			return fmt.Errorf("failed to record loan netting: %w", err)
		}
	}
	ev := models.NewEvent(updated, &models.RoscaPayoutMeta{
		GroupID:       m.GroupID,
		GroupName:     m.GroupName,
		GrossAmount:   gross,
		LoanDeduction: deduction,
		NetAmount:     net,
		Position:      m.PayoutPosition,
	}, ts)
	if err := e.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("failed to record payout: %w", err)
	}

	res.PayoutApplied = true
	res.GrossPayout = gross
	res.LoanDeduction = deduction
	res.NetPayout = net

	e.logger.Info("payout settled",
		slog.String("user_id", user.ID),
		slog.String("group_id", m.GroupID),
		slog.Int64("gross", gross),
		slog.Int64("net", net),
	)
	return nil
}

// AdvanceQuote is the borrowing headroom against a pending payout.
type AdvanceQuote struct {
	GroupID      string `json:"group_id"`
	GroupName    string `json:"group_name"`
	TotalPayout  int64  `json:"total_payout"`
	MaxPrincipal int64  `json:"max_principal"`
}

// QuoteAdvance returns how much the member can borrow against their
// pending payout: 80% of the gross payout.
func (e *Engine) QuoteAdvance(ctx context.Context, userID, groupID string) (*AdvanceQuote, error) {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	m, ok := user.JoinedGroups[groupID]
	if !ok {
		return nil, ErrNotAMember
	}
	if !m.PayoutPending() {
		return nil, ErrPayoutReceived
	}
	return &AdvanceQuote{
		GroupID:      m.GroupID,
		GroupName:    m.GroupName,
		TotalPayout:  m.TotalPayoutAmount,
		MaxPrincipal: m.TotalPayoutAmount * 8 / 10,
	}, nil
}

// LoanAgainstPayout issues a loan secured by the member's pending
// payout. The principal is capped at 80% of the gross payout; the loan
// is linked to the group and netted when the payout settles.
func (e *Engine) LoanAgainstPayout(ctx context.Context, userID, groupID string, principal int64) (*models.Loan, error) {
	quote, err := e.QuoteAdvance(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if principal <= 0 || principal > quote.MaxPrincipal {
		return nil, fmt.Errorf("advance of %d against payout of %d: %w", principal, quote.TotalPayout, fincalc.ErrInvalidAmount)
	}
	return e.issuer.Issue(ctx, userID, principal, "ROSCA Advance - "+quote.GroupName, groupID)
}
