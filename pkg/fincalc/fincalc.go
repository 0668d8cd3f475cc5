// Package fincalc holds the pure financial calculators. Every function
// is deterministic given its inputs and performs no I/O.
package fincalc

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for principals or contribution amounts
// outside their allowed range.
var ErrInvalidAmount = errors.New("amount out of range")

// Loan terms are fixed for the whole platform.
const (
	MinLoanPrincipal    int64 = 5000
	MaxLoanPrincipal    int64 = 500000
	LoanInterestPercent int   = 5
)

// PeriodMonth is the simulated month used for maturity dates.
const PeriodMonth = 30 * 24 * time.Hour

var loanRate = decimal.New(5, -2) // 0.05

// LoanQuote is the cost breakdown of a loan: the borrower receives
// Principal and owes Total.
type LoanQuote struct {
	Principal int64
	Interest  int64
	Total     int64
}

// QuoteLoan prices a loan at the fixed 5% rate. Principals outside
// [MinLoanPrincipal, MaxLoanPrincipal] return ErrInvalidAmount.
func QuoteLoan(principal int64) (*LoanQuote, error) {
	if principal < MinLoanPrincipal || principal > MaxLoanPrincipal {
		return nil, ErrInvalidAmount
	}
	interest := decimal.NewFromInt(principal).Mul(loanRate).Round(0).IntPart()
	return &LoanQuote{
		Principal: principal,
		Interest:  interest,
		Total:     principal + interest,
	}, nil
}

// durationMonths maps the fixed-savings duration labels to months.
// Unknown labels fall back to 12.
var durationMonths = map[string]int{
	"3 months":  3,
	"6 months":  6,
	"9 months":  9,
	"12 months": 12,
}

// SavingsQuote is the maturity value of a fixed-savings or investment
// position.
type SavingsQuote struct {
	Principal int64
	Returns   int64
	Total     int64
	Months    int
}

// MaturesAt returns the maturity date for a position opened at the
// given time.
func (q *SavingsQuote) MaturesAt(openedAt time.Time) time.Time {
	return openedAt.Add(time.Duration(q.Months) * PeriodMonth)
}

// FixedSavingsReturn computes simple interest prorated over the locked
// duration: principal * (rate/100) * (months/12).
func FixedSavingsReturn(principal int64, ratePercent int, durationLabel string) *SavingsQuote {
	months, ok := durationMonths[durationLabel]
	if !ok {
		months = 12
	}
	returns := decimal.NewFromInt(principal).
		Mul(decimal.New(int64(ratePercent), -2)).
		Mul(decimal.New(int64(months), 0)).
		Div(decimal.New(12, 0)).
		Round(0).IntPart()
	return &SavingsQuote{
		Principal: principal,
		Returns:   returns,
		Total:     principal + returns,
		Months:    months,
	}
}

// InvestmentReturn computes the flat return of an investment product.
// returnPercent is the catalog notation, e.g. "18%".
func InvestmentReturn(principal int64, returnPercent string, durationMonths int) (*SavingsQuote, error) {
	raw := strings.TrimSuffix(strings.TrimSpace(returnPercent), "%")
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		return nil, ErrInvalidAmount
	}
	returns := decimal.NewFromInt(principal).
		Mul(rate.Div(decimal.New(100, 0))).
		Round(0).IntPart()
	return &SavingsQuote{
		Principal: principal,
		Returns:   returns,
		Total:     principal + returns,
		Months:    durationMonths,
	}, nil
}

// TargetPlanWeeks returns the number of weekly contributions needed to
// reach the target: ceil(target/weekly). A non-positive weekly amount
// returns ErrInvalidAmount.
func TargetPlanWeeks(targetAmount, weeklyAmount int64) (int, error) {
	if weeklyAmount <= 0 || targetAmount <= 0 {
		return 0, ErrInvalidAmount
	}
	weeks := targetAmount / weeklyAmount
	if targetAmount%weeklyAmount != 0 {
		weeks++
	}
	return int(weeks), nil
}
