package fincalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestQuoteLoan(t *testing.T) {
	t.Run("Standard Principal", func(t *testing.T) {
		quote, err := QuoteLoan(20000)

		assert.NoError(t, err)
		assert.Equal(t, int64(20000), quote.Principal)
		assert.Equal(t, int64(1000), quote.Interest)
		assert.Equal(t, int64(21000), quote.Total)
	})

	t.Run("Boundaries", func(t *testing.T) {
		low, err := QuoteLoan(MinLoanPrincipal)
		assert.NoError(t, err)
		assert.Equal(t, int64(5250), low.Total)

		high, err := QuoteLoan(MaxLoanPrincipal)
		assert.NoError(t, err)
		assert.Equal(t, int64(525000), high.Total)
	})

	t.Run("Out Of Range", func(t *testing.T) {
		for _, p := range []int64{0, -1, 4999, 500001} {
			_, err := QuoteLoan(p)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		}
	})
}

func TestQuoteLoanProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		principal := rapid.Int64Range(MinLoanPrincipal, MaxLoanPrincipal).Draw(t, "principal")

		quote, err := QuoteLoan(principal)
		if err != nil {
			t.Fatalf("valid principal %d rejected: %v", principal, err)
		}
		if quote.Total != quote.Principal+quote.Interest {
			t.Fatalf("total %d != principal %d + interest %d", quote.Total, quote.Principal, quote.Interest)
		}
		// 5% of an int64 principal, rounded to the nearest unit.
		want := (principal*5 + 50) / 100
		if quote.Interest != want {
			t.Fatalf("interest for %d: got %d want %d", principal, quote.Interest, want)
		}
	})
}

func TestFixedSavingsReturn(t *testing.T) {
	t.Run("Prorated Over Duration", func(t *testing.T) {
		// 50000 at 12% over 6 months: half a year of interest.
		quote := FixedSavingsReturn(50000, 12, "6 months")

		assert.Equal(t, int64(3000), quote.Returns)
		assert.Equal(t, int64(53000), quote.Total)
		assert.Equal(t, 6, quote.Months)
	})

	t.Run("Unknown Label Defaults To A Year", func(t *testing.T) {
		quote := FixedSavingsReturn(10000, 10, "forever")

		assert.Equal(t, 12, quote.Months)
		assert.Equal(t, int64(1000), quote.Returns)
	})

	t.Run("Maturity Date", func(t *testing.T) {
		opened := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		quote := FixedSavingsReturn(10000, 8, "3 months")

		assert.Equal(t, opened.Add(3*PeriodMonth), quote.MaturesAt(opened))
	})
}

func TestInvestmentReturn(t *testing.T) {
	t.Run("Catalog Notation", func(t *testing.T) {
		quote, err := InvestmentReturn(50000, "18%", 6)

		assert.NoError(t, err)
		assert.Equal(t, int64(9000), quote.Returns)
		assert.Equal(t, int64(59000), quote.Total)
	})

	t.Run("Invalid Percent", func(t *testing.T) {
		_, err := InvestmentReturn(50000, "lots", 6)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = InvestmentReturn(50000, "-5%", 6)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestTargetPlanWeeks(t *testing.T) {
	t.Run("Exact Division", func(t *testing.T) {
		weeks, err := TargetPlanWeeks(30000, 5000)

		assert.NoError(t, err)
		assert.Equal(t, 6, weeks)
	})

	t.Run("Rounds Up", func(t *testing.T) {
		weeks, err := TargetPlanWeeks(31000, 5000)

		assert.NoError(t, err)
		assert.Equal(t, 7, weeks)
	})

	t.Run("Invalid Inputs", func(t *testing.T) {
		_, err := TargetPlanWeeks(30000, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = TargetPlanWeeks(0, 5000)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("Property Covers Target", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			target := rapid.Int64Range(1, 1000000).Draw(t, "target")
			weekly := rapid.Int64Range(1, 1000000).Draw(t, "weekly")

			weeks, err := TargetPlanWeeks(target, weekly)
			if err != nil {
				t.Fatalf("valid plan rejected: %v", err)
			}
			if int64(weeks)*weekly < target {
				t.Fatalf("%d weeks of %d does not reach %d", weeks, weekly, target)
			}
			if int64(weeks-1)*weekly >= target {
				t.Fatalf("plan of %d weeks is one longer than needed", weeks)
			}
		})
	})
}
