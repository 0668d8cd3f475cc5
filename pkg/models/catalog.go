package models

// TokenGrantAmount is the one-time research token credited to each
// participant's wallet on claim.
const TokenGrantAmount int64 = 100000

// FixedSavingsPlan is a catalog entry for fixed savings.
type FixedSavingsPlan struct {
	DurationLabel string `json:"duration_label"`
	RatePercent   int    `json:"rate_percent"`
	MinAmount     int64  `json:"min_amount"`
}

// FixedSavingsPlans is the fixed-savings product catalog.
var FixedSavingsPlans = []FixedSavingsPlan{
	{DurationLabel: "3 months", RatePercent: 8, MinAmount: 10000},
	{DurationLabel: "6 months", RatePercent: 12, MinAmount: 25000},
	{DurationLabel: "9 months", RatePercent: 15, MinAmount: 50000},
	{DurationLabel: "12 months", RatePercent: 18, MinAmount: 50000},
}

// FixedSavingsPlanFor looks up a plan by its duration label.
func FixedSavingsPlanFor(label string) (FixedSavingsPlan, bool) {
	for _, p := range FixedSavingsPlans {
		if p.DurationLabel == label {
			return p, true
		}
	}
	return FixedSavingsPlan{}, false
}

// InvestmentProduct is a catalog entry for investments.
type InvestmentProduct struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	ReturnPercent  string `json:"return_percent"`
	DurationMonths int    `json:"duration_months"`
	MinInvest      int64  `json:"min_invest"`
	Risk           string `json:"risk"`
}

// InvestmentProducts is the investment catalog.
var InvestmentProducts = []InvestmentProduct{
	{ID: "sf1", Name: "SupreFarm - Rice Production", Type: "Agriculture", ReturnPercent: "18%", DurationMonths: 6, MinInvest: 50000, Risk: "Low"},
	{ID: "sf2", Name: "SupreFarm - Maize Cultivation", Type: "Agriculture", ReturnPercent: "15%", DurationMonths: 4, MinInvest: 30000, Risk: "Low"},
	{ID: "sf3", Name: "SupreFarm - Poultry", Type: "Agriculture", ReturnPercent: "20%", DurationMonths: 3, MinInvest: 40000, Risk: "Low"},
	{ID: "ab1", Name: "Airbnb Co-hosting", Type: "Real Estate", ReturnPercent: "25%", DurationMonths: 12, MinInvest: 100000, Risk: "Medium"},
	{ID: "tb1", Name: "Treasury Bills", Type: "Government", ReturnPercent: "12%", DurationMonths: 3, MinInvest: 10000, Risk: "Very Low"},
	{ID: "tech1", Name: "Tech Startup Fund", Type: "Equity", ReturnPercent: "40%", DurationMonths: 12, MinInvest: 150000, Risk: "High"},
}

// InvestmentProductFor looks up an investment product by ID.
func InvestmentProductFor(id string) (InvestmentProduct, bool) {
	for _, p := range InvestmentProducts {
		if p.ID == id {
			return p, true
		}
	}
	return InvestmentProduct{}, false
}

// LoanPurposes are the selectable purposes for a standalone loan.
var LoanPurposes = []string{
	"ROSCA Contribution",
	"Emergency",
	"Business",
	"Education",
	"Medical",
	"Other",
}

// DefaultGroupCatalog seeds the ROSCA catalog for fresh environments.
func DefaultGroupCatalog() []Group {
	return []Group{
		{ID: "wk1", Name: "Weekly Hustlers", ContributionAmount: 5000, Frequency: Weekly, MemberCapacity: 6, CurrentMemberCount: 2, CompletionRateHint: 92},
		{ID: "wk2", Name: "Fast Track Savers", ContributionAmount: 5000, Frequency: Weekly, MemberCapacity: 6, CurrentMemberCount: 3, CompletionRateHint: 95},
		{ID: "wk3", Name: "Quick Returns", ContributionAmount: 5000, Frequency: Weekly, MemberCapacity: 6, CurrentMemberCount: 1, CompletionRateHint: 88},
		{ID: "wk6", Name: "Big Moves Weekly", ContributionAmount: 10000, Frequency: Weekly, MemberCapacity: 6, CurrentMemberCount: 1, CompletionRateHint: 91},
		{ID: "wk10", Name: "Budget Squad", ContributionAmount: 3000, Frequency: Weekly, MemberCapacity: 6, CurrentMemberCount: 2, CompletionRateHint: 96},
		{ID: "mn1", Name: "Monthly 30K Squad", ContributionAmount: 30000, Frequency: Monthly, MemberCapacity: 6, CurrentMemberCount: 2, CompletionRateHint: 90},
		{ID: "mn5", Name: "Monthly 50K Club", ContributionAmount: 50000, Frequency: Monthly, MemberCapacity: 6, CurrentMemberCount: 2, CompletionRateHint: 91},
		{ID: "mn8", Name: "Century Club", ContributionAmount: 100000, Frequency: Monthly, MemberCapacity: 6, CurrentMemberCount: 1, CompletionRateHint: 90},
		{ID: "mn10", Name: "Young Professionals", ContributionAmount: 20000, Frequency: Monthly, MemberCapacity: 6, CurrentMemberCount: 2, CompletionRateHint: 95},
	}
}
