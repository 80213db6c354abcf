package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/money"
)

// ClientRiskProfile is the advisor's view of a borrower.
type ClientRiskProfile struct {
	Score         decimal.Decimal
	Tier          valueobject.RiskTier
	MonthlyIncome decimal.Decimal
	ExistingLoans int
}

// LoanSuggestion is the advisor's recommendation for a requested amount.
// Ratios are nil when the client has no monthly income.
type LoanSuggestion struct {
	RiskScore              decimal.Decimal
	RiskTier               valueobject.RiskTier
	RequestedAmount        decimal.Decimal
	RecommendedRate        decimal.Decimal
	RecommendedTenure      int
	RecommendedInstallment decimal.Decimal
	DebtServiceRatio       *decimal.Decimal
	LoanToIncome           *decimal.Decimal
	StressRate             decimal.Decimal
	StressInstallment      decimal.Decimal
	MaxExposure            decimal.Decimal
	TenureShortfall        bool
	Insights               []string
	Approval               valueobject.ApprovalRecommendation
}

// TierPolicy holds the per-tier pricing and exposure limits.
type TierPolicy struct {
	BaseRate         decimal.Decimal
	MaxTenure        int
	ExposureMultiple decimal.Decimal
}

// LoanAdvisor recommends terms for a requested principal. It is a pure
// function of its inputs.
type LoanAdvisor struct {
	Tiers map[valueobject.RiskTier]TierPolicy

	LargeLoanThreshold decimal.Decimal
	LargeLoanPremium   decimal.Decimal
	SmallLoanThreshold decimal.Decimal
	SmallLoanDiscount  decimal.Decimal
	MidLoanThreshold   decimal.Decimal

	// DSRThreshold is the highest acceptable installment share of monthly
	// income, in percent.
	DSRThreshold decimal.Decimal
	// HighRiskLoanLimit is the most existing loans a High tier borrower may
	// carry without review.
	HighRiskLoanLimit int
	StressOffset      decimal.Decimal
	TenureStep        int
	LTIWarning        decimal.Decimal
	MultiLoanWarning  int
}

// NewLoanAdvisor creates an advisor with the standard policy.
func NewLoanAdvisor() *LoanAdvisor {
	return &LoanAdvisor{
		Tiers: map[valueobject.RiskTier]TierPolicy{
			valueobject.RiskTierLow:    {BaseRate: decimal.NewFromInt(12), MaxTenure: 36, ExposureMultiple: decimal.NewFromInt(15)},
			valueobject.RiskTierMedium: {BaseRate: decimal.NewFromInt(18), MaxTenure: 24, ExposureMultiple: decimal.NewFromInt(10)},
			valueobject.RiskTierHigh:   {BaseRate: decimal.NewFromInt(24), MaxTenure: 12, ExposureMultiple: decimal.NewFromInt(5)},
		},
		LargeLoanThreshold: decimal.NewFromInt(500_000),
		LargeLoanPremium:   decimal.NewFromInt(2),
		SmallLoanThreshold: decimal.NewFromInt(50_000),
		SmallLoanDiscount:  decimal.NewFromInt(1),
		MidLoanThreshold:   decimal.NewFromInt(200_000),
		DSRThreshold:       decimal.NewFromInt(35),
		HighRiskLoanLimit:  1,
		StressOffset:       decimal.NewFromInt(3),
		TenureStep:         6,
		LTIWarning:         decimal.NewFromInt(1),
		MultiLoanWarning:   2,
	}
}

var twelve = decimal.NewFromInt(12)

// Suggest recommends rate, tenure and installment for principal.
func (a *LoanAdvisor) Suggest(p ClientRiskProfile, principal decimal.Decimal) (LoanSuggestion, error) {
	if !principal.IsPositive() {
		return LoanSuggestion{}, valueobject.Invalid("loan amount must be positive")
	}
	policy, ok := a.Tiers[p.Tier]
	if !ok {
		return LoanSuggestion{}, valueobject.Invalid("unknown risk tier %q", p.Tier)
	}

	s := LoanSuggestion{
		RiskScore:       p.Score,
		RiskTier:        p.Tier,
		RequestedAmount: principal,
		RecommendedRate: a.rateFor(policy, principal),
		MaxExposure:     money.Round(p.MonthlyIncome.Mul(policy.ExposureMultiple)),
	}

	// 1. Shortest tenure on the ladder that keeps DSR within threshold.
	ladder := a.tenureLadder(policy, principal)
	s.TenureShortfall = true
	for _, n := range ladder {
		inst := model.MonthlyInstallment(principal, s.RecommendedRate, n)
		s.RecommendedTenure, s.RecommendedInstallment = n, inst
		if dsr, ok := money.Ratio(inst.Mul(decimal.NewFromInt(100)), p.MonthlyIncome); ok && dsr.LessThanOrEqual(a.DSRThreshold) {
			s.TenureShortfall = false
			break
		}
	}

	// 2. Ratios.
	if dsr, ok := money.Ratio(s.RecommendedInstallment.Mul(decimal.NewFromInt(100)), p.MonthlyIncome); ok {
		s.DebtServiceRatio = &dsr
	}
	if lti, ok := money.Ratio(principal, p.MonthlyIncome.Mul(twelve)); ok {
		s.LoanToIncome = &lti
	}

	// 3. Stress test at a fixed rate offset.
	s.StressRate = s.RecommendedRate.Add(a.StressOffset)
	s.StressInstallment = model.MonthlyInstallment(principal, s.StressRate, s.RecommendedTenure)

	// 4. Approval and insights.
	dsrBreached := s.DebtServiceRatio == nil || s.DebtServiceRatio.GreaterThan(a.DSRThreshold)
	overExposed := principal.GreaterThan(s.MaxExposure)
	overLeveraged := p.Tier == valueobject.RiskTierHigh && p.ExistingLoans > a.HighRiskLoanLimit

	s.Approval = valueobject.ApprovalApprove
	if dsrBreached || overExposed || overLeveraged {
		s.Approval = valueobject.ApprovalReview
	}
	s.Insights = a.insights(p, s, policy, overExposed, overLeveraged)

	return s, nil
}

func (a *LoanAdvisor) rateFor(policy TierPolicy, principal decimal.Decimal) decimal.Decimal {
	rate := policy.BaseRate
	switch {
	case principal.GreaterThan(a.LargeLoanThreshold):
		rate = rate.Add(a.LargeLoanPremium)
	case principal.LessThan(a.SmallLoanThreshold):
		rate = rate.Sub(a.SmallLoanDiscount)
	}
	return rate
}

// tenureLadder starts at a size-based preferred tenure and steps up to the
// tier maximum, always ending on the maximum.
func (a *LoanAdvisor) tenureLadder(policy TierPolicy, principal decimal.Decimal) []int {
	start := policy.MaxTenure
	switch {
	case principal.LessThanOrEqual(a.SmallLoanThreshold):
		start = 12
	case principal.LessThanOrEqual(a.MidLoanThreshold):
		start = 18
	}
	start = min(start, policy.MaxTenure)

	var ladder []int
	for n := start; n < policy.MaxTenure; n += a.TenureStep {
		ladder = append(ladder, n)
	}
	return append(ladder, policy.MaxTenure)
}

func (a *LoanAdvisor) insights(p ClientRiskProfile, s LoanSuggestion, policy TierPolicy, overExposed, overLeveraged bool) []string {
	var out []string

	if !p.MonthlyIncome.IsPositive() {
		out = append(out, "No monthly income on record. Repayment capacity cannot be assessed.")
	} else {
		if s.TenureShortfall {
			out = append(out, fmt.Sprintf(
				"No tenure up to %d months keeps installments within %s%% of monthly income. Showing the longest allowed tenure.",
				policy.MaxTenure, a.DSRThreshold))
		}
		if s.DebtServiceRatio.GreaterThan(a.DSRThreshold) {
			out = append(out, fmt.Sprintf(
				"Installments exceed %s%% of monthly income. Consider lowering the loan amount.", a.DSRThreshold))
		}
	}
	if overExposed {
		out = append(out, fmt.Sprintf(
			"Requested amount exceeds the suggested maximum exposure of %s.", s.MaxExposure.StringFixed(2)))
	}
	if s.LoanToIncome != nil && s.LoanToIncome.GreaterThan(a.LTIWarning) {
		out = append(out, "Loan-to-income ratio is above one year of income.")
	}
	if p.ExistingLoans >= a.MultiLoanWarning {
		out = append(out, "Client already services multiple loans. Verify repayment discipline.")
	}
	if overLeveraged {
		out = append(out, fmt.Sprintf(
			"High risk borrower with more than %d existing loans requires manual review.", a.HighRiskLoanLimit))
	}
	if len(out) == 0 {
		out = append(out, "Risk level is under control. Proceed with standard monitoring cadence.")
	}
	return out
}
