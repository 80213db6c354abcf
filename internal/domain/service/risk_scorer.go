package service

import (
	"github.com/shopspring/decimal"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/money"
)

// ScoringFactor represents a single factor in the scoring model. Points are
// on a 0-100 scale where higher means riskier.
type ScoringFactor struct {
	Name   string
	Weight decimal.Decimal
	Points int
}

// RiskScoreResult is a score with the factors that produced it.
type RiskScoreResult struct {
	Score   decimal.Decimal
	Tier    valueobject.RiskTier
	Factors []ScoringFactor
}

// RiskScorer is a domain service that turns a borrower profile into a risk
// score in [0, 100] and a tier.
//
// Scoring model weights:
//   - Income adequacy: 25%
//   - Employment status: 20%
//   - Existing loan burden: 20%
//   - Credit history: 25%
//   - Loan-to-income: 10% (neutral 40 points when no amount is requested)
//
// Tiers: score <= 30 Low, score <= 60 Medium, otherwise High.
type RiskScorer struct {
	LowCeiling    decimal.Decimal
	MediumCeiling decimal.Decimal
}

// NewRiskScorer creates a scorer with the standard tier ceilings.
func NewRiskScorer() *RiskScorer {
	return &RiskScorer{
		LowCeiling:    decimal.NewFromInt(30),
		MediumCeiling: decimal.NewFromInt(60),
	}
}

var (
	weightIncome        = decimal.NewFromFloat(0.25)
	weightEmployment    = decimal.NewFromFloat(0.20)
	weightExistingLoans = decimal.NewFromFloat(0.20)
	weightCreditHistory = decimal.NewFromFloat(0.25)
	weightLoanToIncome  = decimal.NewFromFloat(0.10)
)

// Assess implements model.RiskAssessor for onboarding writes.
func (s *RiskScorer) Assess(p model.BorrowerProfile) model.RiskAssessment {
	r := s.Score(p, decimal.Zero)
	return model.RiskAssessment{Score: r.Score, Tier: r.Tier}
}

// Score computes the weighted score. A positive principal activates the
// loan-to-income factor.
func (s *RiskScorer) Score(p model.BorrowerProfile, principal decimal.Decimal) RiskScoreResult {
	factors := []ScoringFactor{
		{Name: "income_adequacy", Weight: weightIncome, Points: incomePoints(p.MonthlyIncome)},
		{Name: "employment_status", Weight: weightEmployment, Points: employmentPoints(p.Employment)},
		{Name: "existing_loans", Weight: weightExistingLoans, Points: existingLoanPoints(p.ExistingLoans)},
		{Name: "credit_history", Weight: weightCreditHistory, Points: creditHistoryPoints(p.CreditHistory)},
		{Name: "loan_to_income", Weight: weightLoanToIncome, Points: loanToIncomePoints(principal, p.MonthlyIncome)},
	}

	total := decimal.Zero
	for _, f := range factors {
		total = total.Add(f.Weight.Mul(decimal.NewFromInt(int64(f.Points))))
	}
	score := money.Round(total)

	return RiskScoreResult{Score: score, Tier: s.TierFor(score), Factors: factors}
}

// TierFor maps a score to its tier; boundaries belong to the lower tier.
func (s *RiskScorer) TierFor(score decimal.Decimal) valueobject.RiskTier {
	switch {
	case score.LessThanOrEqual(s.LowCeiling):
		return valueobject.RiskTierLow
	case score.LessThanOrEqual(s.MediumCeiling):
		return valueobject.RiskTierMedium
	default:
		return valueobject.RiskTierHigh
	}
}

func incomePoints(income decimal.Decimal) int {
	switch {
	case income.GreaterThanOrEqual(decimal.NewFromInt(50_000)):
		return 10
	case income.GreaterThanOrEqual(decimal.NewFromInt(30_000)):
		return 30
	case income.GreaterThanOrEqual(decimal.NewFromInt(20_000)):
		return 50
	case income.GreaterThanOrEqual(decimal.NewFromInt(10_000)):
		return 70
	default:
		return 90
	}
}

func employmentPoints(e valueobject.EmploymentStatus) int {
	switch e {
	case valueobject.EmploymentEmployed:
		return 20
	case valueobject.EmploymentSelfEmployed:
		return 40
	default:
		return 80
	}
}

func existingLoanPoints(n int) int {
	switch {
	case n <= 0:
		return 10
	case n == 1:
		return 30
	case n == 2:
		return 60
	default:
		return 90
	}
}

func creditHistoryPoints(c valueobject.CreditHistory) int {
	switch c {
	case valueobject.CreditHistoryGood:
		return 15
	case valueobject.CreditHistoryAverage:
		return 50
	default:
		return 85
	}
}

// loanToIncomePoints grades principal in months of income.
func loanToIncomePoints(principal, monthlyIncome decimal.Decimal) int {
	if !principal.IsPositive() || !monthlyIncome.IsPositive() {
		return 40
	}
	months := principal.Div(monthlyIncome)
	switch {
	case months.LessThanOrEqual(decimal.NewFromInt(5)):
		return 20
	case months.LessThanOrEqual(decimal.NewFromInt(10)):
		return 40
	case months.LessThanOrEqual(decimal.NewFromInt(20)):
		return 60
	default:
		return 90
	}
}
