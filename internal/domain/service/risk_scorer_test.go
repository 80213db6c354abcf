package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/service"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

func profile(income int64, emp valueobject.EmploymentStatus, loans int, history valueobject.CreditHistory) model.BorrowerProfile {
	return model.BorrowerProfile{
		MonthlyIncome: decimal.NewFromInt(income),
		Employment:    emp,
		ExistingLoans: loans,
		CreditHistory: history,
	}
}

func TestRiskScorer_EmployedGoodHistoryIsLowRisk(t *testing.T) {
	scorer := service.NewRiskScorer()

	got := scorer.Assess(profile(30_000, valueobject.EmploymentEmployed, 0, valueobject.CreditHistoryGood))

	assert.Equal(t, "21.25", got.Score.StringFixed(2))
	assert.Equal(t, valueobject.RiskTierLow, got.Tier)
}

func TestRiskScorer_WorstProfileIsHighRisk(t *testing.T) {
	scorer := service.NewRiskScorer()

	got := scorer.Assess(profile(0, valueobject.EmploymentUnemployed, 4, valueobject.CreditHistoryPoor))

	assert.Equal(t, "81.75", got.Score.StringFixed(2))
	assert.Equal(t, valueobject.RiskTierHigh, got.Tier)
}

func TestRiskScorer_BoundaryScores(t *testing.T) {
	scorer := service.NewRiskScorer()
	tests := []struct {
		score string
		want  valueobject.RiskTier
	}{
		{"0", valueobject.RiskTierLow},
		{"30", valueobject.RiskTierLow},
		{"30.01", valueobject.RiskTierMedium},
		{"60", valueobject.RiskTierMedium},
		{"60.01", valueobject.RiskTierHigh},
		{"100", valueobject.RiskTierHigh},
	}
	for _, tt := range tests {
		t.Run(tt.score, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.TierFor(decimal.RequireFromString(tt.score)))
		})
	}
}

func TestRiskScorer_Deterministic(t *testing.T) {
	scorer := service.NewRiskScorer()
	p := profile(22_500, valueobject.EmploymentSelfEmployed, 1, valueobject.CreditHistoryAverage)

	first := scorer.Score(p, decimal.NewFromInt(80_000))
	for i := 0; i < 10; i++ {
		again := scorer.Score(p, decimal.NewFromInt(80_000))
		assert.True(t, first.Score.Equal(again.Score))
		assert.Equal(t, first.Tier, again.Tier)
	}
}

func TestRiskScorer_MonotonicInEveryRiskInput(t *testing.T) {
	scorer := service.NewRiskScorer()
	incomes := []int64{80_000, 50_000, 35_000, 25_000, 15_000, 5_000, 0}
	employments := []valueobject.EmploymentStatus{
		valueobject.EmploymentEmployed, valueobject.EmploymentSelfEmployed, valueobject.EmploymentUnemployed,
	}
	histories := []valueobject.CreditHistory{
		valueobject.CreditHistoryGood, valueobject.CreditHistoryAverage, valueobject.CreditHistoryPoor,
	}
	loans := []int{0, 1, 2, 3, 5}

	assertNotLessRisky := func(t *testing.T, before, after model.RiskAssessment) {
		t.Helper()
		assert.True(t, after.Score.GreaterThanOrEqual(before.Score), "score decreased: %s -> %s", before.Score, after.Score)
		assert.GreaterOrEqual(t, after.Tier.Rank(), before.Tier.Rank())
	}

	for _, emp := range employments {
		for _, hist := range histories {
			for _, n := range loans {
				prev := scorer.Assess(profile(incomes[0], emp, n, hist))
				for _, inc := range incomes[1:] {
					cur := scorer.Assess(profile(inc, emp, n, hist))
					assertNotLessRisky(t, prev, cur)
					prev = cur
				}
			}
		}
	}
	for _, inc := range incomes {
		for _, hist := range histories {
			for _, n := range loans {
				prev := scorer.Assess(profile(inc, employments[0], n, hist))
				for _, emp := range employments[1:] {
					cur := scorer.Assess(profile(inc, emp, n, hist))
					assert.True(t, cur.Score.GreaterThan(prev.Score), "employment must strictly increase risk")
					assertNotLessRisky(t, prev, cur)
					prev = cur
				}
			}
		}
	}
	for _, inc := range incomes {
		for _, emp := range employments {
			for _, hist := range histories {
				prev := scorer.Assess(profile(inc, emp, loans[0], hist))
				for _, n := range loans[1:] {
					cur := scorer.Assess(profile(inc, emp, n, hist))
					assertNotLessRisky(t, prev, cur)
					prev = cur
				}
			}
			for _, n := range loans {
				prev := scorer.Assess(profile(inc, emp, n, histories[0]))
				for _, hist := range histories[1:] {
					cur := scorer.Assess(profile(inc, emp, n, hist))
					assert.True(t, cur.Score.GreaterThan(prev.Score), "credit history must strictly increase risk")
					prev = cur
				}
			}
		}
	}
}

func TestRiskScorer_LoanToIncomeFactor(t *testing.T) {
	scorer := service.NewRiskScorer()
	p := profile(30_000, valueobject.EmploymentEmployed, 0, valueobject.CreditHistoryGood)

	small := scorer.Score(p, decimal.NewFromInt(100_000))
	large := scorer.Score(p, decimal.NewFromInt(900_000))

	assert.Equal(t, "19.25", small.Score.StringFixed(2))
	assert.Equal(t, "26.25", large.Score.StringFixed(2))
	require.Len(t, small.Factors, 5)
	assert.Equal(t, "loan_to_income", small.Factors[4].Name)
	assert.Equal(t, 20, small.Factors[4].Points)
	assert.Equal(t, 90, large.Factors[4].Points)
}
