package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/money"
)

// ClientStats counts borrowers by risk tier.
type ClientStats struct {
	Total  int
	Low    int
	Medium int
	High   int
}

// LoanStats counts loans by status and type.
type LoanStats struct {
	Total     int
	Active    int
	Completed int
	Defaulted int
	ByType    map[valueobject.LoanType]int
}

// FinancialStats are the all-time money totals.
type FinancialStats struct {
	TotalDisbursed decimal.Decimal
	TotalExpected  decimal.Decimal
	TotalCollected decimal.Decimal
	Outstanding    decimal.Decimal
	CollectionRate decimal.Decimal
}

// YearStats restricts the money totals to the loans started in one calendar
// year: their principal, their installments due within that year and their
// installments paid within it. Loans started in earlier years contribute
// nothing, even when their installments fall due or are paid in the year.
type YearStats struct {
	Year           int
	Disbursed      decimal.Decimal
	Expected       decimal.Decimal
	Collected      decimal.Decimal
	CollectionRate decimal.Decimal
}

// YearOverYear compares the current calendar year with the previous one.
// Growth figures are nil when the previous year has nothing to compare to.
type YearOverYear struct {
	Current         YearStats
	Previous        YearStats
	DisbursedGrowth *decimal.Decimal
	CollectedGrowth *decimal.Decimal
}

// PortfolioStats is a point-in-time rollup of the whole book.
type PortfolioStats struct {
	Clients             ClientStats
	Loans               LoanStats
	Financial           FinancialStats
	Yearly              YearOverYear
	OverdueInstallments int
	AsOf                time.Time
}

// PortfolioAggregator rolls clients and loans up into dashboard statistics.
// It holds no state; callers pass a consistent snapshot.
type PortfolioAggregator struct{}

// NewPortfolioAggregator returns a new aggregator.
func NewPortfolioAggregator() *PortfolioAggregator {
	return &PortfolioAggregator{}
}

// Aggregate computes the rollup at asOf.
func (a *PortfolioAggregator) Aggregate(clients []model.Client, loans []model.Loan, asOf time.Time) PortfolioStats {
	stats := PortfolioStats{
		Loans: LoanStats{ByType: make(map[valueobject.LoanType]int, len(valueobject.AllLoanTypes))},
		AsOf:  asOf,
	}
	for _, t := range valueobject.AllLoanTypes {
		stats.Loans.ByType[t] = 0
	}

	stats.Clients.Total = len(clients)
	for _, c := range clients {
		switch c.RiskTier() {
		case valueobject.RiskTierLow:
			stats.Clients.Low++
		case valueobject.RiskTierMedium:
			stats.Clients.Medium++
		case valueobject.RiskTierHigh:
			stats.Clients.High++
		}
	}

	year := asOf.UTC().Year()
	current := YearStats{Year: year}
	previous := YearStats{Year: year - 1}
	fin := FinancialStats{}

	stats.Loans.Total = len(loans)
	for _, l := range loans {
		switch l.Status() {
		case valueobject.LoanStatusActive:
			stats.Loans.Active++
		case valueobject.LoanStatusCompleted:
			stats.Loans.Completed++
		case valueobject.LoanStatusDefaulted:
			stats.Loans.Defaulted++
		}
		stats.Loans.ByType[l.Type()]++

		fin.TotalDisbursed = fin.TotalDisbursed.Add(l.Principal())
		cohort := cohortOf(&current, &previous, l.StartDate())
		if cohort != nil {
			cohort.Disbursed = cohort.Disbursed.Add(l.Principal())
		}

		for _, inst := range l.Installments() {
			fin.TotalExpected = fin.TotalExpected.Add(inst.Amount())
			if cohort != nil && inst.DueDate().UTC().Year() == cohort.Year {
				cohort.Expected = cohort.Expected.Add(inst.Amount())
			}
			if inst.Paid() {
				fin.TotalCollected = fin.TotalCollected.Add(inst.Amount())
				if cohort != nil && inst.PaidDate() != nil && inst.PaidDate().UTC().Year() == cohort.Year {
					cohort.Collected = cohort.Collected.Add(inst.Amount())
				}
			}
			if inst.IsOverdue(asOf) {
				stats.OverdueInstallments++
			}
		}
	}

	fin.Outstanding = fin.TotalExpected.Sub(fin.TotalCollected)
	fin.CollectionRate = money.Percent(fin.TotalCollected, fin.TotalExpected)
	current.CollectionRate = money.Percent(current.Collected, current.Expected)
	previous.CollectionRate = money.Percent(previous.Collected, previous.Expected)

	stats.Financial = fin
	stats.Yearly = YearOverYear{
		Current:         current,
		Previous:        previous,
		DisbursedGrowth: growth(current.Disbursed, previous.Disbursed),
		CollectedGrowth: growth(current.Collected, previous.Collected),
	}
	return stats
}

// cohortOf returns the year bucket a loan started at belongs to, or nil for
// loans started outside both years.
func cohortOf(current, previous *YearStats, start time.Time) *YearStats {
	switch start.UTC().Year() {
	case current.Year:
		return current
	case previous.Year:
		return previous
	default:
		return nil
	}
}

func growth(current, previous decimal.Decimal) *decimal.Decimal {
	if previous.IsZero() {
		return nil
	}
	g := money.Percent(current.Sub(previous), previous)
	return &g
}
