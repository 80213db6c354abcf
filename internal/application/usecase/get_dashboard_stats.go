package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/service"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

// GetDashboardStatsUseCase computes the portfolio rollup. Results are never
// cached.
type GetDashboardStatsUseCase struct {
	snapshots  port.SnapshotReader
	aggregator *service.PortfolioAggregator
}

// NewGetDashboardStatsUseCase wires dependencies.
func NewGetDashboardStatsUseCase(snapshots port.SnapshotReader, aggregator *service.PortfolioAggregator) *GetDashboardStatsUseCase {
	return &GetDashboardStatsUseCase{snapshots: snapshots, aggregator: aggregator}
}

// Execute aggregates one consistent snapshot at the current instant.
func (uc *GetDashboardStatsUseCase) Execute(ctx context.Context) (dto.DashboardStatsResponse, error) {
	snap, err := uc.snapshots.Snapshot(ctx)
	if err != nil {
		return dto.DashboardStatsResponse{}, fmt.Errorf("read snapshot: %w", err)
	}

	s := uc.aggregator.Aggregate(snap.Clients, snap.Loans, time.Now().UTC())

	byType := make(map[string]int, len(s.Loans.ByType))
	for t, n := range s.Loans.ByType {
		byType[string(t)] = n
	}

	return dto.DashboardStatsResponse{
		TotalClients: s.Clients.Total,
		RiskDistribution: map[string]int{
			valueobject.RiskTierLow.String():    s.Clients.Low,
			valueobject.RiskTierMedium.String(): s.Clients.Medium,
			valueobject.RiskTierHigh.String():   s.Clients.High,
		},
		TotalLoans: s.Loans.Total,
		StatusDistribution: map[string]int{
			valueobject.LoanStatusActive.String():    s.Loans.Active,
			valueobject.LoanStatusCompleted.String(): s.Loans.Completed,
			valueobject.LoanStatusDefaulted.String(): s.Loans.Defaulted,
		},
		TypeDistribution:    byType,
		TotalDisbursed:      s.Financial.TotalDisbursed,
		TotalExpected:       s.Financial.TotalExpected,
		TotalCollected:      s.Financial.TotalCollected,
		Outstanding:         s.Financial.Outstanding,
		CollectionRate:      s.Financial.CollectionRate,
		CurrentYear:         toYearStatsResponse(s.Yearly.Current),
		PreviousYear:        toYearStatsResponse(s.Yearly.Previous),
		DisbursedGrowth:     s.Yearly.DisbursedGrowth,
		CollectedGrowth:     s.Yearly.CollectedGrowth,
		OverdueInstallments: s.OverdueInstallments,
		AsOf:                s.AsOf,
	}, nil
}
