package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/usecase"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/service"
)

func TestGetDashboardStats_Execute(t *testing.T) {
	risky := highRiskClient(t)
	steady := lowRiskClient(t)
	behind := persistedLoan(t, risky.ID(), 70)
	settled, _, err := persistedLoan(t, steady.ID(), 40).MarkAllPaid(time.Now().UTC())
	require.NoError(t, err)

	uc := usecase.NewGetDashboardStatsUseCase(&mockSnapshotReader{snapshot: port.Snapshot{
		Clients: []model.Client{risky, steady},
		Loans:   []model.Loan{behind, settled.Committed()},
	}}, service.NewPortfolioAggregator())

	resp, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalClients)
	assert.Equal(t, map[string]int{"Low": 1, "Medium": 0, "High": 1}, resp.RiskDistribution)
	assert.Equal(t, 2, resp.TotalLoans)
	assert.Equal(t, map[string]int{"Active": 1, "Completed": 1, "Defaulted": 0}, resp.StatusDistribution)
	assert.Equal(t, map[string]int{"Business": 2, "Personal": 0, "Agriculture": 0, "Education": 0}, resp.TypeDistribution)
	assert.Equal(t, "240000.00", resp.TotalDisbursed.StringFixed(2))
	assert.True(t, resp.TotalExpected.Equal(behind.TotalScheduled().Add(settled.TotalScheduled())))
	assert.True(t, resp.TotalCollected.Equal(settled.TotalPaid()))
	assert.True(t, resp.Outstanding.Equal(behind.Outstanding()))
	assert.Equal(t, 2, resp.OverdueInstallments)
	assert.WithinDuration(t, time.Now(), resp.AsOf, time.Minute)
	assert.Equal(t, resp.AsOf.Year(), resp.CurrentYear.Year)
	assert.Equal(t, resp.AsOf.Year()-1, resp.PreviousYear.Year)
}
