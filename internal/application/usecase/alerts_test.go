package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/usecase"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/service"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

func TestGetLoanAlerts_Execute(t *testing.T) {
	t.Run("high risk borrower two installments behind", func(t *testing.T) {
		client := highRiskClient(t)
		loan := persistedLoan(t, client.ID(), 70)
		metrics := newMockMetrics()
		uc := usecase.NewGetLoanAlertsUseCase(
			&mockSnapshotReader{snapshot: port.Snapshot{Clients: []model.Client{client}, Loans: []model.Loan{loan}}},
			service.NewDefaultAlertEngine(),
			metrics,
		)

		resp, err := uc.Execute(context.Background(), dto.LoanRequest{LoanID: loan.ID()})

		require.NoError(t, err)
		assert.Equal(t, "High", resp.RiskCategory)
		assert.Equal(t, "Active", resp.LoanStatus)
		assert.Equal(t, "73.33", resp.DefaultProbability.StringFixed(2))
		assert.Equal(t, 2, resp.OverdueInstallments)
		assert.Equal(t, 12, resp.TotalInstallments)
		require.Len(t, resp.Alerts, 2)
		assert.Equal(t, string(model.AlertOverdueInstallments), resp.Alerts[0].Type)
		assert.Equal(t, string(model.AlertHighRiskBorrower), resp.Alerts[1].Type)
		for _, a := range resp.Alerts {
			assert.Equal(t, "High", a.Severity)
			assert.NotEmpty(t, a.Recommendation)
		}
		assert.Equal(t, map[string]int{"High": 2}, metrics.alerts)
	})

	t.Run("healthy loan raises nothing", func(t *testing.T) {
		client := lowRiskClient(t)
		loan := persistedLoan(t, client.ID(), 0)
		metrics := newMockMetrics()
		uc := usecase.NewGetLoanAlertsUseCase(
			&mockSnapshotReader{snapshot: port.Snapshot{Clients: []model.Client{client}, Loans: []model.Loan{loan}}},
			service.NewDefaultAlertEngine(),
			metrics,
		)

		resp, err := uc.Execute(context.Background(), dto.LoanRequest{LoanID: loan.ID()})

		require.NoError(t, err)
		assert.Empty(t, resp.Alerts)
		assert.Equal(t, "10.00", resp.DefaultProbability.StringFixed(2))
		assert.Empty(t, metrics.alerts)
	})

	t.Run("unknown loan", func(t *testing.T) {
		uc := usecase.NewGetLoanAlertsUseCase(&mockSnapshotReader{}, service.NewDefaultAlertEngine(), newMockMetrics())

		_, err := uc.Execute(context.Background(), dto.LoanRequest{LoanID: "missing"})

		require.ErrorIs(t, err, valueobject.ErrNotFound)
	})

	t.Run("snapshot failure", func(t *testing.T) {
		uc := usecase.NewGetLoanAlertsUseCase(&mockSnapshotReader{err: errors.New("tx aborted")},
			service.NewDefaultAlertEngine(), newMockMetrics())

		_, err := uc.Execute(context.Background(), dto.LoanRequest{LoanID: "loan-1"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "tx aborted")
	})
}

func TestListAlerts_Execute(t *testing.T) {
	t.Run("lists only loans with alerts", func(t *testing.T) {
		risky := highRiskClient(t)
		steady := lowRiskClient(t)
		behind := persistedLoan(t, risky.ID(), 70)
		current := persistedLoan(t, steady.ID(), 0)
		settled, _, err := persistedLoan(t, steady.ID(), 130).MarkAllPaid(time.Now().UTC())
		require.NoError(t, err)

		uc := usecase.NewListAlertsUseCase(&mockSnapshotReader{snapshot: port.Snapshot{
			Clients: []model.Client{risky, steady},
			Loans:   []model.Loan{current, behind, settled.Committed()},
		}}, service.NewDefaultAlertEngine())

		resp, err := uc.Execute(context.Background())

		require.NoError(t, err)
		require.Equal(t, 1, resp.Total)
		row := resp.Alerts[0]
		assert.Equal(t, behind.ID(), row.LoanID)
		assert.Equal(t, "Bilal Ahmed", row.ClientName)
		assert.Equal(t, "High", row.RiskCategory)
		assert.Equal(t, "High", row.HighestSeverity)
		assert.Equal(t, 2, row.OverdueCount)
		assert.Equal(t, 2, row.AlertCount)
		assert.True(t, row.Exposure.Equal(behind.Outstanding()))
		assert.Equal(t, "120000.00", row.LoanAmount.StringFixed(2))
	})

	t.Run("empty book", func(t *testing.T) {
		uc := usecase.NewListAlertsUseCase(&mockSnapshotReader{}, service.NewDefaultAlertEngine())

		resp, err := uc.Execute(context.Background())

		require.NoError(t, err)
		assert.Zero(t, resp.Total)
		assert.NotNil(t, resp.Alerts)
	})

	t.Run("snapshot failure", func(t *testing.T) {
		uc := usecase.NewListAlertsUseCase(&mockSnapshotReader{err: errors.New("tx aborted")}, service.NewDefaultAlertEngine())

		_, err := uc.Execute(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "read snapshot")
	})
}
