package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/usecase"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/event"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

func validCreateLoanRequest(clientID string) dto.CreateLoanRequest {
	return dto.CreateLoanRequest{
		ClientID:       clientID,
		LoanAmount:     decimal.NewFromInt(120_000),
		LoanType:       "Business",
		InterestRate:   decimal.NewFromInt(12),
		DurationMonths: 12,
		StartDate:      dto.NewDate(time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)),
	}
}

func TestCreateLoan_Execute(t *testing.T) {
	t.Run("originates a loan with its full schedule", func(t *testing.T) {
		client := lowRiskClient(t)
		loanRepo := &mockLoanRepository{}
		publisher := &mockEventPublisher{}
		metrics := newMockMetrics()
		uc := usecase.NewCreateLoanUseCase(newMockClientRepository(client), loanRepo, publisher, metrics, testLogger())

		resp, err := uc.Execute(context.Background(), validCreateLoanRequest(client.ID()))

		require.NoError(t, err)
		assert.Equal(t, "10661.85", resp.Loan.MonthlyInstallment.StringFixed(2))
		assert.Equal(t, "127942.20", resp.Loan.TotalRepayment.StringFixed(2))
		assert.Equal(t, "Active", resp.Loan.Status)
		assert.Equal(t, 1, resp.Loan.Version)
		require.Len(t, resp.Installments, 12)

		// Due dates clamp to month end instead of spilling over.
		assert.Equal(t, "2025-02-28", resp.Installments[0].DueDate.Format(time.DateOnly))
		assert.Equal(t, "2025-03-31", resp.Installments[1].DueDate.Format(time.DateOnly))

		sum := decimal.Zero
		for _, inst := range resp.Installments {
			sum = sum.Add(inst.Amount)
			assert.False(t, inst.IsPaid)
		}
		assert.True(t, sum.Equal(resp.Loan.TotalRepayment))

		require.Len(t, loanRepo.savedLoans, 1)
		assert.True(t, loanRepo.savedLoans[0].IsNew())
		assert.Equal(t, []string{event.EventTypeLoanOriginated}, publisher.eventTypes())
		assert.Equal(t, 1, metrics.originated)
	})

	t.Run("missing client writes nothing", func(t *testing.T) {
		loanRepo := &mockLoanRepository{}
		uc := usecase.NewCreateLoanUseCase(newMockClientRepository(), loanRepo, &mockEventPublisher{}, newMockMetrics(), testLogger())

		_, err := uc.Execute(context.Background(), validCreateLoanRequest("missing"))

		require.ErrorIs(t, err, valueobject.ErrNotFound)
		assert.Zero(t, loanRepo.saveCalls)
	})

	t.Run("invalid terms are rejected before any lookup", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*dto.CreateLoanRequest)
		}{
			{"zero amount", func(r *dto.CreateLoanRequest) { r.LoanAmount = decimal.Zero }},
			{"unknown type", func(r *dto.CreateLoanRequest) { r.LoanType = "Mortgage" }},
			{"rate above 60", func(r *dto.CreateLoanRequest) { r.InterestRate = decimal.NewFromInt(61) }},
			{"negative rate", func(r *dto.CreateLoanRequest) { r.InterestRate = decimal.NewFromInt(-1) }},
			{"zero tenure", func(r *dto.CreateLoanRequest) { r.DurationMonths = 0 }},
			{"tenure above 60", func(r *dto.CreateLoanRequest) { r.DurationMonths = 61 }},
			{"missing start date", func(r *dto.CreateLoanRequest) { r.StartDate = dto.Date{} }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				clients := newMockClientRepository()
				loanRepo := &mockLoanRepository{}
				uc := usecase.NewCreateLoanUseCase(clients, loanRepo, &mockEventPublisher{}, newMockMetrics(), testLogger())
				req := validCreateLoanRequest("any")
				tt.mutate(&req)

				_, err := uc.Execute(context.Background(), req)

				require.ErrorIs(t, err, valueobject.ErrValidation)
				assert.Zero(t, clients.findCalls)
				assert.Zero(t, loanRepo.saveCalls)
			})
		}
	})
}
