package usecase

import (
	"time"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/service"
)

func toClientResponse(c model.Client) dto.ClientResponse {
	p := c.Profile()
	return dto.ClientResponse{
		ID:               c.ID(),
		Name:             c.Name(),
		NationalID:       c.NationalID().String(),
		Phone:            c.Phone(),
		Address:          c.Address(),
		MonthlyIncome:    p.MonthlyIncome,
		EmploymentStatus: string(p.Employment),
		ExistingLoans:    p.ExistingLoans,
		CreditHistory:    string(p.CreditHistory),
		RiskScore:        c.RiskScore(),
		RiskCategory:     c.RiskTier().String(),
		CreatedAt:        c.CreatedAt(),
		UpdatedAt:        c.UpdatedAt(),
	}
}

func toLoanResponse(l model.Loan) dto.LoanResponse {
	return dto.LoanResponse{
		ID:                 l.ID(),
		ClientID:           l.ClientID(),
		LoanAmount:         l.Principal(),
		LoanType:           string(l.Type()),
		InterestRate:       l.AnnualRate(),
		DurationMonths:     l.TenureMonths(),
		MonthlyInstallment: l.MonthlyInstallment(),
		StartDate:          dto.NewDate(l.StartDate()),
		Status:             l.Status().String(),
		TotalRepayment:     l.TotalScheduled(),
		Outstanding:        l.Outstanding(),
		Version:            l.Version(),
		CreatedAt:          l.CreatedAt(),
		UpdatedAt:          l.UpdatedAt(),
	}
}

// toInstallmentResponse derives is_overdue at asOf; the stored flag is
// never reported.
func toInstallmentResponse(i model.Installment, asOf time.Time) dto.InstallmentResponse {
	return dto.InstallmentResponse{
		ID:                i.ID(),
		LoanID:            i.LoanID(),
		InstallmentNumber: i.Number(),
		Amount:            i.Amount(),
		Principal:         i.Principal(),
		Interest:          i.Interest(),
		DueDate:           dto.NewDate(i.DueDate()),
		IsPaid:            i.Paid(),
		PaidDate:          i.PaidDate(),
		IsOverdue:         i.IsOverdue(asOf),
	}
}

func toInstallmentResponses(l model.Loan, asOf time.Time) []dto.InstallmentResponse {
	insts := l.Installments()
	out := make([]dto.InstallmentResponse, 0, len(insts))
	for _, i := range insts {
		out = append(out, toInstallmentResponse(i, asOf))
	}
	return out
}

func toAlertResponses(alerts []model.Alert) []dto.AlertResponse {
	out := make([]dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.AlertResponse{
			Type:           string(a.Type),
			Severity:       string(a.Severity),
			Message:        a.Message,
			Recommendation: a.Recommendation,
		})
	}
	return out
}

func toSuggestionResponse(clientID string, s service.LoanSuggestion) dto.LoanSuggestionResponse {
	return dto.LoanSuggestionResponse{
		ClientID:               clientID,
		RiskScore:              s.RiskScore,
		RiskCategory:           s.RiskTier.String(),
		RequestedAmount:        s.RequestedAmount,
		RecommendedRate:        s.RecommendedRate,
		RecommendedTenure:      s.RecommendedTenure,
		RecommendedInstallment: s.RecommendedInstallment,
		DebtServiceRatio:       s.DebtServiceRatio,
		LoanToIncome:           s.LoanToIncome,
		StressRate:             s.StressRate,
		StressInstallment:      s.StressInstallment,
		MaxExposure:            s.MaxExposure,
		Insights:               s.Insights,
		Approval:               string(s.Approval),
	}
}

func toYearStatsResponse(y service.YearStats) dto.YearStatsResponse {
	return dto.YearStatsResponse{
		Year:           y.Year,
		Disbursed:      y.Disbursed,
		Expected:       y.Expected,
		Collected:      y.Collected,
		CollectionRate: y.CollectionRate,
	}
}
