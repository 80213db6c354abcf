package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

// UpdateLoanUseCase edits a loan's terms. Financial edits regenerate the
// schedule and discard recorded payments.
type UpdateLoanUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewUpdateLoanUseCase wires dependencies.
func NewUpdateLoanUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *UpdateLoanUseCase {
	return &UpdateLoanUseCase{
		loanRepo:  loanRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute applies the present fields through a versioned save.
func (uc *UpdateLoanUseCase) Execute(ctx context.Context, req dto.UpdateLoanRequest) (dto.UpdateLoanResponse, error) {
	now := time.Now().UTC()

	// 1. Parse the loan type up front so validation precedes any load.
	var loanType *valueobject.LoanType
	if req.LoanType != nil {
		lt, err := valueobject.ParseLoanType(*req.LoanType)
		if err != nil {
			return dto.UpdateLoanResponse{}, fmt.Errorf("invalid loan: %w", err)
		}
		loanType = &lt
	}

	// 2. Revise under the version check.
	var rev model.Revision
	loan, events, err := mutateLoan(ctx, uc.loanRepo,
		func(ctx context.Context) (model.Loan, error) { return uc.loanRepo.FindByID(ctx, req.LoanID) },
		func(l model.Loan) (model.Loan, error) {
			terms := l.Terms()
			if req.LoanAmount != nil {
				terms.Principal = *req.LoanAmount
			}
			if loanType != nil {
				terms.Type = *loanType
			}
			if req.InterestRate != nil {
				terms.AnnualRate = *req.InterestRate
			}
			if req.DurationMonths != nil {
				terms.TenureMonths = *req.DurationMonths
			}
			if req.StartDate != nil {
				terms.StartDate = req.StartDate.Time
			}
			next, r, err := l.ReviseTerms(terms, now)
			if err != nil {
				return model.Loan{}, fmt.Errorf("revise loan: %w", err)
			}
			rev = r
			return next, nil
		},
	)
	if err != nil {
		return dto.UpdateLoanResponse{}, err
	}

	// 3. Publish events.
	publish(ctx, uc.publisher, uc.logger, loan.ID(), events)

	resp := dto.UpdateLoanResponse{
		Loan:                      toLoanResponse(loan),
		ScheduleRegenerated:       rev.ScheduleRegenerated,
		DiscardedPaidInstallments: rev.DiscardedPaidInstallments,
	}
	if rev.ScheduleRegenerated {
		resp.Installments = toInstallmentResponses(loan, now)
		uc.logger.Warn("loan schedule regenerated",
			"loan_id", loan.ID(),
			"monthly_installment", loan.MonthlyInstallment().StringFixed(2),
			"discarded_paid_installments", rev.DiscardedPaidInstallments,
		)
	} else {
		uc.logger.Info("loan updated", "loan_id", loan.ID(), "loan_type", string(loan.Type()))
	}
	return resp, nil
}
