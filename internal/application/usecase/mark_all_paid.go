package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
)

// MarkAllPaidUseCase settles every unpaid installment of a loan at once.
type MarkAllPaidUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
	metrics   Metrics
	logger    *slog.Logger
}

// NewMarkAllPaidUseCase wires dependencies.
func NewMarkAllPaidUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	metrics Metrics,
	logger *slog.Logger,
) *MarkAllPaidUseCase {
	return &MarkAllPaidUseCase{
		loanRepo:  loanRepo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute settles the loan in a single versioned save, so either every
// installment is paid and the loan completed or nothing changes.
func (uc *MarkAllPaidUseCase) Execute(ctx context.Context, req dto.LoanRequest) (dto.MarkAllPaidResponse, error) {
	now := time.Now().UTC()

	var settled int
	loan, events, err := mutateLoan(ctx, uc.loanRepo,
		func(ctx context.Context) (model.Loan, error) { return uc.loanRepo.FindByID(ctx, req.LoanID) },
		func(l model.Loan) (model.Loan, error) {
			next, n, err := l.MarkAllPaid(now)
			if err != nil {
				return model.Loan{}, fmt.Errorf("mark all paid: %w", err)
			}
			settled = n
			return next, nil
		},
	)
	if err != nil {
		return dto.MarkAllPaidResponse{}, err
	}

	publish(ctx, uc.publisher, uc.logger, loan.ID(), events)
	if settled > 0 {
		uc.metrics.InstallmentsPaid(ctx, settled)
	}

	uc.logger.Info("loan settled",
		"loan_id", loan.ID(),
		"installments_settled", settled,
		"status", loan.Status().String(),
	)

	return dto.MarkAllPaidResponse{
		LoanID:              loan.ID(),
		InstallmentsSettled: settled,
		LoanStatus:          loan.Status().String(),
	}, nil
}
