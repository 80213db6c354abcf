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

// MarkInstallmentPaidUseCase settles a single installment.
type MarkInstallmentPaidUseCase struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
	metrics   Metrics
	logger    *slog.Logger
}

// NewMarkInstallmentPaidUseCase wires dependencies.
func NewMarkInstallmentPaidUseCase(
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	metrics Metrics,
	logger *slog.Logger,
) *MarkInstallmentPaidUseCase {
	return &MarkInstallmentPaidUseCase{
		loanRepo:  loanRepo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute marks the installment paid. The repository holds the loan while
// the installment is settled, so payments on different installments of one
// loan queue rather than conflict; a second payment of the same
// installment fails with valueobject.ErrAlreadyPaid.
func (uc *MarkInstallmentPaidUseCase) Execute(ctx context.Context, req dto.InstallmentRequest) (dto.MarkPaidResponse, error) {
	now := time.Now().UTC()

	settled, err := uc.loanRepo.SettleInstallment(ctx, req.InstallmentID, func(l model.Loan) (model.Loan, error) {
		return l.MarkInstallmentPaid(req.InstallmentID, now)
	})
	if err != nil {
		return dto.MarkPaidResponse{}, fmt.Errorf("mark installment %s paid: %w", req.InstallmentID, err)
	}
	loan, events := settled.Committed(), settled.DomainEvents()

	publish(ctx, uc.publisher, uc.logger, loan.ID(), events)
	uc.metrics.InstallmentsPaid(ctx, 1)

	inst, _ := loan.Installment(req.InstallmentID)
	completed := loan.Status() == valueobject.LoanStatusCompleted
	uc.logger.Info("installment paid",
		"loan_id", loan.ID(),
		"installment_id", inst.ID(),
		"installment_number", inst.Number(),
		"loan_completed", completed,
	)

	return dto.MarkPaidResponse{
		Installment:   toInstallmentResponse(inst, now),
		LoanStatus:    loan.Status().String(),
		LoanCompleted: completed,
	}, nil
}
