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

// CreateLoanUseCase originates a loan and generates its schedule.
type CreateLoanUseCase struct {
	clientRepo port.ClientRepository
	loanRepo   port.LoanRepository
	publisher  port.EventPublisher
	metrics    Metrics
	logger     *slog.Logger
}

// NewCreateLoanUseCase wires dependencies.
func NewCreateLoanUseCase(
	clientRepo port.ClientRepository,
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	metrics Metrics,
	logger *slog.Logger,
) *CreateLoanUseCase {
	return &CreateLoanUseCase{
		clientRepo: clientRepo,
		loanRepo:   loanRepo,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Execute validates the terms, checks the client exists and persists the
// loan with its full installment schedule in one save.
func (uc *CreateLoanUseCase) Execute(ctx context.Context, req dto.CreateLoanRequest) (dto.CreateLoanResponse, error) {
	now := time.Now().UTC()

	// 1. Parse terms.
	loanType, err := valueobject.ParseLoanType(req.LoanType)
	if err != nil {
		return dto.CreateLoanResponse{}, fmt.Errorf("invalid loan: %w", err)
	}
	terms := model.LoanTerms{
		Principal:    req.LoanAmount,
		Type:         loanType,
		AnnualRate:   req.InterestRate,
		TenureMonths: req.DurationMonths,
		StartDate:    req.StartDate.Time,
	}
	if err := terms.Validate(); err != nil {
		return dto.CreateLoanResponse{}, fmt.Errorf("invalid loan: %w", err)
	}

	// 2. The client must exist.
	if _, err := uc.clientRepo.FindByID(ctx, req.ClientID); err != nil {
		return dto.CreateLoanResponse{}, fmt.Errorf("find client: %w", err)
	}

	// 3. Originate and schedule.
	loan, err := model.NewLoan(req.ClientID, terms, now)
	if err != nil {
		return dto.CreateLoanResponse{}, fmt.Errorf("create loan: %w", err)
	}

	// 4. Persist loan and installments together.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.CreateLoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	// 5. Publish events.
	publish(ctx, uc.publisher, uc.logger, loan.ID(), loan.DomainEvents())
	uc.metrics.LoanOriginated(ctx)

	uc.logger.Info("loan originated",
		"loan_id", loan.ID(),
		"client_id", loan.ClientID(),
		"principal", loan.Principal().StringFixed(2),
		"monthly_installment", loan.MonthlyInstallment().StringFixed(2),
		"tenure_months", loan.TenureMonths(),
	)

	committed := loan.Committed()
	return dto.CreateLoanResponse{
		Loan:         toLoanResponse(committed),
		Installments: toInstallmentResponses(committed, now),
	}, nil
}
