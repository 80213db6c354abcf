package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
)

// GetInstallmentsUseCase returns a loan's schedule with overdue derived at
// read time.
type GetInstallmentsUseCase struct {
	loanRepo port.LoanRepository
}

// NewGetInstallmentsUseCase wires dependencies.
func NewGetInstallmentsUseCase(loanRepo port.LoanRepository) *GetInstallmentsUseCase {
	return &GetInstallmentsUseCase{loanRepo: loanRepo}
}

// Execute returns the installments ordered by number.
func (uc *GetInstallmentsUseCase) Execute(ctx context.Context, req dto.LoanRequest) (dto.InstallmentsResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.InstallmentsResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return dto.InstallmentsResponse{
		LoanID:       loan.ID(),
		Installments: toInstallmentResponses(loan, time.Now().UTC()),
	}, nil
}
