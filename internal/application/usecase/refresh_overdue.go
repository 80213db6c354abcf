package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
)

// RefreshOverdueUseCase materializes the overdue predicate into the stored
// installment flags.
type RefreshOverdueUseCase struct {
	loanRepo port.LoanRepository
	metrics  Metrics
	logger   *slog.Logger
}

// NewRefreshOverdueUseCase wires dependencies.
func NewRefreshOverdueUseCase(loanRepo port.LoanRepository, metrics Metrics, logger *slog.Logger) *RefreshOverdueUseCase {
	return &RefreshOverdueUseCase{
		loanRepo: loanRepo,
		metrics:  metrics,
		logger:   logger,
	}
}

// Execute is idempotent: a second run at the same instant changes nothing
// and reports 0.
func (uc *RefreshOverdueUseCase) Execute(ctx context.Context) (dto.RefreshOverdueResponse, error) {
	asOf := time.Now().UTC()

	n, err := uc.loanRepo.MaterializeOverdue(ctx, asOf)
	if err != nil {
		return dto.RefreshOverdueResponse{}, fmt.Errorf("materialize overdue: %w", err)
	}
	if n > 0 {
		uc.metrics.OverdueMaterialized(ctx, n)
	}

	uc.logger.Info("overdue flags refreshed", "updated_count", n, "as_of", asOf)
	return dto.RefreshOverdueResponse{UpdatedCount: n, AsOf: asOf}, nil
}
