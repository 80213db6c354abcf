package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/service"
)

// GetLoanAlertsUseCase evaluates the default-risk alerts of one loan.
type GetLoanAlertsUseCase struct {
	snapshots port.SnapshotReader
	engine    *service.DefaultAlertEngine
	metrics   Metrics
}

// NewGetLoanAlertsUseCase wires dependencies.
func NewGetLoanAlertsUseCase(
	snapshots port.SnapshotReader,
	engine *service.DefaultAlertEngine,
	metrics Metrics,
) *GetLoanAlertsUseCase {
	return &GetLoanAlertsUseCase{
		snapshots: snapshots,
		engine:    engine,
		metrics:   metrics,
	}
}

// Execute returns the default probability and alerts ordered by severity.
func (uc *GetLoanAlertsUseCase) Execute(ctx context.Context, req dto.LoanRequest) (dto.LoanAlertsResponse, error) {
	now := time.Now().UTC()

	snap, err := uc.snapshots.LoanSnapshot(ctx, req.LoanID)
	if err != nil {
		return dto.LoanAlertsResponse{}, fmt.Errorf("read loan %s: %w", req.LoanID, err)
	}
	loan, client := snap.Loan, snap.Client

	eval := uc.engine.Evaluate(loan, client.RiskTier(), now)
	recordAlerts(ctx, uc.metrics, eval)

	return dto.LoanAlertsResponse{
		LoanID:              loan.ID(),
		LoanStatus:          loan.Status().String(),
		RiskCategory:        client.RiskTier().String(),
		DefaultProbability:  eval.DefaultProbability,
		OverdueInstallments: eval.OverdueInstallments,
		TotalInstallments:   eval.TotalInstallments,
		Alerts:              toAlertResponses(eval.Alerts),
	}, nil
}

func recordAlerts(ctx context.Context, m Metrics, eval service.AlertEvaluation) {
	counts := make(map[string]int)
	for _, a := range eval.Alerts {
		counts[string(a.Severity)]++
	}
	for severity, n := range counts {
		m.AlertsFired(ctx, severity, n)
	}
}
