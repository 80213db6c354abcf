package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/service"
)

// ListAlertsUseCase builds the collections triage list across the book.
type ListAlertsUseCase struct {
	snapshots port.SnapshotReader
	engine    *service.DefaultAlertEngine
}

// NewListAlertsUseCase wires dependencies.
func NewListAlertsUseCase(snapshots port.SnapshotReader, engine *service.DefaultAlertEngine) *ListAlertsUseCase {
	return &ListAlertsUseCase{snapshots: snapshots, engine: engine}
}

// Execute evaluates every loan in one consistent snapshot.
func (uc *ListAlertsUseCase) Execute(ctx context.Context) (dto.ListAlertsResponse, error) {
	snap, err := uc.snapshots.Snapshot(ctx)
	if err != nil {
		return dto.ListAlertsResponse{}, fmt.Errorf("read snapshot: %w", err)
	}

	rows := uc.engine.Triage(snap.Loans, snap.ClientIndex(), time.Now().UTC())

	out := make([]dto.PortfolioAlertResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PortfolioAlertResponse{
			LoanID:             r.LoanID,
			ClientID:           r.ClientID,
			ClientName:         r.ClientName,
			OverdueCount:       r.OverdueCount,
			LoanAmount:         r.Principal,
			Exposure:           r.Exposure,
			RiskCategory:       r.RiskTier.String(),
			HighestSeverity:    string(r.HighestSeverity),
			DefaultProbability: r.DefaultProbability,
			AlertCount:         r.AlertCount,
		})
	}
	return dto.ListAlertsResponse{Alerts: out, Total: len(out)}, nil
}
