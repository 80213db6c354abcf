package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/usecase"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

// EngineHandler implements EngineServiceServer on top of the use cases.
type EngineHandler struct {
	UnimplementedEngineServiceServer
	engine *usecase.Engine
	logger *slog.Logger
}

// NewEngineHandler creates the handler.
func NewEngineHandler(engine *usecase.Engine, logger *slog.Logger) *EngineHandler {
	return &EngineHandler{engine: engine, logger: logger}
}

func (h *EngineHandler) SuggestLoan(ctx context.Context, req *dto.SuggestLoanRequest) (*dto.LoanSuggestionResponse, error) {
	resp, err := h.engine.SuggestLoan.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &resp, nil
}

func (h *EngineHandler) GetLoanAlerts(ctx context.Context, req *dto.LoanRequest) (*dto.LoanAlertsResponse, error) {
	resp, err := h.engine.GetLoanAlerts.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &resp, nil
}

func (h *EngineHandler) ListAlerts(ctx context.Context, _ *Empty) (*dto.ListAlertsResponse, error) {
	resp, err := h.engine.ListAlerts.Execute(ctx)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &resp, nil
}

func (h *EngineHandler) GetDashboardStats(ctx context.Context, _ *Empty) (*dto.DashboardStatsResponse, error) {
	resp, err := h.engine.GetDashboardStats.Execute(ctx)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &resp, nil
}

func (h *EngineHandler) MarkInstallmentPaid(ctx context.Context, req *dto.InstallmentRequest) (*dto.MarkPaidResponse, error) {
	resp, err := h.engine.MarkInstallmentPaid.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &resp, nil
}

// toStatus maps the error taxonomy onto gRPC codes.
func (h *EngineHandler) toStatus(err error) error {
	switch {
	case errors.Is(err, valueobject.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, valueobject.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, valueobject.ErrAlreadyPaid):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, valueobject.ErrConflictBusy):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		h.logger.Error("rpc failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
