package usecase

import (
	"log/slog"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/service"
)

// Dependencies are the driven adapters every use case draws from.
type Dependencies struct {
	Clients   port.ClientRepository
	Loans     port.LoanRepository
	Snapshots port.SnapshotReader
	Publisher port.EventPublisher
	Metrics   Metrics
	Logger    *slog.Logger
}

// Engine bundles the use cases exposed by the transports.
type Engine struct {
	OnboardClient       *OnboardClientUseCase
	UpdateClient        *UpdateClientUseCase
	SuggestLoan         *SuggestLoanUseCase
	CreateLoan          *CreateLoanUseCase
	UpdateLoan          *UpdateLoanUseCase
	GetInstallments     *GetInstallmentsUseCase
	MarkInstallmentPaid *MarkInstallmentPaidUseCase
	MarkAllPaid         *MarkAllPaidUseCase
	RefreshOverdue      *RefreshOverdueUseCase
	GetLoanAlerts       *GetLoanAlertsUseCase
	ListAlerts          *ListAlertsUseCase
	GetDashboardStats   *GetDashboardStatsUseCase
	EvaluateDefault     *EvaluateDefaultUseCase
	SweepDefaults       *SweepDefaultsUseCase
}

// NewEngine wires every use case with the stateless domain services.
func NewEngine(d Dependencies) *Engine {
	if d.Metrics == nil {
		d.Metrics = NopMetrics{}
	}

	scorer := service.NewRiskScorer()
	advisor := service.NewLoanAdvisor()
	alerts := service.NewDefaultAlertEngine()
	aggregator := service.NewPortfolioAggregator()

	return &Engine{
		OnboardClient:       NewOnboardClientUseCase(d.Clients, d.Publisher, scorer, d.Metrics, d.Logger),
		UpdateClient:        NewUpdateClientUseCase(d.Clients, d.Publisher, scorer, d.Logger),
		SuggestLoan:         NewSuggestLoanUseCase(d.Clients, scorer, advisor),
		CreateLoan:          NewCreateLoanUseCase(d.Clients, d.Loans, d.Publisher, d.Metrics, d.Logger),
		UpdateLoan:          NewUpdateLoanUseCase(d.Loans, d.Publisher, d.Logger),
		GetInstallments:     NewGetInstallmentsUseCase(d.Loans),
		MarkInstallmentPaid: NewMarkInstallmentPaidUseCase(d.Loans, d.Publisher, d.Metrics, d.Logger),
		MarkAllPaid:         NewMarkAllPaidUseCase(d.Loans, d.Publisher, d.Metrics, d.Logger),
		RefreshOverdue:      NewRefreshOverdueUseCase(d.Loans, d.Metrics, d.Logger),
		GetLoanAlerts:       NewGetLoanAlertsUseCase(d.Snapshots, alerts, d.Metrics),
		ListAlerts:          NewListAlertsUseCase(d.Snapshots, alerts),
		GetDashboardStats:   NewGetDashboardStatsUseCase(d.Snapshots, aggregator),
		EvaluateDefault:     NewEvaluateDefaultUseCase(d.Clients, d.Loans, d.Publisher, alerts, d.Logger),
		SweepDefaults:       NewSweepDefaultsUseCase(d.Clients, d.Loans, d.Publisher, alerts, d.Metrics, d.Logger),
	}
}
