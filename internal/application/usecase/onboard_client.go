package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

// OnboardClientUseCase registers a borrower and scores them.
type OnboardClientUseCase struct {
	clientRepo port.ClientRepository
	publisher  port.EventPublisher
	assessor   model.RiskAssessor
	metrics    Metrics
	logger     *slog.Logger
}

// NewOnboardClientUseCase wires dependencies.
func NewOnboardClientUseCase(
	clientRepo port.ClientRepository,
	publisher port.EventPublisher,
	assessor model.RiskAssessor,
	metrics Metrics,
	logger *slog.Logger,
) *OnboardClientUseCase {
	return &OnboardClientUseCase{
		clientRepo: clientRepo,
		publisher:  publisher,
		assessor:   assessor,
		metrics:    metrics,
		logger:     logger,
	}
}

// Execute validates the borrower, enforces national ID uniqueness, scores
// and persists the new client.
func (uc *OnboardClientUseCase) Execute(ctx context.Context, req dto.OnboardClientRequest) (dto.ClientResponse, error) {
	now := time.Now().UTC()

	// 1. Parse value objects.
	details, err := parseClientDetails(req)
	if err != nil {
		return dto.ClientResponse{}, fmt.Errorf("invalid client: %w", err)
	}

	// 2. National ID must be unique.
	if err := ensureNationalIDFree(ctx, uc.clientRepo, details.NationalID, ""); err != nil {
		return dto.ClientResponse{}, err
	}

	// 3. Create and score the aggregate.
	client, err := model.NewClient(details, uc.assessor, now)
	if err != nil {
		return dto.ClientResponse{}, fmt.Errorf("create client: %w", err)
	}

	// 4. Persist.
	if err := uc.clientRepo.Save(ctx, client); err != nil {
		return dto.ClientResponse{}, fmt.Errorf("save client: %w", err)
	}

	// 5. Publish events.
	publish(ctx, uc.publisher, uc.logger, client.ID(), client.DomainEvents())
	uc.metrics.ClientOnboarded(ctx)

	uc.logger.Info("client onboarded",
		"client_id", client.ID(),
		"risk_score", client.RiskScore().StringFixed(2),
		"risk_tier", client.RiskTier().String(),
	)

	return toClientResponse(client), nil
}

func parseClientDetails(req dto.OnboardClientRequest) (model.ClientDetails, error) {
	nid, err := valueobject.NewNationalID(req.NationalID)
	if err != nil {
		return model.ClientDetails{}, err
	}
	employment, err := valueobject.ParseEmploymentStatus(req.EmploymentStatus)
	if err != nil {
		return model.ClientDetails{}, err
	}
	history, err := valueobject.ParseCreditHistory(req.CreditHistory)
	if err != nil {
		return model.ClientDetails{}, err
	}
	return model.ClientDetails{
		Name:       req.Name,
		NationalID: nid,
		Phone:      req.Phone,
		Address:    req.Address,
		Profile: model.BorrowerProfile{
			MonthlyIncome: req.MonthlyIncome,
			Employment:    employment,
			ExistingLoans: req.ExistingLoans,
			CreditHistory: history,
		},
	}, nil
}

// ensureNationalIDFree fails with a validation error when nid belongs to a
// client other than selfID.
func ensureNationalIDFree(ctx context.Context, repo port.ClientRepository, nid valueobject.NationalID, selfID string) error {
	existing, err := repo.FindByNationalID(ctx, nid.String())
	switch {
	case errors.Is(err, valueobject.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("find client by national id: %w", err)
	case existing.ID() == selfID:
		return nil
	default:
		return valueobject.Invalid("national identity number %s is already registered", nid)
	}
}
