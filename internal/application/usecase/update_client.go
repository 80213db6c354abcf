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

// UpdateClientUseCase applies a partial update to a borrower and rescores
// them.
type UpdateClientUseCase struct {
	clientRepo port.ClientRepository
	publisher  port.EventPublisher
	assessor   model.RiskAssessor
	logger     *slog.Logger
}

// NewUpdateClientUseCase wires dependencies.
func NewUpdateClientUseCase(
	clientRepo port.ClientRepository,
	publisher port.EventPublisher,
	assessor model.RiskAssessor,
	logger *slog.Logger,
) *UpdateClientUseCase {
	return &UpdateClientUseCase{
		clientRepo: clientRepo,
		publisher:  publisher,
		assessor:   assessor,
		logger:     logger,
	}
}

// Execute updates the present fields and always recomputes the risk score.
func (uc *UpdateClientUseCase) Execute(ctx context.Context, req dto.UpdateClientRequest) (dto.ClientResponse, error) {
	now := time.Now().UTC()

	// 1. Parse the patch before touching anything.
	patch, err := parseClientPatch(req)
	if err != nil {
		return dto.ClientResponse{}, fmt.Errorf("invalid client: %w", err)
	}

	// 2. Load the client.
	client, err := uc.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return dto.ClientResponse{}, fmt.Errorf("find client: %w", err)
	}

	// 3. A changed national ID must stay unique.
	if patch.NationalID != nil && !patch.NationalID.Equal(client.NationalID()) {
		if err := ensureNationalIDFree(ctx, uc.clientRepo, *patch.NationalID, client.ID()); err != nil {
			return dto.ClientResponse{}, err
		}
	}

	// 4. Apply and rescore.
	previousTier := client.RiskTier()
	client, err = client.Update(patch, uc.assessor, now)
	if err != nil {
		return dto.ClientResponse{}, fmt.Errorf("update client: %w", err)
	}

	// 5. Persist.
	if err := uc.clientRepo.Save(ctx, client); err != nil {
		return dto.ClientResponse{}, fmt.Errorf("save client: %w", err)
	}

	// 6. Publish events.
	publish(ctx, uc.publisher, uc.logger, client.ID(), client.DomainEvents())

	uc.logger.Info("client rescored",
		"client_id", client.ID(),
		"previous_tier", previousTier.String(),
		"risk_score", client.RiskScore().StringFixed(2),
		"risk_tier", client.RiskTier().String(),
	)

	return toClientResponse(client), nil
}

func parseClientPatch(req dto.UpdateClientRequest) (model.ClientPatch, error) {
	patch := model.ClientPatch{
		Name:          req.Name,
		Phone:         req.Phone,
		Address:       req.Address,
		MonthlyIncome: req.MonthlyIncome,
		ExistingLoans: req.ExistingLoans,
	}
	if req.NationalID != nil {
		nid, err := valueobject.NewNationalID(*req.NationalID)
		if err != nil {
			return model.ClientPatch{}, err
		}
		patch.NationalID = &nid
	}
	if req.EmploymentStatus != nil {
		e, err := valueobject.ParseEmploymentStatus(*req.EmploymentStatus)
		if err != nil {
			return model.ClientPatch{}, err
		}
		patch.Employment = &e
	}
	if req.CreditHistory != nil {
		h, err := valueobject.ParseCreditHistory(*req.CreditHistory)
		if err != nil {
			return model.ClientPatch{}, err
		}
		patch.CreditHistory = &h
	}
	return patch, nil
}
