package usecase

import (
	"context"
	"fmt"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/dto"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/service"
)

// SuggestLoanUseCase recommends terms for a requested amount. It never
// writes anything.
type SuggestLoanUseCase struct {
	clientRepo port.ClientRepository
	scorer     *service.RiskScorer
	advisor    *service.LoanAdvisor
}

// NewSuggestLoanUseCase wires dependencies.
func NewSuggestLoanUseCase(
	clientRepo port.ClientRepository,
	scorer *service.RiskScorer,
	advisor *service.LoanAdvisor,
) *SuggestLoanUseCase {
	return &SuggestLoanUseCase{
		clientRepo: clientRepo,
		scorer:     scorer,
		advisor:    advisor,
	}
}

// Execute scores the client against the requested amount and asks the
// advisor for terms.
func (uc *SuggestLoanUseCase) Execute(ctx context.Context, req dto.SuggestLoanRequest) (dto.LoanSuggestionResponse, error) {
	// 1. Load the client.
	client, err := uc.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return dto.LoanSuggestionResponse{}, fmt.Errorf("find client: %w", err)
	}

	// 2. Score with the loan-to-income factor active.
	profile := client.Profile()
	score := uc.scorer.Score(profile, req.LoanAmount)

	// 3. Suggest.
	suggestion, err := uc.advisor.Suggest(service.ClientRiskProfile{
		Score:         score.Score,
		Tier:          score.Tier,
		MonthlyIncome: profile.MonthlyIncome,
		ExistingLoans: profile.ExistingLoans,
	}, req.LoanAmount)
	if err != nil {
		return dto.LoanSuggestionResponse{}, fmt.Errorf("suggest loan: %w", err)
	}

	return toSuggestionResponse(client.ID(), suggestion), nil
}
