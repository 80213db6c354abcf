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
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/service"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

// errNoTransition aborts a versioned save when the reloaded loan no longer
// qualifies for default.
var errNoTransition = errors.New("no default transition")

// defaultEvaluator applies the default policy to one loan.
type defaultEvaluator struct {
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
	engine    *service.DefaultAlertEngine
	logger    *slog.Logger
}

type defaultDecision struct {
	loan      model.Loan
	eval      service.AlertEvaluation
	defaulted bool
}

func (d defaultEvaluator) evaluate(ctx context.Context, loanID string, tier valueobject.RiskTier, now time.Time) (defaultDecision, error) {
	var dec defaultDecision
	loan, events, err := mutateLoan(ctx, d.loanRepo,
		func(ctx context.Context) (model.Loan, error) { return d.loanRepo.FindByID(ctx, loanID) },
		func(l model.Loan) (model.Loan, error) {
			dec.loan = l
			dec.eval = d.engine.Evaluate(l, tier, now)
			if l.Status() != valueobject.LoanStatusActive || !d.engine.ShouldDefault(dec.eval) {
				return model.Loan{}, errNoTransition
			}
			next, err := l.MarkDefaulted(dec.eval.DefaultProbability, now)
			if err != nil {
				return model.Loan{}, fmt.Errorf("mark defaulted: %w", err)
			}
			return next, nil
		},
	)
	if errors.Is(err, errNoTransition) {
		return dec, nil
	}
	if err != nil {
		return defaultDecision{}, err
	}

	dec.loan, dec.defaulted = loan, true
	publish(ctx, d.publisher, d.logger, loan.ID(), events)
	d.logger.Warn("loan defaulted",
		"loan_id", loan.ID(),
		"default_probability", dec.eval.DefaultProbability.StringFixed(2),
		"overdue_installments", dec.eval.OverdueInstallments,
	)
	return dec, nil
}

func (dec defaultDecision) response() dto.EvaluateDefaultResponse {
	return dto.EvaluateDefaultResponse{
		LoanID:              dec.loan.ID(),
		DefaultProbability:  dec.eval.DefaultProbability,
		OverdueInstallments: dec.eval.OverdueInstallments,
		Defaulted:           dec.defaulted,
		LoanStatus:          dec.loan.Status().String(),
	}
}

// ---------------------------------------------------------------------------
// EvaluateDefault
// ---------------------------------------------------------------------------

// EvaluateDefaultUseCase moves a single Active loan to Defaulted when the
// alert engine's policy says so.
type EvaluateDefaultUseCase struct {
	clientRepo port.ClientRepository
	loanRepo   port.LoanRepository
	evaluator  defaultEvaluator
}

// NewEvaluateDefaultUseCase wires dependencies.
func NewEvaluateDefaultUseCase(
	clientRepo port.ClientRepository,
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	engine *service.DefaultAlertEngine,
	logger *slog.Logger,
) *EvaluateDefaultUseCase {
	return &EvaluateDefaultUseCase{
		clientRepo: clientRepo,
		loanRepo:   loanRepo,
		evaluator:  defaultEvaluator{loanRepo: loanRepo, publisher: publisher, engine: engine, logger: logger},
	}
}

// Execute returns the decision; a loan that does not qualify is left
// untouched.
func (uc *EvaluateDefaultUseCase) Execute(ctx context.Context, req dto.LoanRequest) (dto.EvaluateDefaultResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.EvaluateDefaultResponse{}, fmt.Errorf("find loan: %w", err)
	}
	client, err := uc.clientRepo.FindByID(ctx, loan.ClientID())
	if err != nil {
		return dto.EvaluateDefaultResponse{}, fmt.Errorf("find client: %w", err)
	}

	dec, err := uc.evaluator.evaluate(ctx, loan.ID(), client.RiskTier(), time.Now().UTC())
	if err != nil {
		return dto.EvaluateDefaultResponse{}, err
	}
	return dec.response(), nil
}

// ---------------------------------------------------------------------------
// SweepDefaults
// ---------------------------------------------------------------------------

// SweepDefaultsUseCase applies the default policy to every Active loan.
type SweepDefaultsUseCase struct {
	clientRepo port.ClientRepository
	loanRepo   port.LoanRepository
	evaluator  defaultEvaluator
	metrics    Metrics
	logger     *slog.Logger
}

// NewSweepDefaultsUseCase wires dependencies.
func NewSweepDefaultsUseCase(
	clientRepo port.ClientRepository,
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	engine *service.DefaultAlertEngine,
	metrics Metrics,
	logger *slog.Logger,
) *SweepDefaultsUseCase {
	return &SweepDefaultsUseCase{
		clientRepo: clientRepo,
		loanRepo:   loanRepo,
		evaluator:  defaultEvaluator{loanRepo: loanRepo, publisher: publisher, engine: engine, logger: logger},
		metrics:    metrics,
		logger:     logger,
	}
}

// Execute evaluates each Active loan independently. A loan that fails is
// logged and skipped so one bad record cannot stall the sweep.
func (uc *SweepDefaultsUseCase) Execute(ctx context.Context) (dto.SweepDefaultsResponse, error) {
	now := time.Now().UTC()

	loans, err := uc.loanRepo.ListActive(ctx)
	if err != nil {
		return dto.SweepDefaultsResponse{}, fmt.Errorf("list active loans: %w", err)
	}

	tiers := make(map[string]valueobject.RiskTier)
	resp := dto.SweepDefaultsResponse{Defaulted: []string{}}
	for _, loan := range loans {
		if err := ctx.Err(); err != nil {
			return resp, err
		}

		tier, ok := tiers[loan.ClientID()]
		if !ok {
			client, err := uc.clientRepo.FindByID(ctx, loan.ClientID())
			if err != nil {
				uc.logger.Error("default sweep: find client", "loan_id", loan.ID(), "error", err)
				continue
			}
			tier = client.RiskTier()
			tiers[loan.ClientID()] = tier
		}

		dec, err := uc.evaluator.evaluate(ctx, loan.ID(), tier, now)
		if err != nil {
			uc.logger.Error("default sweep: evaluate loan", "loan_id", loan.ID(), "error", err)
			continue
		}
		resp.Evaluated++
		recordAlerts(ctx, uc.metrics, dec.eval)
		if dec.defaulted {
			resp.Defaulted = append(resp.Defaulted, dec.loan.ID())
		}
	}

	uc.logger.Info("default sweep finished",
		"evaluated", resp.Evaluated,
		"defaulted", len(resp.Defaulted),
	)
	return resp, nil
}
