package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/event"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

// maxSaveAttempts bounds the reload-and-retry loop of a versioned save.
const maxSaveAttempts = 3

// mutateLoan loads a loan, applies fn and saves the result against the
// loaded version. When another writer wins the race the loan is reloaded
// and fn re-applied, so fn must be a pure function of the loaded state.
// It returns the committed loan and the events fn recorded.
func mutateLoan(
	ctx context.Context,
	repo port.LoanRepository,
	load func(ctx context.Context) (model.Loan, error),
	fn func(model.Loan) (model.Loan, error),
) (model.Loan, []event.DomainEvent, error) {
	for attempt := 1; ; attempt++ {
		loan, err := load(ctx)
		if err != nil {
			return model.Loan{}, nil, fmt.Errorf("find loan: %w", err)
		}

		next, err := fn(loan)
		if err != nil {
			return model.Loan{}, nil, err
		}

		err = repo.Save(ctx, next)
		if err == nil {
			return next.Committed(), next.DomainEvents(), nil
		}
		if !errors.Is(err, port.ErrConcurrentModification) {
			return model.Loan{}, nil, fmt.Errorf("save loan: %w", err)
		}
		if attempt == maxSaveAttempts {
			return model.Loan{}, nil, fmt.Errorf("save loan %s after %d attempts: %w",
				loan.ID(), attempt, valueobject.ErrConflictBusy)
		}
	}
}

// publish hands committed events to the publisher. The state change has
// already been persisted, so a failure is logged and swallowed.
func publish(ctx context.Context, publisher port.EventPublisher, logger *slog.Logger, aggregateID string, events []event.DomainEvent) {
	if len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Error("failed to publish domain events",
			"error", err,
			"aggregate_id", aggregateID,
			"event_count", len(events),
		)
	}
}
