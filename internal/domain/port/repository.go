package port

import (
	"context"
	"errors"
	"time"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/event"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
)

// ErrConcurrentModification is returned by LoanRepository.Save when the
// stored version no longer matches the version the loan was loaded at.
var ErrConcurrentModification = errors.New("concurrent modification")

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// ClientRepository persists and retrieves borrowers. Find methods return
// valueobject.ErrNotFound when nothing matches.
type ClientRepository interface {
	Save(ctx context.Context, client model.Client) error
	FindByID(ctx context.Context, id string) (model.Client, error)
	FindByNationalID(ctx context.Context, nationalID string) (model.Client, error)
}

// LoanRepository persists loans together with their installments.
//
// Save inserts a new loan (loan.IsNew()) at version 1, or updates one whose
// stored version equals loan.Version() and increments it. Any other stored
// version fails with ErrConcurrentModification and writes nothing. On
// success the stored state equals loan.Committed().
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, id string) (model.Loan, error)
	FindByInstallmentID(ctx context.Context, installmentID string) (model.Loan, error)
	ListActive(ctx context.Context) ([]model.Loan, error)

	// SettleInstallment holds the loan owning installmentID exclusively,
	// passes its stored state to settle and writes back the settled
	// installment together with the loan status, advancing the version.
	// Settlements of different installments of one loan queue on the
	// loan instead of failing. The installment row is only written while
	// still unpaid; a lost race yields valueobject.ErrAlreadyPaid. The
	// returned loan is settle's result with its pending events; the
	// stored state is its Committed() copy.
	SettleInstallment(ctx context.Context, installmentID string, settle func(model.Loan) (model.Loan, error)) (model.Loan, error)

	// MaterializeOverdue recomputes the stored overdue flag of every
	// installment at asOf and returns how many flags changed. Loan
	// versions are untouched.
	MaterializeOverdue(ctx context.Context, asOf time.Time) (int, error)
}

// SnapshotReader reads clients and loans as of a single point in time so
// that portfolio rollups never mix states.
//
// LoanSnapshot reads one loan and its borrower the same way, so evaluation
// never pairs a loan row with installments or a client from another
// commit. A missing loan is valueobject.ErrNotFound.
type SnapshotReader interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	LoanSnapshot(ctx context.Context, loanID string) (LoanSnapshot, error)
}

// LoanSnapshot is one consistent view of a loan and its client.
type LoanSnapshot struct {
	Loan   model.Loan
	Client model.Client
}

// Snapshot is one consistent view of the book.
type Snapshot struct {
	Clients []model.Client
	Loans   []model.Loan
}

// ClientIndex maps client id to client.
func (s Snapshot) ClientIndex() map[string]model.Client {
	out := make(map[string]model.Client, len(s.Clients))
	for _, c := range s.Clients {
		out[c.ID()] = c
	}
	return out
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// Coordination port
// ---------------------------------------------------------------------------

// JobLocker guards scheduled jobs so that only one replica runs a job at a
// time. release is non-nil only when acquired is true.
type JobLocker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(), acquired bool, err error)
}
