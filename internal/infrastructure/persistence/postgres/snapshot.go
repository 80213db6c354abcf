package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
	pgutil "github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/postgres"
)

// SnapshotReader implements port.SnapshotReader over a repeatable-read,
// read-only transaction.
type SnapshotReader struct {
	pool *pgxpool.Pool
}

// NewSnapshotReader creates a snapshot reader.
func NewSnapshotReader(pool *pgxpool.Pool) *SnapshotReader {
	return &SnapshotReader{pool: pool}
}

// Snapshot reads every client and loan as of the transaction start.
func (r *SnapshotReader) Snapshot(ctx context.Context) (port.Snapshot, error) {
	var snap port.Snapshot
	err := pgutil.WithTransactionOptions(ctx, r.pool, pgutil.SnapshotTxOptions, func(tx pgx.Tx) error {
		clients, err := listClients(ctx, tx)
		if err != nil {
			return err
		}
		loans, err := listLoans(ctx, tx, "")
		if err != nil {
			return err
		}
		snap = port.Snapshot{Clients: clients, Loans: loans}
		return nil
	})
	if err != nil {
		return port.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	return snap, nil
}

// LoanSnapshot reads one loan, its installments and its client in the same
// snapshot.
func (r *SnapshotReader) LoanSnapshot(ctx context.Context, loanID string) (port.LoanSnapshot, error) {
	if !isUUID(loanID) {
		return port.LoanSnapshot{}, valueobject.ErrNotFound
	}
	var snap port.LoanSnapshot
	err := pgutil.WithTransactionOptions(ctx, r.pool, pgutil.SnapshotTxOptions, func(tx pgx.Tx) error {
		loan, err := findLoan(ctx, tx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, loanID)
		if err != nil {
			return err
		}
		client, err := scanClient(tx.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, loan.ClientID()))
		if err != nil {
			return err
		}
		snap = port.LoanSnapshot{Loan: loan, Client: client}
		return nil
	})
	if err != nil {
		return port.LoanSnapshot{}, err
	}
	return snap, nil
}
