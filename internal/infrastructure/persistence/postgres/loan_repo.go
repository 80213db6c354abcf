package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
	pgutil "github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/postgres"
)

const loanColumns = `
	id, client_id, loan_amount, loan_type, interest_rate, duration_months,
	monthly_installment, start_date, status, version, created_at, updated_at`

const installmentColumns = `
	id, loan_id, installment_number, amount, principal, interest,
	due_date, is_paid, paid_date, is_overdue`

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	pool *pgxpool.Pool
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

// Save writes the loan row and its installments in one transaction. New
// loans are inserted at version 1; existing loans are updated only while
// the stored version still equals loan.Version().
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	return pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if loan.IsNew() {
			if err := insertLoan(ctx, tx, loan); err != nil {
				return err
			}
		} else if err := updateLoan(ctx, tx, loan); err != nil {
			return err
		}
		return syncInstallments(ctx, tx, loan)
	})
}

func insertLoan(ctx context.Context, tx pgx.Tx, loan model.Loan) error {
	query := `INSERT INTO loans (` + loanColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,1,$10,$11)`
	_, err := tx.Exec(ctx, query,
		loan.ID(), loan.ClientID(), loan.Principal(), string(loan.Type()), loan.AnnualRate(), loan.TenureMonths(),
		loan.MonthlyInstallment(), loan.StartDate(), loan.Status().String(), loan.CreatedAt(), loan.UpdatedAt(),
	)
	if pgutil.IsUniqueViolation(err, "loans_pkey") {
		return port.ErrConcurrentModification
	}
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

func updateLoan(ctx context.Context, tx pgx.Tx, loan model.Loan) error {
	query := `
		UPDATE loans SET
			loan_amount         = $3,
			loan_type           = $4,
			interest_rate       = $5,
			duration_months     = $6,
			monthly_installment = $7,
			start_date          = $8,
			status              = $9,
			updated_at          = $10,
			version             = version + 1
		WHERE id = $1 AND version = $2
	`
	tag, err := tx.Exec(ctx, query,
		loan.ID(), loan.Version(),
		loan.Principal(), string(loan.Type()), loan.AnnualRate(), loan.TenureMonths(),
		loan.MonthlyInstallment(), loan.StartDate(), loan.Status().String(), loan.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return port.ErrConcurrentModification
	}
	return nil
}

// syncInstallments makes the stored rows match the aggregate: rows of a
// discarded schedule are deleted first so a regenerated schedule can reuse
// installment numbers.
func syncInstallments(ctx context.Context, tx pgx.Tx, loan model.Loan) error {
	installments := loan.Installments()
	ids := make([]string, 0, len(installments))
	for _, inst := range installments {
		ids = append(ids, inst.ID())
	}

	if !loan.IsNew() {
		if _, err := tx.Exec(ctx,
			`DELETE FROM installments WHERE loan_id = $1 AND NOT (id::text = ANY($2))`,
			loan.ID(), ids,
		); err != nil {
			return fmt.Errorf("delete discarded installments: %w", err)
		}
	}

	query := `
		INSERT INTO installments (` + installmentColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			is_paid    = EXCLUDED.is_paid,
			paid_date  = EXCLUDED.paid_date,
			is_overdue = EXCLUDED.is_overdue
	`
	batch := &pgx.Batch{}
	for _, inst := range installments {
		batch.Queue(query,
			inst.ID(), loan.ID(), inst.Number(), inst.Amount(), inst.Principal(), inst.Interest(),
			inst.DueDate(), inst.Paid(), inst.PaidDate(), inst.OverdueFlag(),
		)
	}
	br := tx.SendBatch(ctx, batch)
	for _, inst := range installments {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("save installment %d: %w", inst.Number(), err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("save installments: %w", err)
	}
	return nil
}

// FindByID retrieves a loan and its installments by ID. Both reads share
// one snapshot.
func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.Loan, error) {
	if !isUUID(id) {
		return model.Loan{}, valueobject.ErrNotFound
	}
	return r.findInSnapshot(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
}

// FindByInstallmentID retrieves the loan owning an installment.
func (r *LoanRepo) FindByInstallmentID(ctx context.Context, installmentID string) (model.Loan, error) {
	if !isUUID(installmentID) {
		return model.Loan{}, valueobject.ErrNotFound
	}
	return r.findInSnapshot(ctx, `
		SELECT `+loanColumns+` FROM loans
		WHERE id = (SELECT loan_id FROM installments WHERE id = $1)`, installmentID)
}

func (r *LoanRepo) findInSnapshot(ctx context.Context, query string, args ...any) (model.Loan, error) {
	var loan model.Loan
	err := pgutil.WithTransactionOptions(ctx, r.pool, pgutil.SnapshotTxOptions, func(tx pgx.Tx) error {
		var err error
		loan, err = findLoan(ctx, tx, query, args...)
		return err
	})
	if err != nil {
		return model.Loan{}, err
	}
	return loan, nil
}

// SettleInstallment locks the owning loan row, applies settle to the loan
// as stored and writes back the one installment plus the loan status. The
// installment update is conditional on the row still being unpaid.
func (r *LoanRepo) SettleInstallment(ctx context.Context, installmentID string, settle func(model.Loan) (model.Loan, error)) (model.Loan, error) {
	if !isUUID(installmentID) {
		return model.Loan{}, valueobject.ErrNotFound
	}

	var next model.Loan
	err := pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		loan, err := findLoan(ctx, tx, `
			SELECT `+loanColumns+` FROM loans
			WHERE id = (SELECT loan_id FROM installments WHERE id = $1)
			FOR UPDATE`, installmentID)
		if err != nil {
			return err
		}

		next, err = settle(loan)
		if err != nil {
			return err
		}
		inst, ok := next.Installment(installmentID)
		if !ok || !inst.Paid() {
			return fmt.Errorf("settle installment %s: not settled", installmentID)
		}

		tag, err := tx.Exec(ctx, `
			UPDATE installments
			SET is_paid = TRUE, paid_date = $2, is_overdue = FALSE
			WHERE id = $1 AND NOT is_paid`,
			installmentID, inst.PaidDate(),
		)
		if err != nil {
			return fmt.Errorf("settle installment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return valueobject.ErrAlreadyPaid
		}

		if _, err := tx.Exec(ctx, `
			UPDATE loans SET status = $2, updated_at = $3, version = version + 1
			WHERE id = $1`,
			next.ID(), next.Status().String(), next.UpdatedAt(),
		); err != nil {
			return fmt.Errorf("update loan status: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Loan{}, err
	}
	return next, nil
}

// ListActive returns every Active loan, oldest first.
func (r *LoanRepo) ListActive(ctx context.Context) ([]model.Loan, error) {
	return listLoans(ctx, r.pool, `WHERE status = $1`, valueobject.LoanStatusActive.String())
}

// MaterializeOverdue copies the overdue predicate into is_overdue in a
// single statement. Only rows whose flag changes are touched, so a repeat
// run at the same instant reports 0.
func (r *LoanRepo) MaterializeOverdue(ctx context.Context, asOf time.Time) (int, error) {
	query := `
		UPDATE installments
		SET is_overdue = (NOT is_paid AND due_date < $1::date)
		WHERE is_overdue IS DISTINCT FROM (NOT is_paid AND due_date < $1::date)
	`
	tag, err := r.pool.Exec(ctx, query, model.StartOfDay(asOf))
	if err != nil {
		return 0, fmt.Errorf("materialize overdue: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

func findLoan(ctx context.Context, q pgutil.Querier, query string, args ...any) (model.Loan, error) {
	loan, err := scanLoanRow(q.QueryRow(ctx, query, args...))
	if err != nil {
		return model.Loan{}, err
	}
	installments, err := loadInstallments(ctx, q, []string{loan.ID()})
	if err != nil {
		return model.Loan{}, err
	}
	return withInstallments(loan, installments[loan.ID()]), nil
}

// listLoans loads loans matching where together with their installments
// in two round trips.
func listLoans(ctx context.Context, q pgutil.Querier, where string, args ...any) ([]model.Loan, error) {
	rows, err := q.Query(ctx, `SELECT `+loanColumns+` FROM loans `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var (
		loans []model.Loan
		ids   []string
	)
	for rows.Next() {
		loan, err := scanLoanRow(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
		ids = append(ids, loan.ID())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loans: %w", err)
	}
	if len(loans) == 0 {
		return nil, nil
	}

	installments, err := loadInstallments(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i, loan := range loans {
		loans[i] = withInstallments(loan, installments[loan.ID()])
	}
	return loans, nil
}

func scanLoanRow(s scannable) (model.Loan, error) {
	var (
		id, clientID, loanType, statusStr string
		principal, rate, installment      decimal.Decimal
		tenure, version                   int
		startDate, createdAt, updatedAt   time.Time
	)

	err := s.Scan(
		&id, &clientID, &principal, &loanType, &rate, &tenure,
		&installment, &startDate, &statusStr, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Loan{}, fmt.Errorf("scan loan: %w", notFound(err))
	}

	status, err := valueobject.NewLoanStatus(statusStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan status: %w", err)
	}
	lt, err := valueobject.ParseLoanType(loanType)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan type: %w", err)
	}

	return model.ReconstructLoan(id, clientID, model.LoanTerms{
		Principal:    principal,
		Type:         lt,
		AnnualRate:   rate,
		TenureMonths: tenure,
		StartDate:    asUTC(startDate),
	}, installment, status, nil, version, asUTC(createdAt), asUTC(updatedAt)), nil
}

func loadInstallments(ctx context.Context, q pgutil.Querier, loanIDs []string) (map[string][]model.Installment, error) {
	rows, err := q.Query(ctx, `
		SELECT `+installmentColumns+` FROM installments
		WHERE loan_id::text = ANY($1)
		ORDER BY loan_id, installment_number`, loanIDs)
	if err != nil {
		return nil, fmt.Errorf("query installments: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.Installment, len(loanIDs))
	for rows.Next() {
		var (
			id, loanID                  string
			number                      int
			amount, principal, interest decimal.Decimal
			dueDate                     time.Time
			paid, overdue               bool
			paidDate                    *time.Time
		)
		if err := rows.Scan(&id, &loanID, &number, &amount, &principal, &interest,
			&dueDate, &paid, &paidDate, &overdue); err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		out[loanID] = append(out[loanID], model.ReconstructInstallment(
			id, loanID, number, amount, principal, interest,
			asUTC(dueDate), paid, asUTCPtr(paidDate), overdue,
		))
	}
	return out, rows.Err()
}

func withInstallments(loan model.Loan, installments []model.Installment) model.Loan {
	return model.ReconstructLoan(
		loan.ID(), loan.ClientID(), loan.Terms(), loan.MonthlyInstallment(), loan.Status(),
		installments, loan.Version(), loan.CreatedAt(), loan.UpdatedAt(),
	)
}
