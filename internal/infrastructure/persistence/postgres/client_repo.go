package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
	pgutil "github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/postgres"
)

const clientColumns = `
	id, name, national_id, phone, address,
	monthly_income, employment_status, existing_loans, credit_history,
	risk_score, risk_category, created_at, updated_at`

// ClientRepo implements port.ClientRepository.
type ClientRepo struct {
	pool *pgxpool.Pool
}

// NewClientRepo creates a new PostgreSQL-backed client repository.
func NewClientRepo(pool *pgxpool.Pool) *ClientRepo {
	return &ClientRepo{pool: pool}
}

// Save inserts or updates a client. A national ID held by another client is
// a validation error.
func (r *ClientRepo) Save(ctx context.Context, c model.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			name              = EXCLUDED.name,
			national_id       = EXCLUDED.national_id,
			phone             = EXCLUDED.phone,
			address           = EXCLUDED.address,
			monthly_income    = EXCLUDED.monthly_income,
			employment_status = EXCLUDED.employment_status,
			existing_loans    = EXCLUDED.existing_loans,
			credit_history    = EXCLUDED.credit_history,
			risk_score        = EXCLUDED.risk_score,
			risk_category     = EXCLUDED.risk_category,
			updated_at        = EXCLUDED.updated_at
	`
	p := c.Profile()
	_, err := r.pool.Exec(ctx, query,
		c.ID(), c.Name(), c.NationalID().String(), c.Phone(), c.Address(),
		p.MonthlyIncome, string(p.Employment), p.ExistingLoans, string(p.CreditHistory),
		c.RiskScore(), c.RiskTier().String(), c.CreatedAt(), c.UpdatedAt(),
	)
	if pgutil.IsUniqueViolation(err, "clients_national_id_key") {
		return valueobject.Invalid("national identity number %s is already registered", c.NationalID())
	}
	if err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	return nil
}

// FindByID retrieves a client by ID.
func (r *ClientRepo) FindByID(ctx context.Context, id string) (model.Client, error) {
	if !isUUID(id) {
		return model.Client{}, valueobject.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	return scanClient(row)
}

// FindByNationalID retrieves a client by national identity number.
func (r *ClientRepo) FindByNationalID(ctx context.Context, nationalID string) (model.Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE national_id = $1`, nationalID)
	return scanClient(row)
}

func listClients(ctx context.Context, q pgutil.Querier) ([]model.Client, error) {
	rows, err := q.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var out []model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanClient(s scannable) (model.Client, error) {
	var (
		id, name, nationalID, phone, address string
		income, score                        decimal.Decimal
		employment, history, tierStr         string
		existing                             int
		createdAt, updatedAt                 time.Time
	)
	err := s.Scan(
		&id, &name, &nationalID, &phone, &address,
		&income, &employment, &existing, &history,
		&score, &tierStr, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Client{}, fmt.Errorf("scan client: %w", notFound(err))
	}

	nid, err := valueobject.NewNationalID(nationalID)
	if err != nil {
		return model.Client{}, fmt.Errorf("parse national id: %w", err)
	}
	tier, err := valueobject.NewRiskTier(tierStr)
	if err != nil {
		return model.Client{}, fmt.Errorf("parse risk category: %w", err)
	}

	return model.ReconstructClient(id, model.ClientDetails{
		Name:       name,
		NationalID: nid,
		Phone:      phone,
		Address:    address,
		Profile: model.BorrowerProfile{
			MonthlyIncome: income,
			Employment:    valueobject.EmploymentStatus(employment),
			ExistingLoans: existing,
			CreditHistory: valueobject.CreditHistory(history),
		},
	}, model.RiskAssessment{Score: score, Tier: tier}, asUTC(createdAt), asUTC(updatedAt)), nil
}
