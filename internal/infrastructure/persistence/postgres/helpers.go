package postgres

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

// scannable is satisfied by pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// notFound maps pgx.ErrNoRows to the domain sentinel.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return valueobject.ErrNotFound
	}
	return err
}

// asUTC normalises timestamps read back from TIMESTAMPTZ and DATE columns.
func asUTC(t time.Time) time.Time {
	return t.UTC()
}

func asUTCPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// isUUID guards UUID columns: Postgres rejects malformed literals with an
// error, while callers expect not found.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
