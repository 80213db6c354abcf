package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/service"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

func newClient(t *testing.T, nid string) model.Client {
	t.Helper()
	id, err := valueobject.NewNationalID(nid)
	require.NoError(t, err)
	c, err := model.NewClient(model.ClientDetails{
		Name:       "Sana Iqbal",
		NationalID: id,
		Phone:      "0321-5550000",
		Address:    "Karachi",
		Profile: model.BorrowerProfile{
			MonthlyIncome: decimal.NewFromInt(45_000),
			Employment:    valueobject.EmploymentSelfEmployed,
			CreditHistory: valueobject.CreditHistoryAverage,
		},
	}, service.NewRiskScorer(), time.Now().UTC())
	require.NoError(t, err)
	return c
}

func newLoan(t *testing.T, clientID string, start time.Time) model.Loan {
	t.Helper()
	l, err := model.NewLoan(clientID, model.LoanTerms{
		Principal:    decimal.NewFromInt(60_000),
		Type:         valueobject.LoanTypeAgriculture,
		AnnualRate:   decimal.NewFromInt(18),
		TenureMonths: 6,
		StartDate:    start,
	}, start)
	require.NoError(t, err)
	return l
}

func TestStore_Clients(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Clients()

	c := newClient(t, "42101-1111111-1")
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, c.Name(), got.Name())

	got, err = repo.FindByNationalID(ctx, "42101-1111111-1")
	require.NoError(t, err)
	assert.Equal(t, c.ID(), got.ID())

	_, err = repo.FindByID(ctx, "missing")
	require.ErrorIs(t, err, valueobject.ErrNotFound)

	dup := newClient(t, "42101-1111111-1")
	err = repo.Save(ctx, dup)
	require.ErrorIs(t, err, valueobject.ErrValidation)

	require.NoError(t, repo.Save(ctx, c), "re-saving the same client is an update")
}

func TestStore_LoanVersioning(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Loans()
	loan := newLoan(t, "client-1", time.Now().UTC())

	require.NoError(t, repo.Save(ctx, loan))
	require.ErrorIs(t, repo.Save(ctx, loan), port.ErrConcurrentModification, "double insert")

	stored, err := repo.FindByID(ctx, loan.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version())
	assert.Empty(t, stored.DomainEvents())

	paid, err := stored.MarkInstallmentPaid(stored.Installments()[0].ID(), time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, paid))

	// A writer still holding version 1 loses.
	stale, err := stored.MarkInstallmentPaid(stored.Installments()[1].ID(), time.Now().UTC())
	require.NoError(t, err)
	require.ErrorIs(t, repo.Save(ctx, stale), port.ErrConcurrentModification)

	current, err := repo.FindByInstallmentID(ctx, stored.Installments()[1].ID())
	require.NoError(t, err)
	assert.Equal(t, 2, current.Version())
	assert.Equal(t, 1, current.PaidCount())
}

func TestStore_RegenerationReindexesInstallments(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Loans()
	loan := newLoan(t, "client-1", time.Now().UTC())
	require.NoError(t, repo.Save(ctx, loan))
	stored, err := repo.FindByID(ctx, loan.ID())
	require.NoError(t, err)
	oldID := stored.Installments()[0].ID()

	terms := stored.Terms()
	terms.TenureMonths = 9
	revised, rev, err := stored.ReviseTerms(terms, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, rev.ScheduleRegenerated)
	require.NoError(t, repo.Save(ctx, revised))

	_, err = repo.FindByInstallmentID(ctx, oldID)
	require.ErrorIs(t, err, valueobject.ErrNotFound)
	got, err := repo.FindByInstallmentID(ctx, revised.Installments()[8].ID())
	require.NoError(t, err)
	assert.Len(t, got.Installments(), 9)
}

func TestStore_MaterializeOverdue(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Loans()
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := newLoan(t, "client-1", start)
	require.NoError(t, repo.Save(ctx, loan))

	asOf := time.Date(2025, 4, 20, 9, 0, 0, 0, time.UTC)
	n, err := repo.MaterializeOverdue(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = repo.MaterializeOverdue(ctx, asOf)
	require.NoError(t, err)
	assert.Zero(t, n, "second run at the same instant changes nothing")

	stored, err := repo.FindByID(ctx, loan.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version(), "materialization does not bump the version")
	assert.True(t, stored.Installments()[2].OverdueFlag())
	assert.False(t, stored.Installments()[3].OverdueFlag())
}

func TestStore_ListActiveAndSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	c := newClient(t, "42101-2222222-2")
	require.NoError(t, store.Clients().Save(ctx, c))

	active := newLoan(t, c.ID(), time.Now().UTC())
	done, _, err := newLoan(t, c.ID(), time.Now().UTC()).MarkAllPaid(time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, store.Loans().Save(ctx, active))
	require.NoError(t, store.Loans().Save(ctx, done))

	list, err := store.Loans().ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID(), list[0].ID())

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Clients, 1)
	assert.Len(t, snap.Loans, 2)
	assert.Contains(t, snap.ClientIndex(), c.ID())
}

func TestStore_ConcurrentSavesConflictOnVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Loans()
	loan := newLoan(t, "client-1", time.Now().UTC())
	require.NoError(t, repo.Save(ctx, loan))
	stored, err := repo.FindByID(ctx, loan.ID())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			next, err := stored.MarkInstallmentPaid(stored.Installments()[i].ID(), time.Now().UTC())
			if err != nil {
				results[i] = err
				return
			}
			results[i] = repo.Save(ctx, next)
		}(i)
	}
	wg.Wait()

	conflicts := 0
	for _, err := range results {
		if err != nil {
			require.ErrorIs(t, err, port.ErrConcurrentModification)
			conflicts++
		}
	}
	assert.Equal(t, 1, conflicts, "exactly one writer wins the version")
}

func TestStore_SettleInstallment(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Loans()
	loan := newLoan(t, "client-1", time.Now().UTC())
	require.NoError(t, repo.Save(ctx, loan))

	pay := func(id string) func(model.Loan) (model.Loan, error) {
		return func(l model.Loan) (model.Loan, error) { return l.MarkInstallmentPaid(id, time.Now().UTC()) }
	}

	t.Run("different installments of one loan all settle", func(t *testing.T) {
		var wg sync.WaitGroup
		results := make([]error, len(loan.Installments()))
		for i, inst := range loan.Installments() {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				_, results[i] = repo.SettleInstallment(ctx, id, pay(id))
			}(i, inst.ID())
		}
		wg.Wait()

		for _, err := range results {
			require.NoError(t, err)
		}
		stored, err := repo.FindByID(ctx, loan.ID())
		require.NoError(t, err)
		assert.Equal(t, 6, stored.PaidCount())
		assert.Equal(t, valueobject.LoanStatusCompleted, stored.Status())
		assert.Equal(t, 7, stored.Version())
	})

	t.Run("settled installment is already paid", func(t *testing.T) {
		id := loan.Installments()[0].ID()
		called := false
		_, err := repo.SettleInstallment(ctx, id, func(l model.Loan) (model.Loan, error) {
			called = true
			return l, nil
		})
		require.ErrorIs(t, err, valueobject.ErrAlreadyPaid)
		assert.False(t, called)
	})

	t.Run("unknown installment", func(t *testing.T) {
		_, err := repo.SettleInstallment(ctx, "missing", pay("missing"))
		require.ErrorIs(t, err, valueobject.ErrNotFound)
	})
}

func TestStore_LoanSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	c := newClient(t, "42101-3333333-3")
	require.NoError(t, store.Clients().Save(ctx, c))
	loan := newLoan(t, c.ID(), time.Now().UTC())
	require.NoError(t, store.Loans().Save(ctx, loan))

	snap, err := store.LoanSnapshot(ctx, loan.ID())
	require.NoError(t, err)
	assert.Equal(t, loan.ID(), snap.Loan.ID())
	assert.Equal(t, c.ID(), snap.Client.ID())
	assert.Equal(t, 1, snap.Loan.Version())

	_, err = store.LoanSnapshot(ctx, "missing")
	require.ErrorIs(t, err, valueobject.ErrNotFound)
}
