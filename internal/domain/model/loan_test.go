package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

var originatedAt = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func testTerms() model.LoanTerms {
	return model.LoanTerms{
		Principal:    decimal.NewFromInt(120_000),
		Type:         valueobject.LoanTypeBusiness,
		AnnualRate:   decimal.NewFromInt(12),
		TenureMonths: 12,
		StartDate:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func newTestLoan(t *testing.T) model.Loan {
	t.Helper()
	loan, err := model.NewLoan("client-1", testTerms(), originatedAt)
	require.NoError(t, err)
	return loan
}

func TestLoan_Creation(t *testing.T) {
	loan := newTestLoan(t)

	assert.NotEmpty(t, loan.ID())
	assert.Equal(t, "client-1", loan.ClientID())
	assert.True(t, loan.Status().Equal(valueobject.LoanStatusActive))
	assert.Equal(t, "10661.85", loan.MonthlyInstallment().StringFixed(2))
	assert.Len(t, loan.Installments(), 12)
	assert.Equal(t, 0, loan.Version())
	assert.True(t, loan.IsNew())
	assert.Equal(t, 1, loan.Committed().Version())
	assert.Empty(t, loan.Committed().DomainEvents())
	assert.Len(t, loan.DomainEvents(), 1, "should have LoanOriginated event")
	assert.Equal(t, "mlms.loan.originated", loan.DomainEvents()[0].EventType())

	for i, inst := range loan.Installments() {
		assert.Equal(t, i+1, inst.Number())
		assert.Equal(t, loan.ID(), inst.LoanID())
		assert.False(t, inst.Paid())
		assert.Nil(t, inst.PaidDate())
	}
	assert.True(t, loan.TotalScheduled().Equal(loan.MonthlyInstallment().Mul(decimal.NewFromInt(12))))
}

func TestLoan_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.LoanTerms)
	}{
		{"zero principal", func(tm *model.LoanTerms) { tm.Principal = decimal.Zero }},
		{"negative principal", func(tm *model.LoanTerms) { tm.Principal = decimal.NewFromInt(-5) }},
		{"unknown type", func(tm *model.LoanTerms) { tm.Type = "Housing" }},
		{"negative rate", func(tm *model.LoanTerms) { tm.AnnualRate = decimal.NewFromInt(-1) }},
		{"rate above bound", func(tm *model.LoanTerms) { tm.AnnualRate = decimal.NewFromInt(61) }},
		{"zero tenure", func(tm *model.LoanTerms) { tm.TenureMonths = 0 }},
		{"tenure above bound", func(tm *model.LoanTerms) { tm.TenureMonths = 61 }},
		{"missing start date", func(tm *model.LoanTerms) { tm.StartDate = time.Time{} }},
		{"sub-cent principal", func(tm *model.LoanTerms) { tm.Principal = decimal.RequireFromString("100000.005") }},
		{"principal beyond storage", func(tm *model.LoanTerms) { tm.Principal = decimal.RequireFromString("1000000000000") }},
		{"rate with three decimals", func(tm *model.LoanTerms) { tm.AnnualRate = decimal.RequireFromString("12.345") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := testTerms()
			tt.mutate(&terms)
			_, err := model.NewLoan("client-1", terms, originatedAt)
			assert.ErrorIs(t, err, valueobject.ErrValidation)
		})
	}

	t.Run("missing client", func(t *testing.T) {
		_, err := model.NewLoan("", testTerms(), originatedAt)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})

	t.Run("trailing zeros are not extra precision", func(t *testing.T) {
		terms := testTerms()
		terms.Principal = decimal.RequireFromString("120000.500")
		terms.AnnualRate = decimal.RequireFromString("12.50")
		_, err := model.NewLoan("client-1", terms, originatedAt)
		assert.NoError(t, err)
	})
}

func TestLoan_MarkInstallmentPaid(t *testing.T) {
	loan := newTestLoan(t)
	first := loan.Installments()[0]
	paidAt := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)

	updated, err := loan.MarkInstallmentPaid(first.ID(), paidAt)
	require.NoError(t, err)

	inst, ok := updated.Installment(first.ID())
	require.True(t, ok)
	assert.True(t, inst.Paid())
	require.NotNil(t, inst.PaidDate())
	assert.Equal(t, paidAt, *inst.PaidDate())
	assert.Equal(t, 1, updated.PaidCount())
	assert.True(t, updated.Status().Equal(valueobject.LoanStatusActive))

	original, _ := loan.Installment(first.ID())
	assert.False(t, original.Paid(), "receiver must not be mutated")

	t.Run("second payment is rejected and keeps paid date", func(t *testing.T) {
		again, err := updated.MarkInstallmentPaid(first.ID(), paidAt.Add(48*time.Hour))
		assert.ErrorIs(t, err, valueobject.ErrAlreadyPaid)
		kept, _ := again.Installment(first.ID())
		assert.Equal(t, paidAt, *kept.PaidDate())
	})

	t.Run("unknown installment", func(t *testing.T) {
		_, err := updated.MarkInstallmentPaid("missing", paidAt)
		assert.ErrorIs(t, err, valueobject.ErrNotFound)
	})
}

func TestLoan_LastPaymentCompletesLoan(t *testing.T) {
	loan := newTestLoan(t)
	at := originatedAt.Add(24 * time.Hour)

	var err error
	for _, inst := range loan.Installments() {
		loan, err = loan.MarkInstallmentPaid(inst.ID(), at)
		require.NoError(t, err)
	}

	assert.True(t, loan.Status().Equal(valueobject.LoanStatusCompleted))
	events := loan.DomainEvents()
	assert.Equal(t, "mlms.loan.completed", events[len(events)-1].EventType())
	assert.True(t, loan.Outstanding().IsZero())
}

func TestLoan_MarkAllPaid(t *testing.T) {
	loan := newTestLoan(t)
	at := originatedAt.Add(time.Hour)

	partly, err := loan.MarkInstallmentPaid(loan.Installments()[0].ID(), at)
	require.NoError(t, err)

	settled, n, err := partly.MarkAllPaid(at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, 12, settled.PaidCount())
	assert.True(t, settled.Status().Equal(valueobject.LoanStatusCompleted))

	first, _ := settled.Installment(loan.Installments()[0].ID())
	assert.Equal(t, at, *first.PaidDate(), "earlier payment keeps its timestamp")

	t.Run("completed loan is a no-op", func(t *testing.T) {
		same, n, err := settled.MarkAllPaid(at.Add(2 * time.Hour))
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, settled.PaidCount(), same.PaidCount())
	})

	t.Run("defaulted loan is rejected", func(t *testing.T) {
		defaulted, err := loan.MarkDefaulted(decimal.NewFromInt(90), at)
		require.NoError(t, err)
		_, _, err = defaulted.MarkAllPaid(at)
		assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
	})
}

func TestLoan_InvalidTransitions(t *testing.T) {
	loan := newTestLoan(t)
	completed, _, err := loan.MarkAllPaid(originatedAt)
	require.NoError(t, err)

	_, err = completed.MarkDefaulted(decimal.NewFromInt(99), originatedAt)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
	assert.ErrorIs(t, err, valueobject.ErrValidation)
}

func TestLoan_ReviseTerms(t *testing.T) {
	loan := newTestLoan(t)
	at := originatedAt.Add(time.Hour)
	paid, err := loan.MarkInstallmentPaid(loan.Installments()[0].ID(), at)
	require.NoError(t, err)

	t.Run("type only keeps schedule", func(t *testing.T) {
		terms := testTerms()
		terms.Type = valueobject.LoanTypeEducation
		revised, rev, err := paid.ReviseTerms(terms, at)
		require.NoError(t, err)
		assert.False(t, rev.ScheduleRegenerated)
		assert.Equal(t, valueobject.LoanTypeEducation, revised.Type())
		assert.Equal(t, 1, revised.PaidCount())
		assert.Equal(t, paid.Installments()[0].ID(), revised.Installments()[0].ID())
	})

	t.Run("financial change regenerates and discards payments", func(t *testing.T) {
		terms := testTerms()
		terms.TenureMonths = 6
		revised, rev, err := paid.ReviseTerms(terms, at)
		require.NoError(t, err)
		assert.True(t, rev.ScheduleRegenerated)
		assert.Equal(t, 1, rev.DiscardedPaidInstallments)
		assert.Len(t, revised.Installments(), 6)
		assert.Zero(t, revised.PaidCount())
		assert.True(t, revised.MonthlyInstallment().Equal(
			model.MonthlyInstallment(terms.Principal, terms.AnnualRate, 6)))
		assert.Len(t, paid.Installments(), 12, "receiver must not be mutated")
	})

	t.Run("invalid terms leave loan unchanged", func(t *testing.T) {
		terms := testTerms()
		terms.AnnualRate = decimal.NewFromInt(75)
		same, _, err := paid.ReviseTerms(terms, at)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
		assert.Equal(t, paid.MonthlyInstallment(), same.MonthlyInstallment())
	})

	t.Run("completed loan cannot be rescheduled", func(t *testing.T) {
		completed, _, err := paid.MarkAllPaid(at)
		require.NoError(t, err)
		terms := testTerms()
		terms.Principal = decimal.NewFromInt(50_000)
		_, _, err = completed.ReviseTerms(terms, at)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
	})
}

func TestLoan_OverduePredicate(t *testing.T) {
	loan := newTestLoan(t)
	// First due date is 2025-02-15.
	onDueDay := time.Date(2025, 2, 15, 23, 0, 0, 0, time.UTC)
	dayAfter := time.Date(2025, 2, 16, 0, 0, 1, 0, time.UTC)

	assert.Zero(t, loan.OverdueCount(onDueDay), "not overdue on the due day itself")
	assert.Equal(t, 1, loan.OverdueCount(dayAfter))

	next, ok := loan.NextUnpaid(dayAfter)
	require.True(t, ok)
	assert.Equal(t, 2, next.Number())

	paid, err := loan.MarkInstallmentPaid(loan.Installments()[0].ID(), dayAfter)
	require.NoError(t, err)
	assert.Zero(t, paid.OverdueCount(dayAfter))
	assert.True(t, paid.HasOverdueHistory(dayAfter), "late payment counts as history")
}

func TestLoan_MaterializeOverdue(t *testing.T) {
	loan := newTestLoan(t)
	asOf := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)

	flagged, changed := loan.MaterializeOverdue(asOf)
	assert.Equal(t, 3, changed)
	assert.Equal(t, loan.Version(), flagged.Version())

	again, changed := flagged.MaterializeOverdue(asOf)
	assert.Zero(t, changed, "materializing twice is idempotent")
	for _, inst := range again.Installments() {
		assert.Equal(t, inst.IsOverdue(asOf), inst.OverdueFlag())
	}
}

func TestLoan_InstallmentsDefensiveCopy(t *testing.T) {
	loan := newTestLoan(t)
	a := loan.Installments()
	a[0] = model.Installment{}
	assert.NotEmpty(t, loan.Installments()[0].ID())
}
