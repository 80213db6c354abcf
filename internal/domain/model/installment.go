package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Installment is one scheduled repayment of a loan. Scheduled -> Paid is the
// only transition; overdue is a predicate over (paid, dueDate, asOf).
type Installment struct {
	id          string
	loanID      string
	number      int
	amount      decimal.Decimal
	principal   decimal.Decimal
	interest    decimal.Decimal
	dueDate     time.Time
	paid        bool
	paidDate    *time.Time
	overdueFlag bool
}

func installmentsFromSchedule(loanID string, s Schedule) []Installment {
	out := make([]Installment, 0, len(s.Entries))
	for _, e := range s.Entries {
		out = append(out, Installment{
			id:        uuid.New().String(),
			loanID:    loanID,
			number:    e.Period,
			amount:    e.Amount,
			principal: e.Principal,
			interest:  e.Interest,
			dueDate:   e.DueDate,
		})
	}
	return out
}

// ReconstructInstallment rebuilds an Installment from persistence.
func ReconstructInstallment(
	id, loanID string,
	number int,
	amount, principal, interest decimal.Decimal,
	dueDate time.Time,
	paid bool,
	paidDate *time.Time,
	overdueFlag bool,
) Installment {
	return Installment{
		id:          id,
		loanID:      loanID,
		number:      number,
		amount:      amount,
		principal:   principal,
		interest:    interest,
		dueDate:     dueDate,
		paid:        paid,
		paidDate:    paidDate,
		overdueFlag: overdueFlag,
	}
}

// IsOverdue reports whether the installment is unpaid and its due date is
// strictly before the calendar day of asOf.
func (i Installment) IsOverdue(asOf time.Time) bool {
	return !i.paid && i.dueDate.Before(StartOfDay(asOf))
}

// IsDue reports whether the due date has been reached at asOf.
func (i Installment) IsDue(asOf time.Time) bool {
	return !i.dueDate.After(asOf)
}

// WasPaidLate reports whether the payment landed after the due day.
func (i Installment) WasPaidLate() bool {
	return i.paid && i.paidDate != nil && StartOfDay(*i.paidDate).After(StartOfDay(i.dueDate))
}

func (i Installment) markPaid(at time.Time) Installment {
	paidAt := at
	i.paid = true
	i.paidDate = &paidAt
	i.overdueFlag = false
	return i
}

// ---- Accessors ----

func (i Installment) ID() string                 { return i.id }
func (i Installment) LoanID() string             { return i.loanID }
func (i Installment) Number() int                { return i.number }
func (i Installment) Amount() decimal.Decimal    { return i.amount }
func (i Installment) Principal() decimal.Decimal { return i.principal }
func (i Installment) Interest() decimal.Decimal  { return i.interest }
func (i Installment) DueDate() time.Time         { return i.dueDate }
func (i Installment) Paid() bool                 { return i.paid }
func (i Installment) PaidDate() *time.Time       { return i.paidDate }

// OverdueFlag returns the last materialized snapshot of IsOverdue, which
// may be stale.
func (i Installment) OverdueFlag() bool { return i.overdueFlag }

// StartOfDay truncates t to midnight in UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
