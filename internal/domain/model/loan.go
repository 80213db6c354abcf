package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/event"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

// Bounds accepted for loan terms.
const (
	MinTenureMonths = 1
	MaxTenureMonths = 60
)

// MaxAnnualRate is the highest accepted annual interest rate, in percent.
var MaxAnnualRate = decimal.NewFromInt(60)

// MaxAmount is the largest amount a NUMERIC(14,2) column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// amountScale is the number of decimal places stored for amounts and rates.
const amountScale = 2

// exceedsScale reports whether d carries digits past amountScale, which
// storage would silently round away.
func exceedsScale(d decimal.Decimal) bool {
	return !d.Equal(d.Round(amountScale))
}

// LoanTerms are the caller-supplied terms a schedule is generated from.
type LoanTerms struct {
	Principal    decimal.Decimal
	Type         valueobject.LoanType
	AnnualRate   decimal.Decimal
	TenureMonths int
	StartDate    time.Time
}

// Validate checks every field before anything is mutated.
func (t LoanTerms) Validate() error {
	if !t.Principal.IsPositive() {
		return valueobject.Invalid("loan amount must be positive")
	}
	if t.Principal.GreaterThan(MaxAmount) {
		return valueobject.Invalid("loan amount must not exceed %s", MaxAmount)
	}
	if exceedsScale(t.Principal) {
		return valueobject.Invalid("loan amount must have at most %d decimal places", amountScale)
	}
	if _, err := valueobject.ParseLoanType(string(t.Type)); err != nil {
		return err
	}
	if t.AnnualRate.IsNegative() || t.AnnualRate.GreaterThan(MaxAnnualRate) {
		return valueobject.Invalid("interest rate must be between 0 and %s percent", MaxAnnualRate)
	}
	if exceedsScale(t.AnnualRate) {
		return valueobject.Invalid("interest rate must have at most %d decimal places", amountScale)
	}
	if t.TenureMonths < MinTenureMonths || t.TenureMonths > MaxTenureMonths {
		return valueobject.Invalid("duration must be between %d and %d months", MinTenureMonths, MaxTenureMonths)
	}
	if t.StartDate.IsZero() {
		return valueobject.Invalid("start date is required")
	}
	return nil
}

func (t LoanTerms) sameSchedule(o LoanTerms) bool {
	return t.Principal.Equal(o.Principal) &&
		t.AnnualRate.Equal(o.AnnualRate) &&
		t.TenureMonths == o.TenureMonths &&
		t.StartDate.Equal(o.StartDate)
}

// Revision reports the effect of ReviseTerms on the schedule.
type Revision struct {
	ScheduleRegenerated       bool
	DiscardedPaidInstallments int
}

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

// Loan is an immutable aggregate owning its installments. Mutations return
// a new copy; version is the persisted version the copy was loaded at, or 0
// for a loan that has never been saved.
type Loan struct {
	id                 string
	clientID           string
	terms              LoanTerms
	monthlyInstallment decimal.Decimal
	status             valueobject.LoanStatus
	installments       []Installment
	version            int
	createdAt          time.Time
	updatedAt          time.Time
	domainEvents       []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan originates an Active loan and generates its schedule.
func NewLoan(clientID string, terms LoanTerms, now time.Time) (Loan, error) {
	if clientID == "" {
		return Loan{}, valueobject.Invalid("client ID is required")
	}
	terms.StartDate = StartOfDay(terms.StartDate)
	if err := terms.Validate(); err != nil {
		return Loan{}, err
	}

	id := uuid.New().String()
	schedule := GenerateAmortizationSchedule(terms.Principal, terms.AnnualRate, terms.TenureMonths, terms.StartDate)

	loan := Loan{
		id:                 id,
		clientID:           clientID,
		terms:              terms,
		monthlyInstallment: schedule.MonthlyInstallment,
		status:             valueobject.LoanStatusActive,
		installments:       installmentsFromSchedule(id, schedule),
		version:            0,
		createdAt:          now,
		updatedAt:          now,
	}

	loan.domainEvents = append(loan.domainEvents, event.NewLoanOriginated(
		id, clientID, terms.Principal, terms.AnnualRate, terms.TenureMonths, schedule.MonthlyInstallment, now,
	))

	return loan, nil
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(
	id, clientID string,
	terms LoanTerms,
	monthlyInstallment decimal.Decimal,
	status valueobject.LoanStatus,
	installments []Installment,
	version int,
	createdAt, updatedAt time.Time,
) Loan {
	return Loan{
		id:                 id,
		clientID:           clientID,
		terms:              terms,
		monthlyInstallment: monthlyInstallment,
		status:             status,
		installments:       installments,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// ReviseTerms applies edited terms. A change to principal, rate, tenure or
// start date regenerates the whole schedule and discards every recorded
// payment; a change of type alone keeps the schedule.
func (l Loan) ReviseTerms(terms LoanTerms, now time.Time) (Loan, Revision, error) {
	terms.StartDate = StartOfDay(terms.StartDate)
	if err := terms.Validate(); err != nil {
		return l, Revision{}, err
	}

	next := l.clone()
	next.terms.Type = terms.Type
	next.updatedAt = now

	if l.terms.sameSchedule(terms) {
		return next, Revision{}, nil
	}
	if l.status.IsTerminal() {
		return l, Revision{}, valueobject.Invalid("cannot reschedule a %s loan", l.status)
	}

	rev := Revision{ScheduleRegenerated: true, DiscardedPaidInstallments: l.PaidCount()}
	schedule := GenerateAmortizationSchedule(terms.Principal, terms.AnnualRate, terms.TenureMonths, terms.StartDate)

	next.terms = terms
	next.monthlyInstallment = schedule.MonthlyInstallment
	next.installments = installmentsFromSchedule(l.id, schedule)
	next.domainEvents = append(next.domainEvents, event.NewLoanRescheduled(
		l.id, schedule.MonthlyInstallment, terms.TenureMonths, rev.DiscardedPaidInstallments, now,
	))
	return next, rev, nil
}

// MarkInstallmentPaid settles one installment. Settling the last unpaid
// installment of an Active loan completes it.
func (l Loan) MarkInstallmentPaid(installmentID string, now time.Time) (Loan, error) {
	idx := l.indexOf(installmentID)
	if idx < 0 {
		return l, valueobject.ErrNotFound
	}
	if l.installments[idx].paid {
		return l, valueobject.ErrAlreadyPaid
	}

	next := l.clone()
	paid := next.installments[idx].markPaid(now)
	next.installments[idx] = paid
	next.updatedAt = now
	next.domainEvents = append(next.domainEvents, event.NewInstallmentPaid(
		l.id, paid.id, paid.number, paid.amount, now,
	))

	if next.status == valueobject.LoanStatusActive && next.PaidCount() == len(next.installments) {
		next.status = valueobject.LoanStatusCompleted
		next.domainEvents = append(next.domainEvents, event.NewLoanCompleted(l.id, next.TotalPaid(), now))
	}
	return next, nil
}

// MarkAllPaid settles every unpaid installment and completes the loan. It
// returns the number of installments settled; a Completed loan is a no-op.
func (l Loan) MarkAllPaid(now time.Time) (Loan, int, error) {
	if l.status == valueobject.LoanStatusCompleted {
		return l, 0, nil
	}
	if !l.status.CanTransitionTo(valueobject.LoanStatusCompleted) {
		return l, 0, valueobject.ErrInvalidStatusTransition
	}

	next := l.clone()
	settled := 0
	for i, inst := range next.installments {
		if inst.paid {
			continue
		}
		next.installments[i] = inst.markPaid(now)
		settled++
		next.domainEvents = append(next.domainEvents, event.NewInstallmentPaid(
			l.id, inst.id, inst.number, inst.amount, now,
		))
	}

	next.status = valueobject.LoanStatusCompleted
	next.updatedAt = now
	next.domainEvents = append(next.domainEvents, event.NewLoanCompleted(l.id, next.TotalPaid(), now))
	return next, settled, nil
}

// MarkDefaulted transitions Active -> Defaulted.
func (l Loan) MarkDefaulted(probability decimal.Decimal, now time.Time) (Loan, error) {
	if !l.status.CanTransitionTo(valueobject.LoanStatusDefaulted) {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next := l.clone()
	next.status = valueobject.LoanStatusDefaulted
	next.updatedAt = now
	next.domainEvents = append(next.domainEvents, event.NewLoanDefaulted(
		l.id, l.OverdueCount(now), probability, l.Outstanding(), now,
	))
	return next, nil
}

// MaterializeOverdue copies IsOverdue(asOf) into each installment's stored
// flag and returns how many flags changed. It does not bump the version.
func (l Loan) MaterializeOverdue(asOf time.Time) (Loan, int) {
	next := l.clone()
	changed := 0
	for i, inst := range next.installments {
		if flag := inst.IsOverdue(asOf); flag != inst.overdueFlag {
			next.installments[i].overdueFlag = flag
			changed++
		}
	}
	return next, changed
}

// ---------------------------------------------------------------------------
// Ledger queries
// ---------------------------------------------------------------------------

// OverdueCount counts installments overdue at asOf.
func (l Loan) OverdueCount(asOf time.Time) int {
	n := 0
	for _, inst := range l.installments {
		if inst.IsOverdue(asOf) {
			n++
		}
	}
	return n
}

// DueCount counts installments whose due date has been reached at asOf.
func (l Loan) DueCount(asOf time.Time) int {
	n := 0
	for _, inst := range l.installments {
		if inst.IsDue(asOf) {
			n++
		}
	}
	return n
}

// PaidCount counts settled installments.
func (l Loan) PaidCount() int {
	n := 0
	for _, inst := range l.installments {
		if inst.paid {
			n++
		}
	}
	return n
}

// TotalScheduled sums every installment amount.
func (l Loan) TotalScheduled() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range l.installments {
		total = total.Add(inst.amount)
	}
	return total
}

// TotalPaid sums settled installment amounts.
func (l Loan) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range l.installments {
		if inst.paid {
			total = total.Add(inst.amount)
		}
	}
	return total
}

// Outstanding sums unpaid installment amounts.
func (l Loan) Outstanding() decimal.Decimal {
	return l.TotalScheduled().Sub(l.TotalPaid())
}

// NextUnpaid returns the earliest unpaid installment that is not yet
// overdue at asOf.
func (l Loan) NextUnpaid(asOf time.Time) (Installment, bool) {
	for _, inst := range l.installments {
		if !inst.paid && !inst.IsOverdue(asOf) {
			return inst, true
		}
	}
	return Installment{}, false
}

// HasOverdueHistory reports whether any installment is overdue now, was
// previously flagged overdue, or was paid after its due day.
func (l Loan) HasOverdueHistory(asOf time.Time) bool {
	for _, inst := range l.installments {
		if inst.IsOverdue(asOf) || inst.overdueFlag || inst.WasPaidLate() {
			return true
		}
	}
	return false
}

// Installment returns the installment with the given id.
func (l Loan) Installment(id string) (Installment, bool) {
	if idx := l.indexOf(id); idx >= 0 {
		return l.installments[idx], true
	}
	return Installment{}, false
}

// ---- Accessors ----

func (l Loan) ID() string                          { return l.id }
func (l Loan) ClientID() string                    { return l.clientID }
func (l Loan) Terms() LoanTerms                    { return l.terms }
func (l Loan) Principal() decimal.Decimal          { return l.terms.Principal }
func (l Loan) Type() valueobject.LoanType          { return l.terms.Type }
func (l Loan) AnnualRate() decimal.Decimal         { return l.terms.AnnualRate }
func (l Loan) TenureMonths() int                   { return l.terms.TenureMonths }
func (l Loan) StartDate() time.Time                { return l.terms.StartDate }
func (l Loan) MonthlyInstallment() decimal.Decimal { return l.monthlyInstallment }
func (l Loan) Status() valueobject.LoanStatus      { return l.status }
func (l Loan) Version() int                        { return l.version }
func (l Loan) IsNew() bool                         { return l.version == 0 }
func (l Loan) CreatedAt() time.Time                { return l.createdAt }
func (l Loan) UpdatedAt() time.Time                { return l.updatedAt }

// Installments returns a defensive copy ordered by number.
func (l Loan) Installments() []Installment {
	out := make([]Installment, len(l.installments))
	copy(out, l.installments)
	return out
}

// DomainEvents returns the events recorded since the aggregate was loaded.
func (l Loan) DomainEvents() []event.DomainEvent {
	out := make([]event.DomainEvent, len(l.domainEvents))
	copy(out, l.domainEvents)
	return out
}

// Committed returns the loan as stored after a successful versioned save:
// version advanced by one and pending events dropped.
func (l Loan) Committed() Loan {
	next := l.clone()
	next.version++
	next.domainEvents = nil
	return next
}

func (l Loan) indexOf(installmentID string) int {
	for i, inst := range l.installments {
		if inst.id == installmentID {
			return i
		}
	}
	return -1
}

// clone copies the slices so mutations never leak into the receiver.
func (l Loan) clone() Loan {
	next := l
	next.installments = l.Installments()
	next.domainEvents = l.DomainEvents()
	return next
}
