package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// Event types published on the lending topic.
const (
	EventTypeClientOnboarded = "mlms.client.onboarded"
	EventTypeClientRescored  = "mlms.client.rescored"
	EventTypeLoanOriginated  = "mlms.loan.originated"
	EventTypeLoanRescheduled = "mlms.loan.rescheduled"
	EventTypeInstallmentPaid = "mlms.installment.paid"
	EventTypeLoanCompleted   = "mlms.loan.completed"
	EventTypeLoanDefaulted   = "mlms.loan.defaulted"
)

const (
	aggregateClient = "Client"
	aggregateLoan   = "Loan"
)

// ---------------------------------------------------------------------------
// Client Events
// ---------------------------------------------------------------------------

// ClientOnboarded is raised when a borrower is registered and first scored.
type ClientOnboarded struct {
	events.BaseEvent
	RiskScore decimal.Decimal `json:"risk_score"`
	RiskLevel string          `json:"risk_level"`
}

func NewClientOnboarded(clientID string, score decimal.Decimal, tier string, at time.Time) ClientOnboarded {
	return ClientOnboarded{
		BaseEvent: events.NewBaseEvent(EventTypeClientOnboarded, clientID, aggregateClient, at),
		RiskScore: score,
		RiskLevel: tier,
	}
}

// ClientRescored is raised whenever an update recomputes the risk profile.
type ClientRescored struct {
	events.BaseEvent
	PreviousLevel string          `json:"previous_level"`
	RiskScore     decimal.Decimal `json:"risk_score"`
	RiskLevel     string          `json:"risk_level"`
}

func NewClientRescored(clientID, previous string, score decimal.Decimal, tier string, at time.Time) ClientRescored {
	return ClientRescored{
		BaseEvent:     events.NewBaseEvent(EventTypeClientRescored, clientID, aggregateClient, at),
		PreviousLevel: previous,
		RiskScore:     score,
		RiskLevel:     tier,
	}
}

// ---------------------------------------------------------------------------
// Loan Events
// ---------------------------------------------------------------------------

// LoanOriginated is raised when a loan and its schedule are created.
type LoanOriginated struct {
	events.BaseEvent
	ClientID           string          `json:"client_id"`
	Principal          decimal.Decimal `json:"principal"`
	InterestRate       decimal.Decimal `json:"interest_rate"`
	TenureMonths       int             `json:"tenure_months"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
}

func NewLoanOriginated(
	loanID, clientID string,
	principal, rate decimal.Decimal, tenure int,
	installment decimal.Decimal, at time.Time,
) LoanOriginated {
	return LoanOriginated{
		BaseEvent:          events.NewBaseEvent(EventTypeLoanOriginated, loanID, aggregateLoan, at),
		ClientID:           clientID,
		Principal:          principal,
		InterestRate:       rate,
		TenureMonths:       tenure,
		MonthlyInstallment: installment,
	}
}

// LoanRescheduled is raised when an edit regenerates the schedule. Paid
// state of the replaced installments is lost.
type LoanRescheduled struct {
	events.BaseEvent
	MonthlyInstallment        decimal.Decimal `json:"monthly_installment"`
	TenureMonths              int             `json:"tenure_months"`
	DiscardedPaidInstallments int             `json:"discarded_paid_installments"`
}

func NewLoanRescheduled(loanID string, installment decimal.Decimal, tenure, discarded int, at time.Time) LoanRescheduled {
	return LoanRescheduled{
		BaseEvent:                 events.NewBaseEvent(EventTypeLoanRescheduled, loanID, aggregateLoan, at),
		MonthlyInstallment:        installment,
		TenureMonths:              tenure,
		DiscardedPaidInstallments: discarded,
	}
}

// InstallmentPaid is raised for every installment settlement.
type InstallmentPaid struct {
	events.BaseEvent
	InstallmentID string          `json:"installment_id"`
	Number        int             `json:"installment_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaidDate      time.Time       `json:"paid_date"`
}

func NewInstallmentPaid(loanID, installmentID string, number int, amount decimal.Decimal, at time.Time) InstallmentPaid {
	return InstallmentPaid{
		BaseEvent:     events.NewBaseEvent(EventTypeInstallmentPaid, loanID, aggregateLoan, at),
		InstallmentID: installmentID,
		Number:        number,
		Amount:        amount,
		PaidDate:      at,
	}
}

// LoanCompleted is raised when the last unpaid installment is settled.
type LoanCompleted struct {
	events.BaseEvent
	TotalRepaid decimal.Decimal `json:"total_repaid"`
}

func NewLoanCompleted(loanID string, totalRepaid decimal.Decimal, at time.Time) LoanCompleted {
	return LoanCompleted{
		BaseEvent:   events.NewBaseEvent(EventTypeLoanCompleted, loanID, aggregateLoan, at),
		TotalRepaid: totalRepaid,
	}
}

// LoanDefaulted is raised when the default policy classifies a loan as lost.
type LoanDefaulted struct {
	events.BaseEvent
	OverdueInstallments int             `json:"overdue_installments"`
	DefaultProbability  decimal.Decimal `json:"default_probability"`
	Outstanding         decimal.Decimal `json:"outstanding"`
}

func NewLoanDefaulted(loanID string, overdue int, probability, outstanding decimal.Decimal, at time.Time) LoanDefaulted {
	return LoanDefaulted{
		BaseEvent:           events.NewBaseEvent(EventTypeLoanDefaulted, loanID, aggregateLoan, at),
		OverdueInstallments: overdue,
		DefaultProbability:  probability,
		Outstanding:         outstanding,
	}
}
