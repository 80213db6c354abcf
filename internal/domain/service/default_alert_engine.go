package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/money"
)

// AlertEvaluation is the engine's output for one loan.
type AlertEvaluation struct {
	LoanID              string
	DefaultProbability  decimal.Decimal
	OverdueInstallments int
	TotalInstallments   int
	Alerts              []model.Alert
}

// HighestSeverity returns the most urgent fired severity, or "" when no
// alert fired.
func (e AlertEvaluation) HighestSeverity() valueobject.Severity {
	if len(e.Alerts) == 0 {
		return ""
	}
	return e.Alerts[0].Severity
}

// PortfolioAlertRow is one line of the collections triage list.
type PortfolioAlertRow struct {
	LoanID             string
	ClientID           string
	ClientName         string
	OverdueCount       int
	Principal          decimal.Decimal
	Exposure           decimal.Decimal
	RiskTier           valueobject.RiskTier
	HighestSeverity    valueobject.Severity
	DefaultProbability decimal.Decimal
	AlertCount         int
}

// DefaultAlertEngine estimates default probability and raises collections
// alerts from a loan's ledger and its borrower's tier.
//
// Default probability (0-100) for an Active loan:
//
//	min(100, TierBase[tier] + OverdueWeight*overdue + ElapsedWeight*elapsed)
//
// where elapsed is the share of the tenure already due while the loan is
// not fully paid. Completed loans score 0 and Defaulted loans 100.
type DefaultAlertEngine struct {
	TierBase      map[valueobject.RiskTier]decimal.Decimal
	OverdueWeight decimal.Decimal
	ElapsedWeight decimal.Decimal

	// DeadlineWindow is how far ahead an upcoming due date triggers a
	// reminder for loans with a late history.
	DeadlineWindow time.Duration

	DefaultProbabilityThreshold decimal.Decimal
	DefaultOverdueThreshold     int
	PatternMinDue               int
}

// NewDefaultAlertEngine creates an engine with the standard policy.
func NewDefaultAlertEngine() *DefaultAlertEngine {
	return &DefaultAlertEngine{
		TierBase: map[valueobject.RiskTier]decimal.Decimal{
			valueobject.RiskTierLow:    decimal.NewFromInt(10),
			valueobject.RiskTierMedium: decimal.NewFromInt(25),
			valueobject.RiskTierHigh:   decimal.NewFromInt(40),
		},
		OverdueWeight:               decimal.NewFromInt(15),
		ElapsedWeight:               decimal.NewFromInt(20),
		DeadlineWindow:              7 * 24 * time.Hour,
		DefaultProbabilityThreshold: decimal.NewFromInt(85),
		DefaultOverdueThreshold:     3,
		PatternMinDue:               3,
	}
}

var hundredPercent = decimal.NewFromInt(100)

// Evaluate runs every alert rule independently and orders fired alerts by
// severity, most urgent first.
func (e *DefaultAlertEngine) Evaluate(loan model.Loan, tier valueobject.RiskTier, asOf time.Time) AlertEvaluation {
	overdue := loan.OverdueCount(asOf)
	eval := AlertEvaluation{
		LoanID:              loan.ID(),
		DefaultProbability:  e.probability(loan, tier, overdue, asOf),
		OverdueInstallments: overdue,
		TotalInstallments:   len(loan.Installments()),
	}
	if loan.Status() == valueobject.LoanStatusCompleted {
		return eval
	}

	var alerts []model.Alert

	// Rule 1: overdue installments.
	if overdue >= 1 {
		severity := valueobject.SeverityMedium
		if overdue >= 2 {
			severity = valueobject.SeverityHigh
		}
		alerts = append(alerts, model.NewAlert(model.AlertOverdueInstallments, severity,
			fmt.Sprintf("%d installment(s) overdue totalling %s.", overdue, overdueAmount(loan, asOf).StringFixed(2))))
	}

	// Rule 2: high-risk borrower falling behind.
	if tier == valueobject.RiskTierHigh && overdue >= 1 {
		alerts = append(alerts, model.NewAlert(model.AlertHighRiskBorrower, valueobject.SeverityHigh,
			fmt.Sprintf("High risk borrower has %d overdue installment(s).", overdue)))
	}

	// Rule 3: upcoming due date on a loan that has been late before.
	if next, ok := loan.NextUnpaid(asOf); ok && loan.HasOverdueHistory(asOf) {
		if until := next.DueDate().Sub(model.StartOfDay(asOf)); until >= 0 && until <= e.DeadlineWindow {
			alerts = append(alerts, model.NewAlert(model.AlertApproachingDeadline, valueobject.SeverityMedium,
				fmt.Sprintf("Installment #%d is due on %s and the loan has a history of late payment.",
					next.Number(), next.DueDate().Format(time.DateOnly))))
		}
	}

	// Rule 4: fewer than half of the due installments paid.
	if due, paid := dueAndPaid(loan, asOf); due >= e.PatternMinDue && paid*2 < due {
		alerts = append(alerts, model.NewAlert(model.AlertRepaymentPattern, valueobject.SeverityHigh,
			fmt.Sprintf("Only %d of %d due installments have been paid.", paid, due)))
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Weight() > alerts[j].Severity.Weight()
	})
	eval.Alerts = alerts
	return eval
}

// ShouldDefault applies the default transition policy to an evaluation.
func (e *DefaultAlertEngine) ShouldDefault(eval AlertEvaluation) bool {
	return eval.DefaultProbability.GreaterThanOrEqual(e.DefaultProbabilityThreshold) ||
		eval.OverdueInstallments >= e.DefaultOverdueThreshold
}

// Triage evaluates every non-completed loan and returns one row per loan
// with at least one alert, ordered by highest severity, default
// probability, overdue count and loan id.
func (e *DefaultAlertEngine) Triage(loans []model.Loan, clients map[string]model.Client, asOf time.Time) []PortfolioAlertRow {
	var rows []PortfolioAlertRow
	for _, loan := range loans {
		if loan.Status() == valueobject.LoanStatusCompleted {
			continue
		}
		client := clients[loan.ClientID()]
		eval := e.Evaluate(loan, client.RiskTier(), asOf)
		if len(eval.Alerts) == 0 {
			continue
		}
		rows = append(rows, PortfolioAlertRow{
			LoanID:             loan.ID(),
			ClientID:           loan.ClientID(),
			ClientName:         client.Name(),
			OverdueCount:       eval.OverdueInstallments,
			Principal:          loan.Principal(),
			Exposure:           loan.Outstanding(),
			RiskTier:           client.RiskTier(),
			HighestSeverity:    eval.HighestSeverity(),
			DefaultProbability: eval.DefaultProbability,
			AlertCount:         len(eval.Alerts),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if wa, wb := a.HighestSeverity.Weight(), b.HighestSeverity.Weight(); wa != wb {
			return wa > wb
		}
		if c := a.DefaultProbability.Cmp(b.DefaultProbability); c != 0 {
			return c > 0
		}
		if a.OverdueCount != b.OverdueCount {
			return a.OverdueCount > b.OverdueCount
		}
		return a.LoanID < b.LoanID
	})
	return rows
}

func (e *DefaultAlertEngine) probability(loan model.Loan, tier valueobject.RiskTier, overdue int, asOf time.Time) decimal.Decimal {
	switch loan.Status() {
	case valueobject.LoanStatusCompleted:
		return decimal.Zero
	case valueobject.LoanStatusDefaulted:
		return hundredPercent
	}

	p := e.TierBase[tier].Add(e.OverdueWeight.Mul(decimal.NewFromInt(int64(overdue))))
	if tenure := loan.TenureMonths(); tenure > 0 && loan.PaidCount() < len(loan.Installments()) {
		elapsed := decimal.NewFromInt(int64(loan.DueCount(asOf))).Div(decimal.NewFromInt(int64(tenure)))
		p = p.Add(e.ElapsedWeight.Mul(elapsed))
	}
	return money.Round(decimal.Min(p, hundredPercent))
}

func overdueAmount(loan model.Loan, asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range loan.Installments() {
		if inst.IsOverdue(asOf) {
			total = total.Add(inst.Amount())
		}
	}
	return total
}

func dueAndPaid(loan model.Loan, asOf time.Time) (due, paid int) {
	for _, inst := range loan.Installments() {
		if !inst.IsDue(asOf) {
			continue
		}
		due++
		if inst.Paid() {
			paid++
		}
	}
	return due, paid
}
