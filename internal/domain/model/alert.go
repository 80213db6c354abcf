package model

import "github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"

// AlertType categorises a collections concern.
type AlertType string

const (
	AlertOverdueInstallments AlertType = "overdue_installments"
	AlertHighRiskBorrower    AlertType = "high_risk_borrower"
	AlertApproachingDeadline AlertType = "approaching_deadline"
	AlertRepaymentPattern    AlertType = "poor_repayment_pattern"
)

var recommendations = map[AlertType]string{
	AlertOverdueInstallments: "Contact the borrower and agree a date to clear the missed installments.",
	AlertHighRiskBorrower:    "Escalate to collections and review the loan for restructuring.",
	AlertApproachingDeadline: "Send a payment reminder before the due date.",
	AlertRepaymentPattern:    "Assess the borrower's cash flow and consider restructuring the loan.",
}

// Alert is a computed, unpersisted collections warning.
type Alert struct {
	Type           AlertType
	Severity       valueobject.Severity
	Message        string
	Recommendation string
}

// NewAlert builds an alert carrying the fixed recommendation for its type.
func NewAlert(t AlertType, severity valueobject.Severity, message string) Alert {
	return Alert{
		Type:           t,
		Severity:       severity,
		Message:        message,
		Recommendation: recommendations[t],
	}
}
