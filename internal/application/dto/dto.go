package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Date is a calendar date carried as YYYY-MM-DD on the wire.
type Date struct {
	time.Time
}

// NewDate truncates t to its UTC calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

// UnmarshalJSON accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		*d = NewDate(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	*d = NewDate(t)
	return nil
}

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// OnboardClientRequest carries the data needed to register a borrower.
type OnboardClientRequest struct {
	Name             string          `json:"name"`
	NationalID       string          `json:"national_id"`
	Phone            string          `json:"phone"`
	Address          string          `json:"address"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
	EmploymentStatus string          `json:"employment_status"`
	ExistingLoans    int             `json:"existing_loans"`
	CreditHistory    string          `json:"credit_history"`
}

// UpdateClientRequest is a partial update; absent fields stay unchanged.
type UpdateClientRequest struct {
	ClientID         string           `json:"-"`
	Name             *string          `json:"name,omitempty"`
	NationalID       *string          `json:"national_id,omitempty"`
	Phone            *string          `json:"phone,omitempty"`
	Address          *string          `json:"address,omitempty"`
	MonthlyIncome    *decimal.Decimal `json:"monthly_income,omitempty"`
	EmploymentStatus *string          `json:"employment_status,omitempty"`
	ExistingLoans    *int             `json:"existing_loans,omitempty"`
	CreditHistory    *string          `json:"credit_history,omitempty"`
}

// SuggestLoanRequest asks the advisor for terms on a requested amount.
type SuggestLoanRequest struct {
	ClientID   string          `json:"client_id"`
	LoanAmount decimal.Decimal `json:"loan_amount"`
}

// CreateLoanRequest carries accepted terms for a new loan.
type CreateLoanRequest struct {
	ClientID       string          `json:"client_id"`
	LoanAmount     decimal.Decimal `json:"loan_amount"`
	LoanType       string          `json:"loan_type"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	DurationMonths int             `json:"duration_months"`
	StartDate      Date            `json:"start_date"`
}

// UpdateLoanRequest is a partial update of a loan's terms.
type UpdateLoanRequest struct {
	LoanID         string           `json:"-"`
	LoanAmount     *decimal.Decimal `json:"loan_amount,omitempty"`
	LoanType       *string          `json:"loan_type,omitempty"`
	InterestRate   *decimal.Decimal `json:"interest_rate,omitempty"`
	DurationMonths *int             `json:"duration_months,omitempty"`
	StartDate      *Date            `json:"start_date,omitempty"`
}

// LoanRequest identifies a loan.
type LoanRequest struct {
	LoanID string `json:"loan_id"`
}

// InstallmentRequest identifies an installment.
type InstallmentRequest struct {
	InstallmentID string `json:"installment_id"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// ClientResponse is the external representation of a borrower.
type ClientResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	NationalID       string          `json:"national_id"`
	Phone            string          `json:"phone"`
	Address          string          `json:"address"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
	EmploymentStatus string          `json:"employment_status"`
	ExistingLoans    int             `json:"existing_loans"`
	CreditHistory    string          `json:"credit_history"`
	RiskScore        decimal.Decimal `json:"risk_score"`
	RiskCategory     string          `json:"risk_category"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LoanSuggestionResponse is the advisor's recommendation.
type LoanSuggestionResponse struct {
	ClientID               string           `json:"client_id"`
	RiskScore              decimal.Decimal  `json:"risk_score"`
	RiskCategory           string           `json:"risk_category"`
	RequestedAmount        decimal.Decimal  `json:"requested_amount"`
	RecommendedRate        decimal.Decimal  `json:"recommended_interest_rate"`
	RecommendedTenure      int              `json:"recommended_duration_months"`
	RecommendedInstallment decimal.Decimal  `json:"recommended_monthly_installment"`
	DebtServiceRatio       *decimal.Decimal `json:"debt_service_ratio"`
	LoanToIncome           *decimal.Decimal `json:"loan_to_income_ratio"`
	StressRate             decimal.Decimal  `json:"stress_test_rate"`
	StressInstallment      decimal.Decimal  `json:"stress_test_installment"`
	MaxExposure            decimal.Decimal  `json:"max_suggested_exposure"`
	Insights               []string         `json:"insights"`
	Approval               string           `json:"approval_recommendation"`
}

// InstallmentResponse is one row of a repayment schedule.
type InstallmentResponse struct {
	ID                string          `json:"id"`
	LoanID            string          `json:"loan_id"`
	InstallmentNumber int             `json:"installment_number"`
	Amount            decimal.Decimal `json:"amount"`
	Principal         decimal.Decimal `json:"principal"`
	Interest          decimal.Decimal `json:"interest"`
	DueDate           Date            `json:"due_date"`
	IsPaid            bool            `json:"is_paid"`
	PaidDate          *time.Time      `json:"paid_date"`
	IsOverdue         bool            `json:"is_overdue"`
}

// LoanResponse is the external representation of a loan.
type LoanResponse struct {
	ID                 string          `json:"id"`
	ClientID           string          `json:"client_id"`
	LoanAmount         decimal.Decimal `json:"loan_amount"`
	LoanType           string          `json:"loan_type"`
	InterestRate       decimal.Decimal `json:"interest_rate"`
	DurationMonths     int             `json:"duration_months"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	StartDate          Date            `json:"start_date"`
	Status             string          `json:"status"`
	TotalRepayment     decimal.Decimal `json:"total_repayment"`
	Outstanding        decimal.Decimal `json:"outstanding"`
	Version            int             `json:"version"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// CreateLoanResponse returns the new loan with its schedule.
type CreateLoanResponse struct {
	Loan         LoanResponse          `json:"loan"`
	Installments []InstallmentResponse `json:"installments"`
}

// UpdateLoanResponse reports the effect of a loan update on its schedule.
type UpdateLoanResponse struct {
	Loan                      LoanResponse          `json:"loan"`
	ScheduleRegenerated       bool                  `json:"schedule_regenerated"`
	DiscardedPaidInstallments int                   `json:"discarded_paid_installments"`
	Installments              []InstallmentResponse `json:"installments,omitempty"`
}

// InstallmentsResponse lists a loan's schedule.
type InstallmentsResponse struct {
	LoanID       string                `json:"loan_id"`
	Installments []InstallmentResponse `json:"installments"`
}

// MarkPaidResponse reports a single settlement.
type MarkPaidResponse struct {
	Installment   InstallmentResponse `json:"installment"`
	LoanStatus    string              `json:"loan_status"`
	LoanCompleted bool                `json:"loan_completed"`
}

// MarkAllPaidResponse reports a bulk settlement.
type MarkAllPaidResponse struct {
	LoanID              string `json:"loan_id"`
	InstallmentsSettled int    `json:"installments_settled"`
	LoanStatus          string `json:"loan_status"`
}

// RefreshOverdueResponse reports a materialization run.
type RefreshOverdueResponse struct {
	UpdatedCount int       `json:"updated_count"`
	AsOf         time.Time `json:"as_of"`
}

// AlertResponse is one fired alert.
type AlertResponse struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

// LoanAlertsResponse is the alert evaluation of one loan.
type LoanAlertsResponse struct {
	LoanID              string          `json:"loan_id"`
	LoanStatus          string          `json:"loan_status"`
	RiskCategory        string          `json:"risk_category"`
	DefaultProbability  decimal.Decimal `json:"default_probability"`
	OverdueInstallments int             `json:"overdue_installments"`
	TotalInstallments   int             `json:"total_installments"`
	Alerts              []AlertResponse `json:"alerts"`
}

// PortfolioAlertResponse is one triage row.
type PortfolioAlertResponse struct {
	LoanID             string          `json:"loan_id"`
	ClientID           string          `json:"client_id"`
	ClientName         string          `json:"client_name"`
	OverdueCount       int             `json:"overdue_count"`
	LoanAmount         decimal.Decimal `json:"loan_amount"`
	Exposure           decimal.Decimal `json:"exposure"`
	RiskCategory       string          `json:"risk_category"`
	HighestSeverity    string          `json:"highest_severity"`
	DefaultProbability decimal.Decimal `json:"default_probability"`
	AlertCount         int             `json:"alert_count"`
}

// ListAlertsResponse is the collections triage list.
type ListAlertsResponse struct {
	Alerts []PortfolioAlertResponse `json:"alerts"`
	Total  int                      `json:"total"`
}

// YearStatsResponse restricts money totals to one calendar year.
type YearStatsResponse struct {
	Year           int             `json:"year"`
	Disbursed      decimal.Decimal `json:"disbursed"`
	Expected       decimal.Decimal `json:"expected"`
	Collected      decimal.Decimal `json:"collected"`
	CollectionRate decimal.Decimal `json:"collection_rate"`
}

// DashboardStatsResponse is the portfolio rollup.
type DashboardStatsResponse struct {
	TotalClients        int               `json:"total_clients"`
	RiskDistribution    map[string]int    `json:"risk_distribution"`
	TotalLoans          int               `json:"total_loans"`
	StatusDistribution  map[string]int    `json:"status_distribution"`
	TypeDistribution    map[string]int    `json:"type_distribution"`
	TotalDisbursed      decimal.Decimal   `json:"total_disbursed"`
	TotalExpected       decimal.Decimal   `json:"total_expected"`
	TotalCollected      decimal.Decimal   `json:"total_collected"`
	Outstanding         decimal.Decimal   `json:"outstanding"`
	CollectionRate      decimal.Decimal   `json:"collection_rate"`
	CurrentYear         YearStatsResponse `json:"current_year"`
	PreviousYear        YearStatsResponse `json:"previous_year"`
	DisbursedGrowth     *decimal.Decimal  `json:"disbursed_growth"`
	CollectedGrowth     *decimal.Decimal  `json:"collected_growth"`
	OverdueInstallments int               `json:"overdue_installments"`
	AsOf                time.Time         `json:"as_of"`
}

// EvaluateDefaultResponse reports the default decision for one loan.
type EvaluateDefaultResponse struct {
	LoanID              string          `json:"loan_id"`
	DefaultProbability  decimal.Decimal `json:"default_probability"`
	OverdueInstallments int             `json:"overdue_installments"`
	Defaulted           bool            `json:"defaulted"`
	LoanStatus          string          `json:"loan_status"`
}

// SweepDefaultsResponse summarises a default sweep.
type SweepDefaultsResponse struct {
	Evaluated int      `json:"evaluated"`
	Defaulted []string `json:"defaulted"`
}
