package valueobject

// LoanType is the declared purpose of a loan.
type LoanType string

const (
	LoanTypeBusiness    LoanType = "Business"
	LoanTypePersonal    LoanType = "Personal"
	LoanTypeAgriculture LoanType = "Agriculture"
	LoanTypeEducation   LoanType = "Education"
)

// AllLoanTypes lists loan types in reporting order.
var AllLoanTypes = []LoanType{LoanTypeBusiness, LoanTypePersonal, LoanTypeAgriculture, LoanTypeEducation}

// ParseLoanType validates a raw loan type.
func ParseLoanType(s string) (LoanType, error) {
	for _, t := range AllLoanTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", Invalid("invalid loan type: %q", s)
}

// Severity grades how urgently an alert needs attention.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Weight orders severities, higher is more urgent.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// ApprovalRecommendation is the advisor's binary verdict.
type ApprovalRecommendation string

const (
	ApprovalApprove ApprovalRecommendation = "Approve"
	ApprovalReview  ApprovalRecommendation = "Review"
)
