package valueobject

import (
	"regexp"
	"strings"
)

// EmploymentStatus is the borrower's source-of-income category.
type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "Employed"
	EmploymentSelfEmployed EmploymentStatus = "Self-Employed"
	EmploymentUnemployed   EmploymentStatus = "Unemployed"
)

// ParseEmploymentStatus validates a raw employment status.
func ParseEmploymentStatus(s string) (EmploymentStatus, error) {
	switch e := EmploymentStatus(s); e {
	case EmploymentEmployed, EmploymentSelfEmployed, EmploymentUnemployed:
		return e, nil
	}
	return "", Invalid("invalid employment status: %q", s)
}

// CreditHistory is the borrower's historical repayment grade.
type CreditHistory string

const (
	CreditHistoryGood    CreditHistory = "Good"
	CreditHistoryAverage CreditHistory = "Average"
	CreditHistoryPoor    CreditHistory = "Poor"
)

// ParseCreditHistory validates a raw credit history grade.
func ParseCreditHistory(s string) (CreditHistory, error) {
	switch c := CreditHistory(s); c {
	case CreditHistoryGood, CreditHistoryAverage, CreditHistoryPoor:
		return c, nil
	}
	return "", Invalid("invalid credit history: %q", s)
}

var nationalIDPattern = regexp.MustCompile(`^\d{5}-\d{7}-\d$`)

// NationalID is a national identity number in the 5-7-1 digit layout,
// e.g. 35202-1234567-1.
type NationalID struct {
	value string
}

// NewNationalID validates and wraps a national identity number.
func NewNationalID(s string) (NationalID, error) {
	s = strings.TrimSpace(s)
	if !nationalIDPattern.MatchString(s) {
		return NationalID{}, Invalid("national identity number %q must match 12345-1234567-1", s)
	}
	return NationalID{value: s}, nil
}

func (n NationalID) String() string { return n.value }

// IsZero returns true when not initialised.
func (n NationalID) IsZero() bool { return n.value == "" }

// Equal compares two national IDs.
func (n NationalID) Equal(other NationalID) bool { return n.value == other.value }
