package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a disbursed loan.
type LoanStatus struct {
	value string
}

const (
	loanStatusActive    = "Active"
	loanStatusCompleted = "Completed"
	loanStatusDefaulted = "Defaulted"
)

var (
	LoanStatusActive    = LoanStatus{value: loanStatusActive}
	LoanStatusCompleted = LoanStatus{value: loanStatusCompleted}
	LoanStatusDefaulted = LoanStatus{value: loanStatusDefaulted}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusActive:    LoanStatusActive,
	loanStatusCompleted: LoanStatusCompleted,
	loanStatusDefaulted: LoanStatusDefaulted,
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, Invalid("invalid loan status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// IsTerminal reports whether no further transition is defined.
func (s LoanStatus) IsTerminal() bool {
	return s == LoanStatusCompleted || s == LoanStatusDefaulted
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Only Active loans move, and only forward.
func (s LoanStatus) CanTransitionTo(next LoanStatus) bool {
	return s == LoanStatusActive && next.IsTerminal()
}

// ---------------------------------------------------------------------------
// RiskTier – immutable value object
// ---------------------------------------------------------------------------

// RiskTier is the borrower classification derived from the risk score.
type RiskTier struct {
	value string
	rank  int
}

var (
	RiskTierLow    = RiskTier{value: "Low", rank: 1}
	RiskTierMedium = RiskTier{value: "Medium", rank: 2}
	RiskTierHigh   = RiskTier{value: "High", rank: 3}
)

var validRiskTiers = map[string]RiskTier{
	RiskTierLow.value:    RiskTierLow,
	RiskTierMedium.value: RiskTierMedium,
	RiskTierHigh.value:   RiskTierHigh,
}

// NewRiskTier creates a RiskTier from a raw string.
func NewRiskTier(s string) (RiskTier, error) {
	v, ok := validRiskTiers[s]
	if !ok {
		return RiskTier{}, fmt.Errorf("%w: invalid risk tier %q", ErrValidation, s)
	}
	return v, nil
}

func (t RiskTier) String() string { return t.value }

// IsZero returns true when not initialised.
func (t RiskTier) IsZero() bool { return t.value == "" }

// Rank orders tiers from least (1) to most (3) risky.
func (t RiskTier) Rank() int { return t.rank }
