package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/event"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

// BorrowerProfile is the subset of client attributes the risk score is
// computed from.
type BorrowerProfile struct {
	MonthlyIncome decimal.Decimal
	Employment    valueobject.EmploymentStatus
	ExistingLoans int
	CreditHistory valueobject.CreditHistory
}

// Validate rejects out-of-range profile inputs.
func (p BorrowerProfile) Validate() error {
	if p.MonthlyIncome.IsNegative() {
		return valueobject.Invalid("monthly income must not be negative")
	}
	if p.MonthlyIncome.GreaterThan(MaxAmount) {
		return valueobject.Invalid("monthly income must not exceed %s", MaxAmount)
	}
	if exceedsScale(p.MonthlyIncome) {
		return valueobject.Invalid("monthly income must have at most %d decimal places", amountScale)
	}
	if _, err := valueobject.ParseEmploymentStatus(string(p.Employment)); err != nil {
		return err
	}
	if p.ExistingLoans < 0 {
		return valueobject.Invalid("existing loans must not be negative")
	}
	if _, err := valueobject.ParseCreditHistory(string(p.CreditHistory)); err != nil {
		return err
	}
	return nil
}

// RiskAssessment is a computed score and the tier it falls into.
type RiskAssessment struct {
	Score decimal.Decimal
	Tier  valueobject.RiskTier
}

// RiskAssessor computes a RiskAssessment from a profile.
type RiskAssessor interface {
	Assess(p BorrowerProfile) RiskAssessment
}

// ClientDetails are the caller-supplied fields of a client.
type ClientDetails struct {
	Name       string
	NationalID valueobject.NationalID
	Phone      string
	Address    string
	Profile    BorrowerProfile
}

func (d ClientDetails) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return valueobject.Invalid("name is required")
	}
	if d.NationalID.IsZero() {
		return valueobject.Invalid("national identity number is required")
	}
	return d.Profile.Validate()
}

// ClientPatch carries a partial update; nil fields are left unchanged.
type ClientPatch struct {
	Name          *string
	NationalID    *valueobject.NationalID
	Phone         *string
	Address       *string
	MonthlyIncome *decimal.Decimal
	Employment    *valueobject.EmploymentStatus
	ExistingLoans *int
	CreditHistory *valueobject.CreditHistory
}

// ---------------------------------------------------------------------------
// Client aggregate root
// ---------------------------------------------------------------------------

// Client is an immutable borrower aggregate. The risk fields are only ever
// produced by a RiskAssessor over the current profile.
type Client struct {
	id           string
	details      ClientDetails
	risk         RiskAssessment
	createdAt    time.Time
	updatedAt    time.Time
	domainEvents []event.DomainEvent
}

// NewClient validates details and scores the new borrower.
func NewClient(details ClientDetails, assessor RiskAssessor, now time.Time) (Client, error) {
	details.Name = strings.TrimSpace(details.Name)
	if err := details.validate(); err != nil {
		return Client{}, err
	}

	c := Client{
		id:        uuid.New().String(),
		details:   details,
		risk:      assessor.Assess(details.Profile),
		createdAt: now,
		updatedAt: now,
	}
	c.domainEvents = append(c.domainEvents,
		event.NewClientOnboarded(c.id, c.risk.Score, c.risk.Tier.String(), now))
	return c, nil
}

// ReconstructClient rebuilds a Client from persistence.
func ReconstructClient(id string, details ClientDetails, risk RiskAssessment, createdAt, updatedAt time.Time) Client {
	return Client{
		id:        id,
		details:   details,
		risk:      risk,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Update applies patch and always rescores, even when no profile field
// changed.
func (c Client) Update(patch ClientPatch, assessor RiskAssessor, now time.Time) (Client, error) {
	d := c.details
	if patch.Name != nil {
		d.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.NationalID != nil {
		d.NationalID = *patch.NationalID
	}
	if patch.Phone != nil {
		d.Phone = *patch.Phone
	}
	if patch.Address != nil {
		d.Address = *patch.Address
	}
	if patch.MonthlyIncome != nil {
		d.Profile.MonthlyIncome = *patch.MonthlyIncome
	}
	if patch.Employment != nil {
		d.Profile.Employment = *patch.Employment
	}
	if patch.ExistingLoans != nil {
		d.Profile.ExistingLoans = *patch.ExistingLoans
	}
	if patch.CreditHistory != nil {
		d.Profile.CreditHistory = *patch.CreditHistory
	}
	if err := d.validate(); err != nil {
		return c, err
	}

	next := c
	next.details = d
	next.risk = assessor.Assess(d.Profile)
	next.updatedAt = now
	next.domainEvents = append(append([]event.DomainEvent(nil), c.domainEvents...),
		event.NewClientRescored(c.id, c.risk.Tier.String(), next.risk.Score, next.risk.Tier.String(), now))
	return next, nil
}

// ---- Accessors ----

func (c Client) ID() string                         { return c.id }
func (c Client) Name() string                       { return c.details.Name }
func (c Client) NationalID() valueobject.NationalID { return c.details.NationalID }
func (c Client) Phone() string                      { return c.details.Phone }
func (c Client) Address() string                    { return c.details.Address }
func (c Client) Profile() BorrowerProfile           { return c.details.Profile }
func (c Client) Details() ClientDetails             { return c.details }
func (c Client) Risk() RiskAssessment               { return c.risk }
func (c Client) RiskScore() decimal.Decimal         { return c.risk.Score }
func (c Client) RiskTier() valueobject.RiskTier     { return c.risk.Tier }
func (c Client) CreatedAt() time.Time               { return c.createdAt }
func (c Client) UpdatedAt() time.Time               { return c.updatedAt }

// DomainEvents returns the events recorded since the aggregate was loaded.
func (c Client) DomainEvents() []event.DomainEvent {
	out := make([]event.DomainEvent, len(c.domainEvents))
	copy(out, c.domainEvents)
	return out
}
