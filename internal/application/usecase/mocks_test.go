package usecase_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/event"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/service"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

// --- Mock implementations ---

type mockClientRepository struct {
	clients      map[string]model.Client
	saveFunc     func(ctx context.Context, c model.Client) error
	savedClients []model.Client
	findCalls    int
}

func newMockClientRepository(clients ...model.Client) *mockClientRepository {
	m := &mockClientRepository{clients: make(map[string]model.Client)}
	for _, c := range clients {
		m.clients[c.ID()] = c
	}
	return m
}

func (m *mockClientRepository) Save(ctx context.Context, c model.Client) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, c)
	}
	m.clients[c.ID()] = c
	m.savedClients = append(m.savedClients, c)
	return nil
}

func (m *mockClientRepository) FindByID(_ context.Context, id string) (model.Client, error) {
	m.findCalls++
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return model.Client{}, valueobject.ErrNotFound
}

func (m *mockClientRepository) FindByNationalID(_ context.Context, nationalID string) (model.Client, error) {
	for _, c := range m.clients {
		if c.NationalID().String() == nationalID {
			return c, nil
		}
	}
	return model.Client{}, valueobject.ErrNotFound
}

type mockLoanRepository struct {
	mu                      sync.Mutex
	findByIDFunc            func(ctx context.Context, id string) (model.Loan, error)
	findByInstallmentIDFunc func(ctx context.Context, installmentID string) (model.Loan, error)
	saveFunc                func(ctx context.Context, loan model.Loan) error
	listActiveFunc          func(ctx context.Context) ([]model.Loan, error)
	materializeFunc         func(ctx context.Context, asOf time.Time) (int, error)
	settleFunc              func(ctx context.Context, installmentID string, settle func(model.Loan) (model.Loan, error)) (model.Loan, error)
	savedLoans              []model.Loan
	saveCalls               int
	settleCalls             int
}

func (m *mockLoanRepository) Save(ctx context.Context, loan model.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, loan); err != nil {
			return err
		}
	}
	m.savedLoans = append(m.savedLoans, loan)
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id string) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Loan{}, valueobject.ErrNotFound
}

func (m *mockLoanRepository) FindByInstallmentID(ctx context.Context, installmentID string) (model.Loan, error) {
	if m.findByInstallmentIDFunc != nil {
		return m.findByInstallmentIDFunc(ctx, installmentID)
	}
	return model.Loan{}, valueobject.ErrNotFound
}

// SettleInstallment applies settle to the loan served by the installment
// finder and records the result as saved.
func (m *mockLoanRepository) SettleInstallment(
	ctx context.Context,
	installmentID string,
	settle func(model.Loan) (model.Loan, error),
) (model.Loan, error) {
	if m.settleFunc != nil {
		return m.settleFunc(ctx, installmentID, settle)
	}
	loan, err := m.FindByInstallmentID(ctx, installmentID)
	if err != nil {
		return model.Loan{}, err
	}
	next, err := settle(loan)
	if err != nil {
		return model.Loan{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settleCalls++
	m.savedLoans = append(m.savedLoans, next)
	return next, nil
}

func (m *mockLoanRepository) ListActive(ctx context.Context) ([]model.Loan, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx)
	}
	return nil, nil
}

func (m *mockLoanRepository) MaterializeOverdue(ctx context.Context, asOf time.Time) (int, error) {
	if m.materializeFunc != nil {
		return m.materializeFunc(ctx, asOf)
	}
	return 0, nil
}

// returning serves a fixed loan from both finders.
func (m *mockLoanRepository) returning(loan model.Loan) *mockLoanRepository {
	m.findByIDFunc = func(context.Context, string) (model.Loan, error) { return loan, nil }
	m.findByInstallmentIDFunc = func(context.Context, string) (model.Loan, error) { return loan, nil }
	return m
}

type mockSnapshotReader struct {
	snapshot port.Snapshot
	err      error
}

func (m *mockSnapshotReader) Snapshot(context.Context) (port.Snapshot, error) {
	return m.snapshot, m.err
}

// LoanSnapshot serves a loan and its client out of the fixed snapshot.
func (m *mockSnapshotReader) LoanSnapshot(_ context.Context, loanID string) (port.LoanSnapshot, error) {
	if m.err != nil {
		return port.LoanSnapshot{}, m.err
	}
	clients := m.snapshot.ClientIndex()
	for _, l := range m.snapshot.Loans {
		if l.ID() != loanID {
			continue
		}
		c, ok := clients[l.ClientID()]
		if !ok {
			return port.LoanSnapshot{}, valueobject.ErrNotFound
		}
		return port.LoanSnapshot{Loan: l, Client: c}, nil
	}
	return port.LoanSnapshot{}, valueobject.ErrNotFound
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

func (m *mockEventPublisher) eventTypes() []string {
	out := make([]string, 0, len(m.publishedEvents))
	for _, e := range m.publishedEvents {
		out = append(out, e.EventType())
	}
	return out
}

type mockMetrics struct {
	onboarded    int
	originated   int
	paid         int
	alerts       map[string]int
	materialized int
}

func newMockMetrics() *mockMetrics { return &mockMetrics{alerts: make(map[string]int)} }

func (m *mockMetrics) ClientOnboarded(context.Context)                  { m.onboarded++ }
func (m *mockMetrics) LoanOriginated(context.Context)                   { m.originated++ }
func (m *mockMetrics) InstallmentsPaid(_ context.Context, n int)        { m.paid += n }
func (m *mockMetrics) OverdueMaterialized(_ context.Context, n int)     { m.materialized += n }
func (m *mockMetrics) AlertsFired(_ context.Context, sev string, n int) { m.alerts[sev] += n }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- Fixtures ---

func newTestClient(t *testing.T, name, nationalID string, income int64, emp valueobject.EmploymentStatus, existing int, history valueobject.CreditHistory) model.Client {
	t.Helper()
	nid, err := valueobject.NewNationalID(nationalID)
	require.NoError(t, err)
	c, err := model.NewClient(model.ClientDetails{
		Name:       name,
		NationalID: nid,
		Phone:      "0300-1234567",
		Address:    "Lahore",
		Profile: model.BorrowerProfile{
			MonthlyIncome: decimal.NewFromInt(income),
			Employment:    emp,
			ExistingLoans: existing,
			CreditHistory: history,
		},
	}, service.NewRiskScorer(), time.Now().UTC())
	require.NoError(t, err)
	return c
}

func lowRiskClient(t *testing.T) model.Client {
	return newTestClient(t, "Ayesha Khan", "35202-1234567-1", 30_000,
		valueobject.EmploymentEmployed, 0, valueobject.CreditHistoryGood)
}

func highRiskClient(t *testing.T) model.Client {
	return newTestClient(t, "Bilal Ahmed", "35202-7654321-3", 0,
		valueobject.EmploymentUnemployed, 4, valueobject.CreditHistoryPoor)
}

// persistedLoan originates 120,000 at 12% over 12 months starting
// daysAgo days before today, as it would come back from storage.
//
// Monthly due dates fall roughly 30 days apart, so a start 70 days back
// leaves exactly two installments overdue and a start 130 days back
// leaves four.
func persistedLoan(t *testing.T, clientID string, daysAgo int) model.Loan {
	t.Helper()
	start := model.StartOfDay(time.Now().UTC()).AddDate(0, 0, -daysAgo)
	loan, err := model.NewLoan(clientID, model.LoanTerms{
		Principal:    decimal.NewFromInt(120_000),
		Type:         valueobject.LoanTypeBusiness,
		AnnualRate:   decimal.NewFromInt(12),
		TenureMonths: 12,
		StartDate:    start,
	}, start)
	require.NoError(t, err)
	return loan.Committed()
}

func payInstallment(t *testing.T, loan model.Loan, number int) model.Loan {
	t.Helper()
	next, err := loan.MarkInstallmentPaid(loan.Installments()[number-1].ID(), loan.Installments()[number-1].DueDate())
	require.NoError(t, err)
	return next.Committed()
}
