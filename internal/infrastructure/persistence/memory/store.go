// Package memory keeps clients and loans in process memory. It honours the
// same version contract as the Postgres repositories and backs local runs
// and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/model"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/port"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/domain/valueobject"
)

// Store implements port.ClientRepository, port.LoanRepository and
// port.SnapshotReader behind one lock.
type Store struct {
	mu            sync.RWMutex
	clients       map[string]model.Client
	loans         map[string]model.Loan
	byInstallment map[string]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		clients:       make(map[string]model.Client),
		loans:         make(map[string]model.Loan),
		byInstallment: make(map[string]string),
	}
}

// Clients returns the store as a client repository.
func (s *Store) Clients() port.ClientRepository { return clientRepo{s} }

// Loans returns the store as a loan repository.
func (s *Store) Loans() port.LoanRepository { return loanRepo{s} }

// Snapshot copies the whole book under a read lock.
func (s *Store) Snapshot(_ context.Context) (port.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := port.Snapshot{
		Clients: make([]model.Client, 0, len(s.clients)),
		Loans:   make([]model.Loan, 0, len(s.loans)),
	}
	for _, c := range s.clients {
		snap.Clients = append(snap.Clients, c)
	}
	for _, l := range s.loans {
		snap.Loans = append(snap.Loans, l)
	}
	sort.Slice(snap.Clients, func(i, j int) bool { return snap.Clients[i].ID() < snap.Clients[j].ID() })
	sortLoans(snap.Loans)
	return snap, nil
}

// LoanSnapshot reads a loan and its client under one read lock.
func (s *Store) LoanSnapshot(_ context.Context, loanID string) (port.LoanSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.loans[loanID]
	if !ok {
		return port.LoanSnapshot{}, valueobject.ErrNotFound
	}
	c, ok := s.clients[l.ClientID()]
	if !ok {
		return port.LoanSnapshot{}, valueobject.ErrNotFound
	}
	return port.LoanSnapshot{Loan: l, Client: c}, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Clients
// ---------------------------------------------------------------------------

type clientRepo struct{ s *Store }

func (r clientRepo) Save(_ context.Context, client model.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, existing := range r.s.clients {
		if id != client.ID() && existing.NationalID().Equal(client.NationalID()) {
			return valueobject.Invalid("national identity number %s is already registered", client.NationalID())
		}
	}
	r.s.clients[client.ID()] = client
	return nil
}

func (r clientRepo) FindByID(_ context.Context, id string) (model.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clients[id]
	if !ok {
		return model.Client{}, valueobject.ErrNotFound
	}
	return c, nil
}

func (r clientRepo) FindByNationalID(_ context.Context, nationalID string) (model.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.clients {
		if c.NationalID().String() == nationalID {
			return c, nil
		}
	}
	return model.Client{}, valueobject.ErrNotFound
}

// ---------------------------------------------------------------------------
// Loans
// ---------------------------------------------------------------------------

type loanRepo struct{ s *Store }

func (r loanRepo) Save(_ context.Context, loan model.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, exists := r.s.loans[loan.ID()]
	switch {
	case loan.IsNew() && exists:
		return port.ErrConcurrentModification
	case !loan.IsNew() && (!exists || stored.Version() != loan.Version()):
		return port.ErrConcurrentModification
	}

	if exists {
		for _, inst := range stored.Installments() {
			delete(r.s.byInstallment, inst.ID())
		}
	}
	committed := loan.Committed()
	r.s.loans[loan.ID()] = committed
	for _, inst := range committed.Installments() {
		r.s.byInstallment[inst.ID()] = loan.ID()
	}
	return nil
}

func (r loanRepo) FindByID(_ context.Context, id string) (model.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.loans[id]
	if !ok {
		return model.Loan{}, valueobject.ErrNotFound
	}
	return l, nil
}

func (r loanRepo) FindByInstallmentID(_ context.Context, installmentID string) (model.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	loanID, ok := r.s.byInstallment[installmentID]
	if !ok {
		return model.Loan{}, valueobject.ErrNotFound
	}
	return r.s.loans[loanID], nil
}

func (r loanRepo) SettleInstallment(_ context.Context, installmentID string, settle func(model.Loan) (model.Loan, error)) (model.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	loanID, ok := r.s.byInstallment[installmentID]
	if !ok {
		return model.Loan{}, valueobject.ErrNotFound
	}
	stored := r.s.loans[loanID]
	if inst, _ := stored.Installment(installmentID); inst.Paid() {
		return model.Loan{}, valueobject.ErrAlreadyPaid
	}

	next, err := settle(stored)
	if err != nil {
		return model.Loan{}, err
	}
	r.s.loans[loanID] = next.Committed()
	return next, nil
}

func (r loanRepo) ListActive(_ context.Context) ([]model.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []model.Loan
	for _, l := range r.s.loans {
		if l.Status() == valueobject.LoanStatusActive {
			out = append(out, l)
		}
	}
	sortLoans(out)
	return out, nil
}

func (r loanRepo) MaterializeOverdue(_ context.Context, asOf time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	total := 0
	for id, l := range r.s.loans {
		next, changed := l.MaterializeOverdue(asOf)
		if changed > 0 {
			r.s.loans[id] = next
			total += changed
		}
	}
	return total, nil
}

func sortLoans(loans []model.Loan) {
	sort.Slice(loans, func(i, j int) bool {
		if !loans[i].CreatedAt().Equal(loans[j].CreatedAt()) {
			return loans[i].CreatedAt().Before(loans[j].CreatedAt())
		}
		return loans[i].ID() < loans[j].ID()
	})
}
