package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/geoforest/billing/internal/domain/account"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/samber/lo"
)

// InMemoryAccountStore implements account.Repository with the same
// conditional semantics as the document stores
type InMemoryAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*account.Account
	calls    map[string]int
	// Err, when set, is returned by every operation
	Err error
}

func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{
		accounts: make(map[string]*account.Account),
		calls:    make(map[string]int),
	}
}

func (s *InMemoryAccountStore) Create(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["create"]++
	if s.Err != nil {
		return s.Err
	}

	if _, ok := s.accounts[a.ID]; ok {
		return ierr.NewError("account already exists").
			WithHint("Account already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	s.accounts[a.ID] = copyAccount(a)
	return nil
}

func (s *InMemoryAccountStore) Get(_ context.Context, id string) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["get"]++
	if s.Err != nil {
		return nil, s.Err
	}

	a, ok := s.accounts[id]
	if !ok {
		return nil, accountNotFound(id)
	}
	return copyAccount(a), nil
}

func (s *InMemoryAccountStore) GetByBillingCustomerID(_ context.Context, customerID string) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["get_by_billing_customer"]++
	if s.Err != nil {
		return nil, s.Err
	}

	for _, a := range s.accounts {
		if a.BillingCustomerID == customerID {
			return copyAccount(a), nil
		}
	}
	return nil, ierr.NewError("account not found for billing customer").
		WithHint("Account was not found").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryAccountStore) SetBillingCustomerID(_ context.Context, id, customerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["set_billing_customer"]++
	if s.Err != nil {
		return "", s.Err
	}

	a, ok := s.accounts[id]
	if !ok {
		return "", accountNotFound(id)
	}
	if a.BillingCustomerID == "" {
		a.BillingCustomerID = customerID
		a.UpdatedAt = time.Now().UTC()
	}
	return a.BillingCustomerID, nil
}

func (s *InMemoryAccountStore) ApplyEntitlement(_ context.Context, id string, e account.Entitlement) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["apply_entitlement"]++
	if s.Err != nil {
		return nil, s.Err
	}

	a, ok := s.accounts[id]
	if !ok {
		return nil, accountNotFound(id)
	}
	a.Apply(e, time.Now().UTC())
	return copyAccount(a), nil
}

// Put stores a record directly, bypassing the create condition
func (s *InMemoryAccountStore) Put(a *account.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = copyAccount(a)
}

// Calls returns how many times op was invoked
func (s *InMemoryAccountStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// TotalCalls returns the number of operations invoked through the repository interface
func (s *InMemoryAccountStore) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Sum(lo.Values(s.calls))
}

func (s *InMemoryAccountStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

func (s *InMemoryAccountStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*account.Account)
	s.calls = make(map[string]int)
	s.Err = nil
}

func copyAccount(a *account.Account) *account.Account {
	c := *a
	c.Features = lo.Assign(map[string]bool{}, a.Features)
	c.Limits = lo.Assign(map[string]int{}, a.Limits)
	return &c
}

func accountNotFound(id string) error {
	return ierr.NewErrorf("account %s not found", id).
		WithHintf("Account %s was not found", id).
		Mark(ierr.ErrNotFound)
}
