package bank

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/NOURDINED-MED/fraudscore/internal/fraud"
)

// MemoryStore is an in-memory Store for demo mode and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	customers    map[string]*fraud.Customer
	transactions map[string][]fraud.Transaction // customerID -> txs, append order
}

// NewMemoryStore creates an in-memory bank store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers:    make(map[string]*fraud.Customer),
		transactions: make(map[string][]fraud.Transaction),
	}
}

func (s *MemoryStore) CreateCustomer(ctx context.Context, customer *fraud.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customer.ID]; ok {
		return ErrCustomerExists
	}
	c := *customer
	s.customers[customer.ID] = &c
	return nil
}

func (s *MemoryStore) GetCustomer(ctx context.Context, id string) (*fraud.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	out := *c
	return &out, nil
}

func (s *MemoryStore) ListCustomers(ctx context.Context, limit int) ([]*fraud.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*fraud.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out := *c
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MemoryStore) RecordFailedLogin(ctx context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[customerID]
	if !ok {
		return ErrCustomerNotFound
	}
	c.FailedLoginAttempts++
	return nil
}

func (s *MemoryStore) ResetFailedLogins(ctx context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[customerID]
	if !ok {
		return ErrCustomerNotFound
	}
	c.FailedLoginAttempts = 0
	return nil
}

func (s *MemoryStore) RecordTransaction(ctx context.Context, customerID string, tx *fraud.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customerID]; !ok {
		return ErrCustomerNotFound
	}
	s.transactions[customerID] = append(s.transactions[customerID], *tx)

	// Keep the customer's balance in step with the latest posted balance.
	s.customers[customerID].Balance = tx.Balance
	return nil
}

func (s *MemoryStore) ListRecentTransactions(ctx context.Context, customerID string, before time.Time, limit int) ([]fraud.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []fraud.Transaction
	for _, tx := range s.transactions[customerID] {
		if !tx.Date.After(before) {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
