package fraud

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for demo mode and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]*Assessment
	byCustomer map[string][]*Assessment
}

// NewMemoryStore creates an in-memory assessment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*Assessment),
		byCustomer: make(map[string][]*Assessment),
	}
}

func (s *MemoryStore) Record(ctx context.Context, assessment *Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := cloneAssessment(assessment)
	s.byID[a.ID] = a
	s.byCustomer[a.CustomerID] = append(s.byCustomer[a.CustomerID], a)
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, ErrAssessmentNotFound
	}
	return cloneAssessment(a), nil
}

func (s *MemoryStore) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.byCustomer[customerID]
	if len(all) == 0 {
		return nil, nil
	}

	start := len(all) - limit
	if limit <= 0 || start < 0 {
		start = 0
	}

	// Most recent first.
	result := make([]*Assessment, 0, len(all)-start)
	for i := len(all) - 1; i >= start; i-- {
		result = append(result, cloneAssessment(all[i]))
	}
	return result, nil
}

func cloneAssessment(a *Assessment) *Assessment {
	c := *a
	c.Reasons = append([]string{}, a.Reasons...)
	c.Alerts = append([]Alert{}, a.Alerts...)
	return &c
}
