package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/geoforest/billing/internal/domain/plan"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/types"
)

type InMemoryPlanStore struct {
	mu    sync.RWMutex
	plans map[string]*plan.Plan
	// Err, when set, is returned by every read
	Err error
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		plans: make(map[string]*plan.Plan),
	}
}

// FindByPriceID walks plans in id order so results are deterministic
func (s *InMemoryPlanStore) FindByPriceID(_ context.Context, interval types.BillingInterval, priceID string) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	for _, id := range s.sortedIDs() {
		p := s.plans[id]
		if p.MatchesPrice(interval, priceID) {
			return p, nil
		}
	}
	return nil, ierr.NewError("no plan for price").
		WithHint("No plan matches the purchased price").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryPlanStore) Upsert(_ context.Context, p *plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.ID] = p
	return nil
}

func (s *InMemoryPlanStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = make(map[string]*plan.Plan)
	s.Err = nil
}

func (s *InMemoryPlanStore) sortedIDs() []string {
	ids := make([]string, 0, len(s.plans))
	for id := range s.plans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
