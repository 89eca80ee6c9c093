package api

import (
	"time"

	"github.com/geoforest/billing/internal/domain/account"
	"github.com/geoforest/billing/internal/domain/plan"
)

func (s *RouterSuite) seedAccount(uid string) *account.Account {
	billing := s.cfg.Billing
	a := account.NewTrialAccount(uid, uid+"@example.com", time.Now().UTC(), billing.TrialWindow(), billing.TrialFeatures, billing.TrialLimits)
	s.accounts.Put(a)
	return a
}

func planFixture() *plan.Plan {
	return &plan.Plan{
		ID:       "pro",
		Name:     "Pro",
		Features: map[string]bool{"exportacao": true, "analise": true},
		Limits:   map[string]int{"smartphone": 3, "desktop": 1},
		PriceIDs: map[string]string{"mensal": "price_pro_mensal", "anual": "price_pro_anual"},
	}
}
