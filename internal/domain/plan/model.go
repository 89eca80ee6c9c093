package plan

import (
	"github.com/geoforest/billing/internal/domain/account"
	"github.com/geoforest/billing/internal/types"
)

// Plan is externally managed reference data mapping Stripe prices to grants
type Plan struct {
	ID       string          `json:"id" firestore:"-" dynamodbav:"plan_id"`
	Name     string          `json:"name" firestore:"nome" dynamodbav:"name"`
	Features map[string]bool `json:"features" firestore:"features" dynamodbav:"features"`
	Limits   map[string]int  `json:"limits" firestore:"limites" dynamodbav:"limits"`
	// PriceIDs holds the Stripe price id of each billing interval, keyed by
	// the interval name
	PriceIDs map[string]string `json:"price_ids" firestore:"stripePriceIds" dynamodbav:"price_ids"`
}

// MatchesPrice reports whether priceID is this plan's price for interval
func (p *Plan) MatchesPrice(interval types.BillingInterval, priceID string) bool {
	return priceID != "" && p.PriceIDs[string(interval)] == priceID
}

// Entitlement returns the grants an account receives on this plan
func (p *Plan) Entitlement() account.Entitlement {
	return account.Entitlement{
		PlanID:   p.ID,
		Features: p.Features,
		Limits:   p.Limits,
	}
}
