package plan

import (
	"context"

	"github.com/geoforest/billing/internal/types"
)

// Repository gives read access to plan reference data. Upsert exists for
// seeding only; the services never write plans.
type Repository interface {
	// FindByPriceID returns the first plan whose price for the given interval
	// equals priceID, or ErrNotFound
	FindByPriceID(ctx context.Context, interval types.BillingInterval, priceID string) (*Plan, error)
	Upsert(ctx context.Context, plan *Plan) error
}
