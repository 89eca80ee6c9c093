package repository

import (
	"context"
	"time"

	"github.com/geoforest/billing/internal/cache"
	"github.com/geoforest/billing/internal/domain/plan"
	"github.com/geoforest/billing/internal/types"
)

// cachedPlanRepository serves plan reads from the in-memory cache. Misses
// are not cached so a newly seeded plan is visible on the next webhook.
type cachedPlanRepository struct {
	plan.Repository
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedPlanRepository(repo plan.Repository, c cache.Cache, ttl time.Duration) plan.Repository {
	return &cachedPlanRepository{
		Repository: repo,
		cache:      c,
		ttl:        ttl,
	}
}

func (r *cachedPlanRepository) FindByPriceID(ctx context.Context, interval types.BillingInterval, priceID string) (*plan.Plan, error) {
	key := cache.GenerateKey(cache.PrefixPlanByPrice, interval, priceID)
	if v, ok := r.cache.Get(ctx, key); ok {
		if p, ok := v.(*plan.Plan); ok {
			return p, nil
		}
	}

	p, err := r.Repository.FindByPriceID(ctx, interval, priceID)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, key, p, r.ttl)
	return p, nil
}

func (r *cachedPlanRepository) Upsert(ctx context.Context, p *plan.Plan) error {
	if err := r.Repository.Upsert(ctx, p); err != nil {
		return err
	}
	r.cache.DeleteByPrefix(ctx, cache.PrefixPlanByPrice)
	return nil
}
