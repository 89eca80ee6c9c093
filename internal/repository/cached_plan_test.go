package repository

import (
	"context"
	"testing"
	"time"

	"github.com/geoforest/billing/internal/cache"
	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/domain/plan"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/testutil"
	"github.com/geoforest/billing/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPlanRepo struct {
	plan.Repository
	finds int
}

func (r *countingPlanRepo) FindByPriceID(ctx context.Context, interval types.BillingInterval, priceID string) (*plan.Plan, error) {
	r.finds++
	return r.Repository.FindByPriceID(ctx, interval, priceID)
}

func newCachedPlanRepo(t *testing.T, enabled bool) (*countingPlanRepo, plan.Repository) {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = enabled

	inner := &countingPlanRepo{Repository: testutil.NewInMemoryPlanStore()}
	repo := NewCachedPlanRepository(inner, cache.NewInMemoryCache(cfg), time.Minute)
	require.NoError(t, repo.Upsert(context.Background(), &plan.Plan{
		ID:       "pro",
		Name:     "Pro",
		Features: map[string]bool{"exportacao": true},
		Limits:   map[string]int{"smartphone": 3},
		PriceIDs: map[string]string{"mensal": "price_pro_mensal"},
	}))
	return inner, repo
}

func TestCachedPlanRepository_FindByPriceID(t *testing.T) {
	ctx := context.Background()
	inner, repo := newCachedPlanRepo(t, true)

	for i := 0; i < 3; i++ {
		p, err := repo.FindByPriceID(ctx, types.BillingIntervalMonthly, "price_pro_mensal")
		require.NoError(t, err)
		assert.Equal(t, "pro", p.ID)
	}
	assert.Equal(t, 1, inner.finds)
}

func TestCachedPlanRepository_MissesAreNotCached(t *testing.T) {
	ctx := context.Background()
	inner, repo := newCachedPlanRepo(t, true)

	_, err := repo.FindByPriceID(ctx, types.BillingIntervalMonthly, "price_new")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))

	require.NoError(t, repo.Upsert(ctx, &plan.Plan{
		ID:       "new",
		PriceIDs: map[string]string{"mensal": "price_new"},
	}))

	p, err := repo.FindByPriceID(ctx, types.BillingIntervalMonthly, "price_new")
	require.NoError(t, err)
	assert.Equal(t, "new", p.ID)
	assert.Equal(t, 2, inner.finds)
}

func TestCachedPlanRepository_UpsertInvalidates(t *testing.T) {
	ctx := context.Background()
	inner, repo := newCachedPlanRepo(t, true)

	_, err := repo.FindByPriceID(ctx, types.BillingIntervalMonthly, "price_pro_mensal")
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(ctx, &plan.Plan{
		ID:       "pro",
		Name:     "Pro 2",
		PriceIDs: map[string]string{"mensal": "price_pro_mensal"},
	}))

	p, err := repo.FindByPriceID(ctx, types.BillingIntervalMonthly, "price_pro_mensal")
	require.NoError(t, err)
	assert.Equal(t, "Pro 2", p.Name)
	assert.Equal(t, 2, inner.finds)
}

func TestCachedPlanRepository_Disabled(t *testing.T) {
	ctx := context.Background()
	inner, repo := newCachedPlanRepo(t, false)

	for i := 0; i < 2; i++ {
		_, err := repo.FindByPriceID(ctx, types.BillingIntervalMonthly, "price_pro_mensal")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, inner.finds)
}
