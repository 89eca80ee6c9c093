package firestore

import (
	"context"

	gfs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/geoforest/billing/internal/domain/plan"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/types"
)

const fieldPriceIDs = "stripePriceIds"

type planRepository struct {
	client     *gfs.Client
	collection string
	log        *logger.Logger
}

func NewPlanRepository(client *gfs.Client, collection string, log *logger.Logger) plan.Repository {
	return &planRepository{
		client:     client,
		collection: collection,
		log:        log,
	}
}

func (r *planRepository) FindByPriceID(ctx context.Context, interval types.BillingInterval, priceID string) (*plan.Plan, error) {
	r.log.Debugw("finding plan by price", "interval", interval, "price_id", priceID)

	iter := r.client.Collection(r.collection).
		Where(fieldPriceIDs+"."+string(interval), "==", priceID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, ierr.NewError("no plan for price").
			WithHint("No plan matches the purchased price").
			WithReportableDetails(map[string]any{
				"interval": interval,
				"price_id": priceID,
			}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to look up plan").
			WithReportableDetails(map[string]any{"price_id": priceID}).
			Mark(ierr.ErrDatabase)
	}
	return decodePlan(snap)
}

func (r *planRepository) Upsert(ctx context.Context, p *plan.Plan) error {
	r.log.Debugw("upserting plan", "plan_id", p.ID)

	if _, err := r.client.Collection(r.collection).Doc(p.ID).Set(ctx, p); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to save plan").
			WithReportableDetails(map[string]any{"plan_id": p.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func decodePlan(snap *gfs.DocumentSnapshot) (*plan.Plan, error) {
	var p plan.Plan
	if err := snap.DataTo(&p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Stored plan is malformed").
			WithReportableDetails(map[string]any{"plan_id": snap.Ref.ID}).
			Mark(ierr.ErrDatabase)
	}
	p.ID = snap.Ref.ID
	return &p, nil
}
