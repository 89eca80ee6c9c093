package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/geoforest/billing/internal/domain/plan"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/types"
)

type planRepository struct {
	db    *dynamodb.Client
	table string
	log   *logger.Logger
}

func NewPlanRepository(db *dynamodb.Client, table string, log *logger.Logger) plan.Repository {
	return &planRepository{
		db:    db,
		table: table,
		log:   log,
	}
}

// FindByPriceID scans the plan table. Plans are a handful of rows of
// reference data, and the cached decorator absorbs repeated lookups.
func (r *planRepository) FindByPriceID(ctx context.Context, interval types.BillingInterval, priceID string) (*plan.Plan, error) {
	r.log.Debugw("finding plan by price", "interval", interval, "price_id", priceID)

	plans, err := r.scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.table),
		FilterExpression: aws.String("#prices.#interval = :price"),
		ExpressionAttributeNames: map[string]string{
			"#prices":   "price_ids",
			"#interval": string(interval),
		},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":price": &ddbtypes.AttributeValueMemberS{Value: priceID},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, ierr.NewError("no plan for price").
			WithHint("No plan matches the purchased price").
			WithReportableDetails(map[string]any{
				"interval": interval,
				"price_id": priceID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return plans[0], nil
}

func (r *planRepository) Upsert(ctx context.Context, p *plan.Plan) error {
	r.log.Debugw("upserting plan", "plan_id", p.ID)

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode plan").
			Mark(ierr.ErrDatabase)
	}
	if _, err := r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to save plan").
			WithReportableDetails(map[string]any{"plan_id": p.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *planRepository) scan(ctx context.Context, input *dynamodb.ScanInput) ([]*plan.Plan, error) {
	var plans []*plan.Plan

	paginator := dynamodb.NewScanPaginator(r.db, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan plans").
				Mark(ierr.ErrDatabase)
		}

		var batch []*plan.Plan
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Stored plan is malformed").
				Mark(ierr.ErrDatabase)
		}
		plans = append(plans, batch...)
	}
	return plans, nil
}
