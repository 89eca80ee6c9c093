package stripe

import (
	"context"

	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/sentry"
	"github.com/geoforest/billing/internal/types"
	"github.com/stripe/stripe-go/v82"
)

// CreateCustomer creates the customer with the account id in its metadata.
// The idempotency key makes a retried creation for the same account return
// the customer created the first time.
func (c *Client) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (string, error) {
	params := &stripe.CustomerCreateParams{
		Email: stripe.String(req.Email),
		Metadata: map[string]string{
			types.MetadataKeyAccountID: req.AccountID,
		},
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	span, ctx := c.sentry.StartProviderSpan(ctx, "stripe.customer.create", map[string]interface{}{
		"account_id": req.AccountID,
	})
	defer sentry.FinishSpan(span)

	customer, err := c.api.V1Customers.Create(ctx, params)
	if err != nil {
		sentry.SetSpanError(span, err)
		c.logger.Errorw("failed to create Stripe customer",
			"account_id", req.AccountID,
			"error", err,
		)
		return "", providerError(err, "Unable to create billing customer")
	}

	c.logger.Infow("created Stripe customer",
		"account_id", req.AccountID,
		"stripe_customer_id", customer.ID,
	)
	return customer.ID, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, customerID string) error {
	span, ctx := c.sentry.StartProviderSpan(ctx, "stripe.customer.delete", map[string]interface{}{
		"stripe_customer_id": customerID,
	})
	defer sentry.FinishSpan(span)

	if _, err := c.api.V1Customers.Delete(ctx, customerID, nil); err != nil {
		sentry.SetSpanError(span, err)
		return providerError(err, "Unable to delete billing customer")
	}
	c.logger.Infow("deleted Stripe customer", "stripe_customer_id", customerID)
	return nil
}

func (c *Client) GetCustomerAccountID(ctx context.Context, customerID string) (string, error) {
	span, ctx := c.sentry.StartProviderSpan(ctx, "stripe.customer.retrieve", map[string]interface{}{
		"stripe_customer_id": customerID,
	})
	defer sentry.FinishSpan(span)

	customer, err := c.api.V1Customers.Retrieve(ctx, customerID, nil)
	if err != nil {
		sentry.SetSpanError(span, err)
		return "", providerError(err, "Unable to retrieve billing customer")
	}
	if customer.Deleted {
		return "", ierr.NewError("stripe customer deleted").
			WithHint("Billing customer was not found").
			WithReportableDetails(map[string]any{"stripe_customer_id": customerID}).
			Mark(ierr.ErrNotFound)
	}
	return customer.Metadata[types.MetadataKeyAccountID], nil
}
