package stripe

import (
	"context"

	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/sentry"
	"github.com/stripe/stripe-go/v82"
)

// CreateEphemeralKey issues a key scoped to the customer for the mobile payment sheet
func (c *Client) CreateEphemeralKey(ctx context.Context, customerID string) (string, error) {
	params := &stripe.EphemeralKeyCreateParams{
		Customer:      stripe.String(customerID),
		StripeVersion: stripe.String(c.ephemeralKeyVersion()),
	}
	span, ctx := c.sentry.StartProviderSpan(ctx, "stripe.ephemeral_key.create", map[string]interface{}{
		"stripe_customer_id": customerID,
	})
	defer sentry.FinishSpan(span)

	key, err := c.api.V1EphemeralKeys.Create(ctx, params)
	if err != nil {
		sentry.SetSpanError(span, err)
		c.logger.Errorw("failed to create ephemeral key",
			"stripe_customer_id", customerID,
			"error", err,
		)
		return "", providerError(err, "Unable to create ephemeral key")
	}
	return key.Secret, nil
}

func (c *Client) GetPrice(ctx context.Context, priceID string) (*Price, error) {
	span, ctx := c.sentry.StartProviderSpan(ctx, "stripe.price.retrieve", map[string]interface{}{
		"price_id": priceID,
	})
	defer sentry.FinishSpan(span)

	price, err := c.api.V1Prices.Retrieve(ctx, priceID, nil)
	if err != nil {
		sentry.SetSpanError(span, err)
		return nil, providerError(err, "Unable to retrieve price")
	}
	return &Price{
		ID:         price.ID,
		UnitAmount: price.UnitAmount,
		Currency:   string(price.Currency),
		Active:     price.Active,
		Recurring:  price.Recurring != nil,
	}, nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		Customer: stripe.String(req.CustomerID),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: req.Metadata,
	}

	span, ctx := c.sentry.StartProviderSpan(ctx, "stripe.payment_intent.create", map[string]interface{}{
		"stripe_customer_id": req.CustomerID,
		"amount":             req.Amount,
	})
	defer sentry.FinishSpan(span)

	intent, err := c.api.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		sentry.SetSpanError(span, err)
		c.logger.Errorw("failed to create payment intent",
			"stripe_customer_id", req.CustomerID,
			"error", err,
		)
		return nil, providerError(err, "Unable to create payment intent")
	}

	c.logger.Infow("created payment intent",
		"payment_intent_id", intent.ID,
		"stripe_customer_id", req.CustomerID,
	)
	return &PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// CreateCheckoutSession creates a hosted subscription checkout for a single price
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(req.CustomerID),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		AllowPromotionCodes: stripe.Bool(true),
		SuccessURL:          stripe.String(req.SuccessURL),
		CancelURL:           stripe.String(req.CancelURL),
		Metadata:            req.Metadata,
		SubscriptionData: &stripe.CheckoutSessionCreateSubscriptionDataParams{
			Metadata: req.Metadata,
		},
	}

	span, ctx := c.sentry.StartProviderSpan(ctx, "stripe.checkout_session.create", map[string]interface{}{
		"stripe_customer_id": req.CustomerID,
		"price_id":           req.PriceID,
	})
	defer sentry.FinishSpan(span)

	session, err := c.api.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		sentry.SetSpanError(span, err)
		c.logger.Errorw("failed to create Stripe checkout session",
			"stripe_customer_id", req.CustomerID,
			"price_id", req.PriceID,
			"error", err,
		)
		return nil, providerError(err, "Unable to create checkout session")
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// providerError marks a Stripe API failure. A missing resource is NotFound,
// anything else is an upstream failure whose detail stays in the logs.
func providerError(err error, hint string) error {
	var stripeErr *stripe.Error
	if ierr.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
		return ierr.WithError(err).
			WithHint(hint).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHint(hint).
		Mark(ierr.ErrHTTPClient)
}
