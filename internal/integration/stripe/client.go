package stripe

import (
	"context"

	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/sentry"
	"github.com/stripe/stripe-go/v82"
)

// Gateway is the billing provider surface the services depend on
type Gateway interface {
	// CreateCustomer creates a customer tagged with the account id and returns its id
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (string, error)
	// DeleteCustomer removes a customer that lost the race to be linked
	DeleteCustomer(ctx context.Context, customerID string) error
	// GetCustomerAccountID returns the account id stored in the customer metadata
	GetCustomerAccountID(ctx context.Context, customerID string) (string, error)
	CreateEphemeralKey(ctx context.Context, customerID string) (string, error)
	GetPrice(ctx context.Context, priceID string) (*Price, error)
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
	// ParseWebhookEvent verifies the signature and decodes the event
	ParseWebhookEvent(payload []byte, signature string) (*stripe.Event, error)
}

// Client implements Gateway on the Stripe API
type Client struct {
	api    *stripe.Client
	config config.StripeConfig
	logger *logger.Logger
	sentry *sentry.Service
}

// NewClient creates a new Stripe client
func NewClient(cfg *config.Configuration, logger *logger.Logger, sentryService *sentry.Service) *Client {
	return &Client{
		api:    stripe.NewClient(cfg.Stripe.SecretKey, nil),
		config: cfg.Stripe,
		logger: logger,
		sentry: sentryService,
	}
}

func (c *Client) ephemeralKeyVersion() string {
	if c.config.EphemeralKeyAPIVersion == "" {
		return config.DefaultEphemeralKeyAPIVersion
	}
	return c.config.EphemeralKeyAPIVersion
}

var _ Gateway = (*Client)(nil)
