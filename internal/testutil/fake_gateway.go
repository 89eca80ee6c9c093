package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/integration/stripe"
	"github.com/samber/lo"
	stripego "github.com/stripe/stripe-go/v82"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

// Gateway operation names for FakeGateway.Calls and FakeGateway.Errs
const (
	OpCreateCustomer        = "create_customer"
	OpDeleteCustomer        = "delete_customer"
	OpGetCustomer           = "get_customer"
	OpCreateEphemeralKey    = "create_ephemeral_key"
	OpGetPrice              = "get_price"
	OpCreatePaymentIntent   = "create_payment_intent"
	OpCreateCheckoutSession = "create_checkout_session"
)

// FakeGateway implements stripe.Gateway in memory. Every created customer
// gets a fresh id, as if idempotency keys were not honored, so tests see the
// worst case for the customer link race. Webhook signatures are verified for
// real against WebhookSecret.
type FakeGateway struct {
	mu sync.Mutex

	WebhookSecret string
	Prices        map[string]*stripe.Price
	// CustomerAccounts is the firebaseUID metadata of each customer
	CustomerAccounts map[string]string
	ClientSecret     string
	SessionURL       string
	// Errs forces an operation to fail
	Errs map[string]error
	// BeforeCreateCustomer runs inside CreateCustomer before the customer exists
	BeforeCreateCustomer func()

	calls            map[string]int
	seq              int
	DeletedCustomers []string
	IdempotencyKeys  []string
	PaymentIntents   []stripe.PaymentIntentRequest
	CheckoutSessions []stripe.CheckoutSessionRequest
}

func NewFakeGateway(webhookSecret string) *FakeGateway {
	return &FakeGateway{
		WebhookSecret:    webhookSecret,
		Prices:           make(map[string]*stripe.Price),
		CustomerAccounts: make(map[string]string),
		ClientSecret:     "pi_test_secret_123",
		SessionURL:       "https://checkout.stripe.test/c/pay/cs_test_1",
		Errs:             make(map[string]error),
		calls:            make(map[string]int),
	}
}

func (g *FakeGateway) record(op string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[op]++
	return g.Errs[op]
}

func (g *FakeGateway) CreateCustomer(_ context.Context, req stripe.CreateCustomerRequest) (string, error) {
	if err := g.record(OpCreateCustomer); err != nil {
		return "", err
	}
	if g.BeforeCreateCustomer != nil {
		g.BeforeCreateCustomer()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	id := fmt.Sprintf("cus_test_%d", g.seq)
	g.CustomerAccounts[id] = req.AccountID
	g.IdempotencyKeys = append(g.IdempotencyKeys, req.IdempotencyKey)
	return id, nil
}

func (g *FakeGateway) DeleteCustomer(_ context.Context, customerID string) error {
	if err := g.record(OpDeleteCustomer); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.CustomerAccounts, customerID)
	g.DeletedCustomers = append(g.DeletedCustomers, customerID)
	return nil
}

func (g *FakeGateway) GetCustomerAccountID(_ context.Context, customerID string) (string, error) {
	if err := g.record(OpGetCustomer); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	accountID, ok := g.CustomerAccounts[customerID]
	if !ok {
		return "", ierr.NewError("no such customer").
			WithHint("Billing customer was not found").
			Mark(ierr.ErrNotFound)
	}
	return accountID, nil
}

func (g *FakeGateway) CreateEphemeralKey(_ context.Context, customerID string) (string, error) {
	if err := g.record(OpCreateEphemeralKey); err != nil {
		return "", err
	}
	return "ek_test_" + customerID, nil
}

func (g *FakeGateway) GetPrice(_ context.Context, priceID string) (*stripe.Price, error) {
	if err := g.record(OpGetPrice); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	price, ok := g.Prices[priceID]
	if !ok {
		return nil, ierr.NewError("no such price").
			WithHint("Unable to retrieve price").
			Mark(ierr.ErrNotFound)
	}
	return price, nil
}

func (g *FakeGateway) CreatePaymentIntent(_ context.Context, req stripe.PaymentIntentRequest) (*stripe.PaymentIntent, error) {
	if err := g.record(OpCreatePaymentIntent); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.PaymentIntents = append(g.PaymentIntents, req)
	return &stripe.PaymentIntent{
		ID:           fmt.Sprintf("pi_test_%d", len(g.PaymentIntents)),
		ClientSecret: g.ClientSecret,
	}, nil
}

func (g *FakeGateway) CreateCheckoutSession(_ context.Context, req stripe.CheckoutSessionRequest) (*stripe.CheckoutSession, error) {
	if err := g.record(OpCreateCheckoutSession); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CheckoutSessions = append(g.CheckoutSessions, req)
	return &stripe.CheckoutSession{
		ID:  fmt.Sprintf("cs_test_%d", len(g.CheckoutSessions)),
		URL: g.SessionURL,
	}, nil
}

func (g *FakeGateway) ParseWebhookEvent(payload []byte, signature string) (*stripego.Event, error) {
	return stripe.ConstructEvent(payload, signature, g.WebhookSecret)
}

// Calls returns how many times op was invoked
func (g *FakeGateway) Calls(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

// TotalCalls returns the number of provider API calls made
func (g *FakeGateway) TotalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return lo.Sum(lo.Values(g.calls))
}

// SignedWebhook builds an event of eventType around object and signs it with
// secret. It returns the body and the Stripe-Signature header value.
func SignedWebhook(secret, eventID, eventType string, object map[string]any) ([]byte, string) {
	payload, err := json.Marshal(map[string]any{
		"id":          eventID,
		"object":      "event",
		"type":        eventType,
		"api_version": stripego.APIVersion,
		"data":        map[string]any{"object": object},
	})
	if err != nil {
		panic(err)
	}
	signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return signed.Payload, signed.Header
}

// InvoicePaidObject is a minimal invoice.payment_succeeded object
func InvoicePaidObject(customerID, priceID string) map[string]any {
	return map[string]any{
		"id":       "in_test_1",
		"object":   "invoice",
		"customer": customerID,
		"lines": map[string]any{
			"data": []any{
				map[string]any{"price": map[string]any{"id": priceID}},
			},
		},
	}
}

// PaymentIntentObject is a minimal payment_intent.succeeded object
func PaymentIntentObject(customerID string, metadata map[string]string) map[string]any {
	return map[string]any{
		"id":       "pi_test_1",
		"object":   "payment_intent",
		"customer": customerID,
		"metadata": metadata,
	}
}
