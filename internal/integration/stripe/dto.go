package stripe

type CreateCustomerRequest struct {
	AccountID      string
	Email          string
	IdempotencyKey string
}

// Price is the subset of a Stripe price the checkout flow needs.
// UnitAmount is in the currency's minor unit.
type Price struct {
	ID         string
	UnitAmount int64
	Currency   string
	Active     bool
	Recurring  bool
}

type PaymentIntentRequest struct {
	CustomerID string
	Amount     int64
	Currency   string
	Metadata   map[string]string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

type CheckoutSessionRequest struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}
