package stripe

import (
	"encoding/json"

	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/types"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ParseWebhookEvent parses a Stripe webhook event with signature verification
func (c *Client) ParseWebhookEvent(payload []byte, signature string) (*stripe.Event, error) {
	event, err := ConstructEvent(payload, signature, c.config.WebhookSecret)
	if err != nil {
		c.logger.Warnw("Stripe webhook verification failed", "error", err)
		return nil, err
	}
	return event, nil
}

// ConstructEvent verifies the payload against secret, ignoring API version
// mismatch so account upgrades do not reject deliveries
func ConstructEvent(payload []byte, signature, secret string) (*stripe.Event, error) {
	options := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, options)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid webhook signature or payload").
			Mark(ierr.ErrSignatureInvalid)
	}
	return &event, nil
}

// InvoicePayment is what reconciliation needs from a paid invoice
type InvoicePayment struct {
	InvoiceID  string
	CustomerID string
	// PriceID is the price of the first line item
	PriceID string
}

// invoicePayload decodes only the fields reconciliation reads. Line prices
// moved from lines.data[].price to lines.data[].pricing.price_details in
// newer API versions, and both shapes are still delivered.
type invoicePayload struct {
	ID       string          `json:"id"`
	Customer json.RawMessage `json:"customer"`
	Lines    struct {
		Data []struct {
			Price *struct {
				ID string `json:"id"`
			} `json:"price"`
			Pricing *struct {
				PriceDetails *struct {
					Price json.RawMessage `json:"price"`
				} `json:"price_details"`
			} `json:"pricing"`
		} `json:"data"`
	} `json:"lines"`
}

// ParseInvoicePayment extracts the customer and first line price from an
// invoice event object. Missing fields are returned empty.
func ParseInvoicePayment(raw json.RawMessage) (*InvoicePayment, error) {
	var payload invoicePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Malformed invoice payload").
			Mark(ierr.ErrValidation)
	}

	out := &InvoicePayment{
		InvoiceID:  payload.ID,
		CustomerID: expandableID(payload.Customer),
	}
	if len(payload.Lines.Data) > 0 {
		line := payload.Lines.Data[0]
		switch {
		case line.Price != nil && line.Price.ID != "":
			out.PriceID = line.Price.ID
		case line.Pricing != nil && line.Pricing.PriceDetails != nil:
			out.PriceID = expandableID(line.Pricing.PriceDetails.Price)
		}
	}
	return out, nil
}

// IntentPayment is what reconciliation needs from a succeeded payment intent
type IntentPayment struct {
	PaymentIntentID string
	CustomerID      string
	AccountID       string
	PriceID         string
}

// ParseIntentPayment reads the metadata written at checkout back out of a
// payment intent event object
func ParseIntentPayment(raw json.RawMessage) (*IntentPayment, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(raw, &intent); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Malformed payment intent payload").
			Mark(ierr.ErrValidation)
	}

	out := &IntentPayment{
		PaymentIntentID: intent.ID,
		AccountID:       intent.Metadata[types.MetadataKeyAccountID],
		PriceID:         intent.Metadata[types.MetadataKeyPriceID],
	}
	if intent.Customer != nil {
		out.CustomerID = intent.Customer.ID
	}
	return out, nil
}

// expandableID reads an id from a field that is either a bare id string or
// an expanded object
func expandableID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.ID
	}
	return ""
}
