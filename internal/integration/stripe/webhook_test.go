package stripe

import (
	"encoding/json"
	"testing"
	"time"

	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

func TestParseInvoicePayment(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantCustomer string
		wantPrice    string
	}{
		{
			name:         "legacy line price",
			raw:          `{"id":"in_1","customer":"cus_1","lines":{"data":[{"price":{"id":"price_m"}}]}}`,
			wantCustomer: "cus_1",
			wantPrice:    "price_m",
		},
		{
			name:         "pricing price details",
			raw:          `{"id":"in_2","customer":"cus_2","lines":{"data":[{"pricing":{"price_details":{"price":"price_a","product":"prod_1"}}}]}}`,
			wantCustomer: "cus_2",
			wantPrice:    "price_a",
		},
		{
			name:         "expanded customer",
			raw:          `{"id":"in_3","customer":{"id":"cus_3"},"lines":{"data":[{"price":{"id":"price_m"}}]}}`,
			wantCustomer: "cus_3",
			wantPrice:    "price_m",
		},
		{
			name:         "no lines",
			raw:          `{"id":"in_4","customer":"cus_4","lines":{"data":[]}}`,
			wantCustomer: "cus_4",
		},
		{
			name:      "no customer",
			raw:       `{"id":"in_5","lines":{"data":[{"price":{"id":"price_m"}}]}}`,
			wantPrice: "price_m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInvoicePayment(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCustomer, got.CustomerID)
			assert.Equal(t, tt.wantPrice, got.PriceID)
		})
	}
}

func TestParseIntentPayment(t *testing.T) {
	raw := `{"id":"pi_1","object":"payment_intent","customer":"cus_1","metadata":{"firebaseUID":"uid-1","priceId":"price_m"}}`

	got, err := ParseIntentPayment(json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, "pi_1", got.PaymentIntentID)
	assert.Equal(t, "cus_1", got.CustomerID)
	assert.Equal(t, "uid-1", got.AccountID)
	assert.Equal(t, "price_m", got.PriceID)
}

func TestConstructEvent(t *testing.T) {
	const secret = "whsec_test"
	payload := []byte(`{"id":"evt_1","object":"event","type":"invoice.payment_succeeded","data":{"object":{"id":"in_1"}}}`)

	t.Run("valid signature", func(t *testing.T) {
		signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
			Payload:   payload,
			Secret:    secret,
			Timestamp: time.Now(),
			Scheme:    "v1",
		})

		event, err := ConstructEvent(signed.Payload, signed.Header, secret)
		require.NoError(t, err)
		assert.Equal(t, "evt_1", event.ID)
		assert.Equal(t, "invoice.payment_succeeded", string(event.Type))
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
			Payload:   payload,
			Secret:    "whsec_other",
			Timestamp: time.Now(),
			Scheme:    "v1",
		})

		_, err := ConstructEvent(signed.Payload, signed.Header, secret)
		require.Error(t, err)
		assert.True(t, ierr.IsSignatureInvalid(err))
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := ConstructEvent(payload, "", secret)
		assert.True(t, ierr.IsSignatureInvalid(err))
	})
}
