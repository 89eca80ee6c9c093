package dto

import (
	"strings"

	ierr "github.com/geoforest/billing/internal/errors"
)

type CreatePaymentSheetRequest struct {
	PriceID string `json:"priceId"`
}

// Validate trims the price id and rejects an empty one
func (r *CreatePaymentSheetRequest) Validate() error {
	r.PriceID = strings.TrimSpace(r.PriceID)
	return validatePriceID(r.PriceID)
}

// PaymentSheetResponse carries what the mobile payment sheet needs to
// present and confirm the payment
type PaymentSheetResponse struct {
	PaymentIntent  string `json:"paymentIntent"`
	EphemeralKey   string `json:"ephemeralKey"`
	Customer       string `json:"customer"`
	PublishableKey string `json:"publishableKey"`
}

type CreateCheckoutSessionRequest struct {
	PriceID string `json:"priceId"`
}

func (r *CreateCheckoutSessionRequest) Validate() error {
	r.PriceID = strings.TrimSpace(r.PriceID)
	return validatePriceID(r.PriceID)
}

type CheckoutSessionResponse struct {
	URL string `json:"url"`
}

func validatePriceID(priceID string) error {
	if priceID == "" {
		return ierr.NewError("price id is required").
			WithHint("priceId is required").
			WithReportableDetails(map[string]any{"priceId": "required"}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
