package interfaces

import (
	"context"

	"github.com/geoforest/billing/internal/api/dto"
	"github.com/geoforest/billing/internal/types"
)

// AccountProvisionerService creates the trial account for a new identity
type AccountProvisionerService interface {
	// HandleIdentityCreated never fails towards the caller. The returned
	// outcome is for logging and tests only.
	HandleIdentityCreated(ctx context.Context, evt dto.IdentityCreatedEvent) types.ProvisionOutcome
}

// CheckoutService starts purchases for the authenticated caller
type CheckoutService interface {
	CreatePaymentSheet(ctx context.Context, req dto.CreatePaymentSheetRequest) (*dto.PaymentSheetResponse, error)
	CreateCheckoutSession(ctx context.Context, req dto.CreateCheckoutSessionRequest) (*dto.CheckoutSessionResponse, error)
}

// EntitlementReconcilerService applies paid plans from verified billing events
type EntitlementReconcilerService interface {
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookResult, error)
}
