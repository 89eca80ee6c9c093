package dto

import (
	"github.com/geoforest/billing/internal/types"
)

// WebhookResponse is the body returned to Stripe on success
type WebhookResponse struct {
	Received bool `json:"received"`
}

// WebhookResult describes what the reconciler did with one delivery
type WebhookResult struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	Outcome   types.ReconcileOutcome `json:"outcome"`
	AccountID string                 `json:"account_id,omitempty"`
	PlanID    string                 `json:"plan_id,omitempty"`
}
