package dto

import (
	"github.com/geoforest/billing/internal/types"
)

// IdentityCreatedEvent is delivered by the identity provider when a user signs up
type IdentityCreatedEvent struct {
	UID         string `json:"uid" validate:"required"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// IdentityCreatedResponse acknowledges a trigger delivery. The outcome is
// informational; the trigger is acknowledged whatever happened.
type IdentityCreatedResponse struct {
	Accepted bool                   `json:"accepted"`
	Outcome  types.ProvisionOutcome `json:"outcome,omitempty"`
}
