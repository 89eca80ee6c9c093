package account

import (
	"time"

	"github.com/geoforest/billing/internal/types"
	"github.com/samber/lo"
)

// Account is the per-identity billing and entitlement record. Its ID is the
// identity provider uid.
type Account struct {
	// ID is the account identifier, the primary key of the record
	ID string `json:"id" firestore:"-" dynamodbav:"account_id"`

	Email string `json:"email" firestore:"email" dynamodbav:"email"`

	// BillingCustomerID is the Stripe customer id. Empty until provisioned,
	// immutable afterwards.
	BillingCustomerID string `json:"billing_customer_id,omitempty" firestore:"stripeCustomerId,omitempty" dynamodbav:"billing_customer_id,omitempty"`

	Status types.SubscriptionStatus `json:"status" firestore:"statusAssinatura" dynamodbav:"status"`

	// PlanID is empty while on trial
	PlanID string `json:"plan_id,omitempty" firestore:"planoId,omitempty" dynamodbav:"plan_id,omitempty"`

	Features map[string]bool `json:"features" firestore:"features" dynamodbav:"features"`
	Limits   map[string]int  `json:"limits" firestore:"limites" dynamodbav:"limits"`
	Trial    Trial           `json:"trial" firestore:"trial" dynamodbav:"trial"`

	CreatedAt time.Time `json:"created_at" firestore:"criadoEm" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" firestore:"atualizadoEm" dynamodbav:"updated_at"`
}

// Trial tracks the free trial granted at creation
type Trial struct {
	Active bool      `json:"active" firestore:"ativo" dynamodbav:"active"`
	Start  time.Time `json:"start" firestore:"dataInicio" dynamodbav:"start"`
	End    time.Time `json:"end" firestore:"dataFim" dynamodbav:"end"`
}

// Entitlement is the set of grants applied to an account when a plan activates
type Entitlement struct {
	PlanID   string
	Features map[string]bool
	Limits   map[string]int
}

// NewTrialAccount builds the initial record written at identity creation
func NewTrialAccount(id, email string, now time.Time, window time.Duration, features map[string]bool, limits map[string]int) *Account {
	return &Account{
		ID:       id,
		Email:    email,
		Status:   types.SubscriptionStatusTrial,
		Features: lo.Assign(map[string]bool{}, features),
		Limits:   lo.Assign(map[string]int{}, limits),
		Trial: Trial{
			Active: true,
			Start:  now,
			End:    now.Add(window),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasBillingCustomer reports whether a Stripe customer is already linked
func (a *Account) HasBillingCustomer() bool {
	return a != nil && a.BillingCustomerID != ""
}

// Apply sets the activated state for the entitlement. Applying the same
// entitlement twice yields the same record apart from UpdatedAt.
func (a *Account) Apply(e Entitlement, now time.Time) {
	a.Status = types.SubscriptionStatusActive
	a.PlanID = e.PlanID
	a.Features = lo.Assign(map[string]bool{}, e.Features)
	a.Limits = lo.Assign(map[string]int{}, e.Limits)
	a.Trial.Active = false
	a.UpdatedAt = now
}
