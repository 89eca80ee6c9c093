package types

// SubscriptionStatus is the entitlement state of an account
type SubscriptionStatus string

const (
	SubscriptionStatusTrial  SubscriptionStatus = "trial"
	SubscriptionStatusActive SubscriptionStatus = "active"
)

// BillingInterval names a price variant of a plan
type BillingInterval string

const (
	BillingIntervalMonthly BillingInterval = "mensal"
	BillingIntervalAnnual  BillingInterval = "anual"
)

// Metadata keys written on Stripe objects. The reconciler reads them back,
// so they must not change once customers exist.
const (
	MetadataKeyAccountID = "firebaseUID"
	MetadataKeyPriceID   = "priceId"
)

// ProvisionOutcome labels what the provisioner did with an identity event
type ProvisionOutcome string

const (
	ProvisionOutcomeCreated ProvisionOutcome = "created"
	ProvisionOutcomeExists  ProvisionOutcome = "exists"
	ProvisionOutcomeSkipped ProvisionOutcome = "skipped"
	ProvisionOutcomeFailed  ProvisionOutcome = "failed"
)
