package types

// Stripe event types handled by the entitlement reconciler
const (
	WebhookEventTypeInvoicePaymentSucceeded = "invoice.payment_succeeded"
	WebhookEventTypePaymentIntentSucceeded  = "payment_intent.succeeded"
)

// ReconcileOutcome labels what the reconciler did with a delivery
type ReconcileOutcome string

const (
	ReconcileOutcomeApplied ReconcileOutcome = "applied"
	ReconcileOutcomeIgnored ReconcileOutcome = "ignored"
)

const (
	HeaderRequestID       = "X-Request-ID"
	HeaderAuthorization   = "Authorization"
	HeaderStripeSignature = "Stripe-Signature"
	HeaderTriggerKey      = "x-trigger-key"
)
