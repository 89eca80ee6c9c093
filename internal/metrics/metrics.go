package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProvisioningTotal counts identity trigger deliveries by outcome.
	ProvisioningTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoforest",
		Subsystem: "billing",
		Name:      "provisioning_total",
		Help:      "Account provisioning attempts by outcome.",
	}, []string{"outcome"})

	// CheckoutTotal counts callable checkouts by variant and result.
	CheckoutTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoforest",
		Subsystem: "billing",
		Name:      "checkout_total",
		Help:      "Checkout calls by variant and result status.",
	}, []string{"variant", "status"})

	// BillingCustomersCreated counts Stripe customers created, split by whether
	// the id was linked or lost the compare-and-set.
	BillingCustomersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoforest",
		Subsystem: "billing",
		Name:      "customers_created_total",
		Help:      "Stripe customers created by link result.",
	}, []string{"result"})

	// WebhookRequestsTotal counts Stripe webhook requests by event type and outcome.
	WebhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoforest",
		Subsystem: "billing",
		Name:      "webhook_requests_total",
		Help:      "Stripe webhook requests by event type and outcome.",
	}, []string{"event_type", "outcome"})

	// WebhookDuration tracks Stripe webhook processing latency.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geoforest",
		Subsystem: "billing",
		Name:      "webhook_duration_seconds",
		Help:      "Stripe webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})

	// RateLimitedTotal counts callable requests rejected by the per-account limiter.
	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geoforest",
		Subsystem: "billing",
		Name:      "rate_limited_total",
		Help:      "Callable requests rejected by the rate limiter.",
	})
)
