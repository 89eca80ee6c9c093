package config

import (
	"time"

	"github.com/geoforest/billing/internal/types"
)

const (
	// DefaultTrialDays is the trial window granted at account creation.
	// Earlier releases used 15.
	DefaultTrialDays = 7
	// DefaultCurrency is the settlement currency for payment intents
	DefaultCurrency = "brl"
)

type BillingConfig struct {
	TrialDays     int             `mapstructure:"trial_days" validate:"required,gt=0"`
	Currency      string          `mapstructure:"currency" validate:"required,len=3"`
	TrialFeatures map[string]bool `mapstructure:"trial_features"`
	TrialLimits   map[string]int  `mapstructure:"trial_limits"`
	// PlanIntervals is the order in which plan price variants are matched
	PlanIntervals []types.BillingInterval `mapstructure:"plan_intervals" validate:"required,min=1"`
	// EagerCustomerCreation creates the Stripe customer at provisioning time
	EagerCustomerCreation   bool          `mapstructure:"eager_customer_creation"`
	SuccessURL              string        `mapstructure:"success_url"`
	CancelURL               string        `mapstructure:"cancel_url"`
	ReconcilePaymentIntents bool          `mapstructure:"reconcile_payment_intents"`
	PlanCacheTTL            time.Duration `mapstructure:"plan_cache_ttl"`
}

// TrialWindow returns the trial length as a duration
func (c BillingConfig) TrialWindow() time.Duration {
	return time.Duration(c.TrialDays) * 24 * time.Hour
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		TrialDays:     DefaultTrialDays,
		Currency:      DefaultCurrency,
		TrialFeatures: map[string]bool{"exportacao": false, "analise": false},
		TrialLimits:   map[string]int{"smartphone": 1, "desktop": 0},
		PlanIntervals: []types.BillingInterval{
			types.BillingIntervalMonthly,
			types.BillingIntervalAnnual,
		},
		ReconcilePaymentIntents: true,
		PlanCacheTTL:            10 * time.Minute,
	}
}
