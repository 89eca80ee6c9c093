package config

import (
	"testing"
	"time"

	"github.com/geoforest/billing/internal/types"
	"github.com/stretchr/testify/assert"
)

func validConfig() *Configuration {
	cfg := GetDefaultConfig()
	cfg.Stripe.SecretKey = "sk_test_123"
	cfg.Stripe.PublishableKey = "pk_test_123"
	cfg.Stripe.WebhookSecret = "whsec_123"
	return cfg
}

func TestConfiguration_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr bool
	}{
		{name: "defaults with stripe keys", mutate: func(c *Configuration) {}},
		{name: "no stripe keys", mutate: func(c *Configuration) { c.Stripe = StripeConfig{} }},
		{name: "unknown store provider", mutate: func(c *Configuration) { c.Store.Provider = "mongo" }, wantErr: true},
		{name: "jwt without secret", mutate: func(c *Configuration) { c.Auth.Provider = types.AuthProviderJWT }, wantErr: true},
		{
			name: "jwt with secret",
			mutate: func(c *Configuration) {
				c.Auth.Provider = types.AuthProviderJWT
				c.Auth.Secret = "s3cret"
			},
		},
		{name: "dynamodb without tables", mutate: func(c *Configuration) { c.Store.Provider = types.StoreProviderDynamoDB }, wantErr: true},
		{
			name: "dynamodb with tables",
			mutate: func(c *Configuration) {
				c.Store.Provider = types.StoreProviderDynamoDB
				c.DynamoDB.AccountsTable = "accounts"
				c.DynamoDB.PlansTable = "plans"
			},
		},
		{name: "zero trial days", mutate: func(c *Configuration) { c.Billing.TrialDays = 0 }, wantErr: true},
		{name: "bad currency", mutate: func(c *Configuration) { c.Billing.Currency = "reais" }, wantErr: true},
		{name: "no plan intervals", mutate: func(c *Configuration) { c.Billing.PlanIntervals = nil }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStripeConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *StripeConfig)
		wantMissing []string
	}{
		{name: "all keys", mutate: func(c *StripeConfig) {}},
		{name: "missing secret key", mutate: func(c *StripeConfig) { c.SecretKey = "" }, wantMissing: []string{"stripe.secret_key"}},
		{name: "missing publishable key", mutate: func(c *StripeConfig) { c.PublishableKey = "" }, wantMissing: []string{"stripe.publishable_key"}},
		{name: "missing webhook secret", mutate: func(c *StripeConfig) { c.WebhookSecret = "" }, wantMissing: []string{"stripe.webhook_secret"}},
		{
			name:        "no keys",
			mutate:      func(c *StripeConfig) { *c = StripeConfig{} },
			wantMissing: []string{"stripe.secret_key", "stripe.publishable_key", "stripe.webhook_secret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig().Stripe
			tt.mutate(&cfg)
			err := cfg.Validate()
			if len(tt.wantMissing) == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			for _, key := range tt.wantMissing {
				assert.Contains(t, err.Error(), key)
			}
		})
	}
}

func TestBillingConfig_TrialWindow(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, DefaultBillingConfig().TrialWindow())
}
