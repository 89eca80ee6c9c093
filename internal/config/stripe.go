package config

import (
	"fmt"
	"strings"
)

// DefaultEphemeralKeyAPIVersion is the API version the mobile payment sheet is built against
const DefaultEphemeralKeyAPIVersion = "2024-04-10"

// StripeConfig holds the billing provider credentials. They are checked by
// Validate when the API server starts, not by Configuration.Validate, so
// tooling such as plan seeding runs without them.
type StripeConfig struct {
	SecretKey              string `mapstructure:"secret_key"`
	PublishableKey         string `mapstructure:"publishable_key"`
	WebhookSecret          string `mapstructure:"webhook_secret"`
	EphemeralKeyAPIVersion string `mapstructure:"ephemeral_key_api_version"`
}

// Validate requires all three keys
func (c StripeConfig) Validate() error {
	var missing []string
	if c.SecretKey == "" {
		missing = append(missing, "stripe.secret_key")
	}
	if c.PublishableKey == "" {
		missing = append(missing, "stripe.publishable_key")
	}
	if c.WebhookSecret == "" {
		missing = append(missing, "stripe.webhook_secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing stripe configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
