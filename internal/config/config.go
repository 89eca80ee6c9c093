package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geoforest/billing/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Store      StoreConfig      `validate:"required"`
	DynamoDB   DynamoDBConfig   `mapstructure:"dynamodb"`
	Firebase   FirebaseConfig   `mapstructure:"firebase"`
	Auth       AuthConfig       `validate:"required"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Billing    BillingConfig    `validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required,oneof=local aws_lambda_api"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// StoreConfig selects the document store and names its collections
type StoreConfig struct {
	Provider           types.StoreProvider `mapstructure:"provider" validate:"required,oneof=firestore dynamodb"`
	AccountsCollection string              `mapstructure:"accounts_collection" validate:"required"`
	PlansCollection    string              `mapstructure:"plans_collection" validate:"required"`
}

type FirebaseConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type AuthConfig struct {
	Provider types.AuthProvider `mapstructure:"provider" validate:"required,oneof=firebase jwt"`
	// Secret signs HMAC tokens when the jwt provider is used
	Secret string `mapstructure:"secret"`
	// TriggerKeys holds SHA-256 hashes of the keys the identity trigger may present
	TriggerKeys map[string]TriggerKeyDetails `mapstructure:"trigger_keys"`
}

type TriggerKeyDetails struct {
	Name     string `mapstructure:"name"`
	IsActive bool   `mapstructure:"is_active"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type RateLimitConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	PerMinute float64 `mapstructure:"per_minute"`
	Burst     int     `mapstructure:"burst"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

func NewConfig() (*Configuration, error) {
	// .env is optional, real deployments inject the environment directly
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/geoforest")

	v.SetEnvPrefix("GEOFOREST")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("store.provider", types.StoreProviderFirestore)
	v.SetDefault("store.accounts_collection", "clientes")
	v.SetDefault("store.plans_collection", "planosDeLicenca")
	v.SetDefault("dynamodb.customer_index", "billing_customer_id-index")
	v.SetDefault("auth.provider", types.AuthProviderFirebase)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("rate_limit.per_minute", 10)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("billing.trial_days", DefaultTrialDays)
	v.SetDefault("billing.currency", DefaultCurrency)
	v.SetDefault("billing.plan_intervals", []string{
		string(types.BillingIntervalMonthly),
		string(types.BillingIntervalAnnual),
	})
	v.SetDefault("billing.trial_features", map[string]bool{"exportacao": false, "analise": false})
	v.SetDefault("billing.trial_limits", map[string]int{"smartphone": 1, "desktop": 0})
	v.SetDefault("billing.reconcile_payment_intents", true)
	v.SetDefault("billing.plan_cache_ttl", 10*time.Minute)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Auth.Provider == types.AuthProviderJWT && c.Auth.Secret == "" {
		return errors.New("auth.secret is required when auth.provider is jwt")
	}
	if c.Store.Provider == types.StoreProviderDynamoDB && (c.DynamoDB.AccountsTable == "" || c.DynamoDB.PlansTable == "") {
		return errors.New("dynamodb.accounts_table and dynamodb.plans_table are required when store.provider is dynamodb")
	}
	return nil
}

// GetDefaultConfig returns a configuration suitable for tests and local scripts
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Store: StoreConfig{
			Provider:           types.StoreProviderFirestore,
			AccountsCollection: "clientes",
			PlansCollection:    "planosDeLicenca",
		},
		Auth:    AuthConfig{Provider: types.AuthProviderFirebase},
		Stripe:  StripeConfig{EphemeralKeyAPIVersion: DefaultEphemeralKeyAPIVersion},
		Billing: DefaultBillingConfig(),
		Cache:   CacheConfig{Enabled: true},
	}
}
