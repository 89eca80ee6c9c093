package config

// DynamoDBConfig holds configuration for the DynamoDB document store
type DynamoDBConfig struct {
	Region        string `mapstructure:"region"`
	AccountsTable string `mapstructure:"accounts_table"`
	PlansTable    string `mapstructure:"plans_table"`
	// CustomerIndex is the GSI keyed by billing_customer_id
	CustomerIndex string `mapstructure:"customer_index"`
	// Endpoint overrides the service endpoint, used with DynamoDB Local
	Endpoint string `mapstructure:"endpoint"`
}
