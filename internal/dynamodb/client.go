package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/types"
)

type Client struct {
	db *dynamodb.Client
}

// NewClient returns nil when DynamoDB is not the configured store
func NewClient(cfg *config.Configuration) (*Client, error) {
	if cfg.Store.Provider != types.StoreProviderDynamoDB {
		return nil, nil
	}

	awsCfg, err := config.LoadAwsConfig(context.Background(), cfg.DynamoDB.Region)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	endpoint := cfg.DynamoDB.Endpoint
	return &Client{
		db: dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}),
	}, nil
}

func (c *Client) DB() *dynamodb.Client {
	return c.db
}
