package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/logger"
)

// TableDefinitions returns the create requests for the account and plan tables.
// Accounts carry a GSI on billing_customer_id for webhook reverse lookups.
func TableDefinitions(cfg config.DynamoDBConfig) []*dynamodb.CreateTableInput {
	return []*dynamodb.CreateTableInput{
		{
			TableName:   aws.String(cfg.AccountsTable),
			BillingMode: ddbtypes.BillingModePayPerRequest,
			AttributeDefinitions: []ddbtypes.AttributeDefinition{
				{AttributeName: aws.String("account_id"), AttributeType: ddbtypes.ScalarAttributeTypeS},
				{AttributeName: aws.String("billing_customer_id"), AttributeType: ddbtypes.ScalarAttributeTypeS},
			},
			KeySchema: []ddbtypes.KeySchemaElement{
				{AttributeName: aws.String("account_id"), KeyType: ddbtypes.KeyTypeHash},
			},
			GlobalSecondaryIndexes: []ddbtypes.GlobalSecondaryIndex{
				{
					IndexName: aws.String(cfg.CustomerIndex),
					KeySchema: []ddbtypes.KeySchemaElement{
						{AttributeName: aws.String("billing_customer_id"), KeyType: ddbtypes.KeyTypeHash},
					},
					Projection: &ddbtypes.Projection{ProjectionType: ddbtypes.ProjectionTypeAll},
				},
			},
		},
		{
			TableName:   aws.String(cfg.PlansTable),
			BillingMode: ddbtypes.BillingModePayPerRequest,
			AttributeDefinitions: []ddbtypes.AttributeDefinition{
				{AttributeName: aws.String("plan_id"), AttributeType: ddbtypes.ScalarAttributeTypeS},
			},
			KeySchema: []ddbtypes.KeySchemaElement{
				{AttributeName: aws.String("plan_id"), KeyType: ddbtypes.KeyTypeHash},
			},
		},
	}
}

// EnsureTables creates any missing table. Existing tables are left alone.
func (c *Client) EnsureTables(ctx context.Context, cfg config.DynamoDBConfig, log *logger.Logger) error {
	for _, input := range TableDefinitions(cfg) {
		_, err := c.db.CreateTable(ctx, input)
		var inUse *ddbtypes.ResourceInUseException
		switch {
		case err == nil:
			log.Infow("created dynamodb table", "table", aws.ToString(input.TableName))
		case errors.As(err, &inUse):
			log.Infow("dynamodb table already exists", "table", aws.ToString(input.TableName))
		default:
			return fmt.Errorf("failed to create table %s: %w", aws.ToString(input.TableName), err)
		}
	}
	return nil
}
