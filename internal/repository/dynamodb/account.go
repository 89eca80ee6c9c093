package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/geoforest/billing/internal/domain/account"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/types"
)

type accountRepository struct {
	db            *dynamodb.Client
	table         string
	customerIndex string
	log           *logger.Logger
}

func NewAccountRepository(db *dynamodb.Client, table, customerIndex string, log *logger.Logger) account.Repository {
	return &accountRepository{
		db:            db,
		table:         table,
		customerIndex: customerIndex,
		log:           log,
	}
}

func (r *accountRepository) key(id string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		"account_id": &ddbtypes.AttributeValueMemberS{Value: id},
	}
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	r.log.Debugw("creating account", "account_id", a.ID)

	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode account").
			Mark(ierr.ErrDatabase)
	}

	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(account_id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return ierr.WithError(err).
				WithHint("Account already exists").
				WithReportableDetails(map[string]any{"account_id": a.ID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create account").
			WithReportableDetails(map[string]any{"account_id": a.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id string) (*account.Account, error) {
	r.log.Debugw("getting account", "account_id", id)

	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            r.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get account").
			WithReportableDetails(map[string]any{"account_id": id}).
			Mark(ierr.ErrDatabase)
	}
	if out.Item == nil {
		return nil, notFound(id)
	}
	return decodeAccount(out.Item)
}

func (r *accountRepository) GetByBillingCustomerID(ctx context.Context, customerID string) (*account.Account, error) {
	r.log.Debugw("getting account by billing customer", "billing_customer_id", customerID)

	out, err := r.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(r.customerIndex),
		KeyConditionExpression: aws.String("billing_customer_id = :cid"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":cid": &ddbtypes.AttributeValueMemberS{Value: customerID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to look up account").
			WithReportableDetails(map[string]any{"billing_customer_id": customerID}).
			Mark(ierr.ErrDatabase)
	}
	if len(out.Items) == 0 {
		return nil, ierr.NewError("account not found for billing customer").
			WithHint("Account was not found").
			WithReportableDetails(map[string]any{"billing_customer_id": customerID}).
			Mark(ierr.ErrNotFound)
	}
	return decodeAccount(out.Items[0])
}

// SetBillingCustomerID writes only while the attribute is absent. A failed
// condition means either the record is missing or another writer won, and
// the consistent re-read tells the two apart.
func (r *accountRepository) SetBillingCustomerID(ctx context.Context, id, customerID string) (string, error) {
	now, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return "", ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	_, err = r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 r.key(id),
		UpdateExpression:    aws.String("SET billing_customer_id = :cid, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(account_id) AND attribute_not_exists(billing_customer_id)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":cid": &ddbtypes.AttributeValueMemberS{Value: customerID},
			":now": now,
		},
	})
	if err == nil {
		return customerID, nil
	}
	if !isConditionFailed(err) {
		return "", ierr.WithError(err).
			WithHint("Failed to store billing customer").
			WithReportableDetails(map[string]any{"account_id": id}).
			Mark(ierr.ErrDatabase)
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	r.log.Debugw("billing customer id already set",
		"account_id", id,
		"billing_customer_id", current.BillingCustomerID,
	)
	return current.BillingCustomerID, nil
}

func (r *accountRepository) ApplyEntitlement(ctx context.Context, id string, e account.Entitlement) (*account.Account, error) {
	values := map[string]any{
		":status":   string(types.SubscriptionStatusActive),
		":plan":     e.PlanID,
		":features": nonNilBools(e.Features),
		":limits":   nonNilInts(e.Limits),
		":inactive": false,
		":now":      time.Now().UTC(),
	}
	attrValues := make(map[string]ddbtypes.AttributeValue, len(values))
	for k, v := range values {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		attrValues[k] = av
	}

	out, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 r.key(id),
		UpdateExpression:    aws.String("SET #status = :status, #plan = :plan, #features = :features, #limits = :limits, #trial.#active = :inactive, #updated = :now"),
		ConditionExpression: aws.String("attribute_exists(account_id)"),
		ExpressionAttributeNames: map[string]string{
			"#status":   "status",
			"#plan":     "plan_id",
			"#features": "features",
			"#limits":   "limits",
			"#trial":    "trial",
			"#active":   "active",
			"#updated":  "updated_at",
		},
		ExpressionAttributeValues: attrValues,
		ReturnValues:              ddbtypes.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, notFound(id)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to activate plan").
			WithReportableDetails(map[string]any{"account_id": id, "plan_id": e.PlanID}).
			Mark(ierr.ErrDatabase)
	}
	return decodeAccount(out.Attributes)
}

func decodeAccount(item map[string]ddbtypes.AttributeValue) (*account.Account, error) {
	var a account.Account
	if err := attributevalue.UnmarshalMap(item, &a); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Stored account is malformed").
			Mark(ierr.ErrDatabase)
	}
	return &a, nil
}

func notFound(id string) error {
	return ierr.NewErrorf("account %s not found", id).
		WithHintf("Account %s was not found", id).
		WithReportableDetails(map[string]any{"account_id": id}).
		Mark(ierr.ErrNotFound)
}

func isConditionFailed(err error) bool {
	var ccf *ddbtypes.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// attributevalue encodes nil maps as NULL, which breaks later nested updates
func nonNilBools(m map[string]bool) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	return m
}

func nonNilInts(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
