package dynamodb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/domain/account"
	"github.com/geoforest/billing/internal/domain/plan"
	ddbclient "github.com/geoforest/billing/internal/dynamodb"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// StoreSuite runs against DynamoDB Local, e.g.
// docker run -p 8000:8000 amazon/dynamodb-local
// DYNAMODB_LOCAL_ENDPOINT=http://localhost:8000
type StoreSuite struct {
	suite.Suite
	ctx      context.Context
	db       *dynamodb.Client
	accounts account.Repository
	plans    plan.Repository
}

func TestStore(t *testing.T) {
	if os.Getenv("DYNAMODB_LOCAL_ENDPOINT") == "" {
		t.Skip("DYNAMODB_LOCAL_ENDPOINT is not set")
	}
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.db = dynamodb.New(dynamodb.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(os.Getenv("DYNAMODB_LOCAL_ENDPOINT")),
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "local", SecretAccessKey: "local"}, nil
		}),
	})
}

func (s *StoreSuite) SetupTest() {
	suffix := uuid.NewString()
	cfg := config.DynamoDBConfig{
		AccountsTable: "accounts-" + suffix,
		PlansTable:    "plans-" + suffix,
		CustomerIndex: "billing_customer_id-index",
	}
	for _, input := range ddbclient.TableDefinitions(cfg) {
		_, err := s.db.CreateTable(s.ctx, input)
		s.Require().NoError(err)
	}

	log := logger.NewNopLogger()
	s.accounts = NewAccountRepository(s.db, cfg.AccountsTable, cfg.CustomerIndex, log)
	s.plans = NewPlanRepository(s.db, cfg.PlansTable, log)
}

func (s *StoreSuite) seed(id string) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	s.Require().NoError(s.accounts.Create(s.ctx, account.NewTrialAccount(id, id+"@example.com", now, 7*24*time.Hour,
		map[string]bool{"exportacao": false}, map[string]int{"smartphone": 1})))
}

func (s *StoreSuite) TestCreateIsConditional() {
	s.seed("uid-1")

	err := s.accounts.Create(s.ctx, &account.Account{ID: "uid-1", Email: "other@example.com"})
	s.Require().Error(err)
	s.True(ierr.IsAlreadyExists(err))

	got, err := s.accounts.Get(s.ctx, "uid-1")
	s.Require().NoError(err)
	s.Equal("uid-1@example.com", got.Email)
}

func (s *StoreSuite) TestSetBillingCustomerIDKeepsFirstWriter() {
	s.seed("uid-1")

	stored, err := s.accounts.SetBillingCustomerID(s.ctx, "uid-1", "cus_first")
	s.Require().NoError(err)
	s.Equal("cus_first", stored)

	stored, err = s.accounts.SetBillingCustomerID(s.ctx, "uid-1", "cus_second")
	s.Require().NoError(err)
	s.Equal("cus_first", stored)

	s.Eventually(func() bool {
		got, err := s.accounts.GetByBillingCustomerID(s.ctx, "cus_first")
		return err == nil && got.ID == "uid-1"
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *StoreSuite) TestSetBillingCustomerIDConcurrent() {
	s.seed("uid-1")

	const writers = 8
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]string, writers)
		errs    = make([]error, writers)
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = s.accounts.SetBillingCustomerID(s.ctx, "uid-1", fmt.Sprintf("cus_%d", i))
		}(i)
	}
	close(start)
	wg.Wait()

	got, err := s.accounts.Get(s.ctx, "uid-1")
	s.Require().NoError(err)
	for i := 0; i < writers; i++ {
		s.Require().NoError(errs[i])
		s.Equal(got.BillingCustomerID, results[i])
	}
}

func (s *StoreSuite) TestSetBillingCustomerIDMissingAccount() {
	_, err := s.accounts.SetBillingCustomerID(s.ctx, "uid-missing", "cus_1")
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *StoreSuite) TestApplyEntitlementIsIdempotent() {
	s.seed("uid-1")
	e := account.Entitlement{
		PlanID:   "profissional",
		Features: map[string]bool{"exportacao": true},
		Limits:   map[string]int{"smartphone": 3},
	}

	for i := 0; i < 2; i++ {
		_, err := s.accounts.ApplyEntitlement(s.ctx, "uid-1", e)
		s.Require().NoError(err)
	}

	got, err := s.accounts.Get(s.ctx, "uid-1")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, got.Status)
	s.Equal("profissional", got.PlanID)
	s.Equal(e.Features, got.Features)
	s.Equal(e.Limits, got.Limits)
	s.False(got.Trial.Active)
}

func (s *StoreSuite) TestPlanFindByPriceID() {
	s.Require().NoError(s.plans.Upsert(s.ctx, &plan.Plan{
		ID:       "profissional",
		Name:     "Profissional",
		PriceIDs: map[string]string{"mensal": "price_pro_mensal", "anual": "price_pro_anual"},
	}))

	p, err := s.plans.FindByPriceID(s.ctx, types.BillingIntervalAnnual, "price_pro_anual")
	s.Require().NoError(err)
	s.Equal("profissional", p.ID)

	_, err = s.plans.FindByPriceID(s.ctx, types.BillingIntervalMonthly, "price_pro_anual")
	s.True(ierr.IsNotFound(err))
}
