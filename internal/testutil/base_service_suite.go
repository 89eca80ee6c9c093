package testutil

import (
	"context"
	"time"

	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/domain/account"
	"github.com/geoforest/billing/internal/domain/plan"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/types"
	"github.com/geoforest/billing/internal/validator"
	"github.com/stretchr/testify/suite"
)

const (
	TestWebhookSecret  = "whsec_test_secret"
	TestPublishableKey = "pk_test_123"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	AccountRepo *InMemoryAccountStore
	PlanRepo    *InMemoryPlanStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	gateway *FakeGateway
	logger  *logger.Logger
	config  *config.Configuration
	now     time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Stripe.SecretKey = "sk_test_123"
	cfg.Stripe.PublishableKey = TestPublishableKey
	cfg.Stripe.WebhookSecret = TestWebhookSecret
	cfg.Billing.SuccessURL = "https://example.test/success"
	cfg.Billing.CancelURL = "https://example.test/cancel"

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.stores = Stores{
		AccountRepo: NewInMemoryAccountStore(),
		PlanRepo:    NewInMemoryPlanStore(),
	}
	s.gateway = NewFakeGateway(TestWebhookSecret)
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.AccountRepo.Clear()
	s.stores.PlanRepo.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetCallerContext returns the test context with a verified caller
func (s *BaseServiceTestSuite) GetCallerContext(uid, email string) context.Context {
	return WithCaller(s.ctx, uid, email)
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetGateway returns the fake billing provider
func (s *BaseServiceTestSuite) GetGateway() *FakeGateway {
	return s.gateway
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// SeedTrialAccount stores a trial account as the provisioner would
func (s *BaseServiceTestSuite) SeedTrialAccount(uid, email string) *account.Account {
	billing := s.config.Billing
	a := account.NewTrialAccount(uid, email, s.now, billing.TrialWindow(), billing.TrialFeatures, billing.TrialLimits)
	s.stores.AccountRepo.Put(a)
	return a
}

// SeedPlan stores a plan with monthly and annual prices
func (s *BaseServiceTestSuite) SeedPlan(id, monthlyPrice, annualPrice string) *plan.Plan {
	p := &plan.Plan{
		ID:       id,
		Name:     id,
		Features: map[string]bool{"exportacao": true, "analise": true},
		Limits:   map[string]int{"smartphone": 3, "desktop": 1},
		PriceIDs: map[string]string{
			string(types.BillingIntervalMonthly): monthlyPrice,
			string(types.BillingIntervalAnnual):  annualPrice,
		},
	}
	_ = s.stores.PlanRepo.Upsert(context.Background(), p)
	return p
}
