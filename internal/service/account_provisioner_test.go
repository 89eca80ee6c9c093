package service

import (
	"testing"
	"time"

	"github.com/geoforest/billing/internal/api/dto"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/idempotency"
	"github.com/geoforest/billing/internal/sentry"
	"github.com/geoforest/billing/internal/testutil"
	"github.com/geoforest/billing/internal/types"
	"github.com/stretchr/testify/suite"
)

type AccountProvisionerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service AccountProvisionerService
}

func TestAccountProvisionerService(t *testing.T) {
	suite.Run(t, new(AccountProvisionerServiceSuite))
}

func (s *AccountProvisionerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewAccountProvisionerService(s.serviceParams())
}

func (s *AccountProvisionerServiceSuite) serviceParams() ServiceParams {
	return newTestServiceParams(&s.BaseServiceTestSuite)
}

func (s *AccountProvisionerServiceSuite) TestCreatesTrialAccount() {
	before := time.Now().UTC()
	outcome := s.service.HandleIdentityCreated(s.GetContext(), dto.IdentityCreatedEvent{
		UID:   "uid-1",
		Email: "ana@example.com",
	})
	s.Equal(types.ProvisionOutcomeCreated, outcome)

	acct, err := s.GetStores().AccountRepo.Get(s.GetContext(), "uid-1")
	s.Require().NoError(err)
	s.Equal("ana@example.com", acct.Email)
	s.Equal(types.SubscriptionStatusTrial, acct.Status)
	s.True(acct.Trial.Active)
	s.Empty(acct.BillingCustomerID)
	s.Equal(map[string]bool{"exportacao": false, "analise": false}, acct.Features)
	s.Equal(map[string]int{"smartphone": 1, "desktop": 0}, acct.Limits)

	s.False(acct.Trial.Start.Before(before))
	s.Equal(7*24*time.Hour, acct.Trial.End.Sub(acct.Trial.Start))
	s.Equal(acct.Trial.Start, acct.CreatedAt)
	s.Zero(s.GetGateway().TotalCalls())
}

func (s *AccountProvisionerServiceSuite) TestExistingAccountIsLeftUntouched() {
	existing := s.SeedTrialAccount("uid-1", "old@example.com")
	existing.Status = types.SubscriptionStatusActive
	existing.PlanID = "pro"
	s.GetStores().AccountRepo.Put(existing)

	outcome := s.service.HandleIdentityCreated(s.GetContext(), dto.IdentityCreatedEvent{
		UID:   "uid-1",
		Email: "new@example.com",
	})
	s.Equal(types.ProvisionOutcomeExists, outcome)

	acct, err := s.GetStores().AccountRepo.Get(s.GetContext(), "uid-1")
	s.Require().NoError(err)
	s.Equal("old@example.com", acct.Email)
	s.Equal(types.SubscriptionStatusActive, acct.Status)
	s.Equal("pro", acct.PlanID)
}

func (s *AccountProvisionerServiceSuite) TestSkipsIdentityWithoutEmail() {
	tests := []struct {
		name string
		evt  dto.IdentityCreatedEvent
	}{
		{name: "empty email", evt: dto.IdentityCreatedEvent{UID: "uid-1"}},
		{name: "blank email", evt: dto.IdentityCreatedEvent{UID: "uid-1", Email: "   "}},
		{name: "empty uid", evt: dto.IdentityCreatedEvent{Email: "ana@example.com"}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			outcome := s.service.HandleIdentityCreated(s.GetContext(), tt.evt)
			s.Equal(types.ProvisionOutcomeSkipped, outcome)
			s.Zero(s.GetStores().AccountRepo.Len())
			s.Zero(s.GetStores().AccountRepo.Calls("create"))
		})
	}
}

func (s *AccountProvisionerServiceSuite) TestStoreFailureIsReported() {
	s.GetStores().AccountRepo.Err = ierr.NewError("unavailable").Mark(ierr.ErrDatabase)

	outcome := s.service.HandleIdentityCreated(s.GetContext(), dto.IdentityCreatedEvent{
		UID:   "uid-1",
		Email: "ana@example.com",
	})
	s.Equal(types.ProvisionOutcomeFailed, outcome)
}

func (s *AccountProvisionerServiceSuite) TestEagerCustomerCreation() {
	params := s.serviceParams()
	cfg := *params.Config
	cfg.Billing.EagerCustomerCreation = true
	params.Config = &cfg
	svc := NewAccountProvisionerService(params)

	outcome := svc.HandleIdentityCreated(s.GetContext(), dto.IdentityCreatedEvent{
		UID:   "uid-1",
		Email: "ana@example.com",
	})
	s.Equal(types.ProvisionOutcomeCreated, outcome)
	s.Equal(1, s.GetGateway().Calls(testutil.OpCreateCustomer))

	acct, err := s.GetStores().AccountRepo.Get(s.GetContext(), "uid-1")
	s.Require().NoError(err)
	s.Equal("cus_test_1", acct.BillingCustomerID)
	s.Equal("uid-1", s.GetGateway().CustomerAccounts["cus_test_1"])
}

func (s *AccountProvisionerServiceSuite) TestEagerCustomerFailureStillCreatesAccount() {
	params := s.serviceParams()
	cfg := *params.Config
	cfg.Billing.EagerCustomerCreation = true
	params.Config = &cfg
	svc := NewAccountProvisionerService(params)
	s.GetGateway().Errs[testutil.OpCreateCustomer] = ierr.NewError("stripe down").Mark(ierr.ErrHTTPClient)

	outcome := svc.HandleIdentityCreated(s.GetContext(), dto.IdentityCreatedEvent{
		UID:   "uid-1",
		Email: "ana@example.com",
	})
	s.Equal(types.ProvisionOutcomeCreated, outcome)

	acct, err := s.GetStores().AccountRepo.Get(s.GetContext(), "uid-1")
	s.Require().NoError(err)
	s.Empty(acct.BillingCustomerID)
}

// newTestServiceParams wires the suite's in-memory stores and fake gateway
func newTestServiceParams(base *testutil.BaseServiceTestSuite) ServiceParams {
	return NewServiceParams(
		base.GetLogger(),
		base.GetConfig(),
		base.GetStores().AccountRepo,
		base.GetStores().PlanRepo,
		base.GetGateway(),
		idempotency.NewGenerator(),
		sentry.NewSentryService(base.GetConfig(), base.GetLogger()),
	)
}
