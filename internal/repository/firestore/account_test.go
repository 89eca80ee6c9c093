package firestore

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	gfs "cloud.google.com/go/firestore"
	"github.com/geoforest/billing/internal/domain/account"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// AccountRepositorySuite runs against the Firestore emulator, e.g.
// gcloud emulators firestore start --host-port=localhost:8085
type AccountRepositorySuite struct {
	suite.Suite
	ctx    context.Context
	client *gfs.Client
	repo   account.Repository
}

func TestAccountRepository(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST is not set")
	}
	suite.Run(t, new(AccountRepositorySuite))
}

func (s *AccountRepositorySuite) SetupSuite() {
	s.ctx = context.Background()
	client, err := gfs.NewClient(s.ctx, "demo-geoforest")
	s.Require().NoError(err)
	s.client = client
}

func (s *AccountRepositorySuite) TearDownSuite() {
	if s.client != nil {
		s.NoError(s.client.Close())
	}
}

func (s *AccountRepositorySuite) SetupTest() {
	// a fresh collection per test keeps runs independent
	s.repo = NewAccountRepository(s.client, "clientes_"+uuid.NewString(), logger.NewNopLogger())
}

func (s *AccountRepositorySuite) seed(id string) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	s.Require().NoError(s.repo.Create(s.ctx, account.NewTrialAccount(id, id+"@example.com", now, 7*24*time.Hour,
		map[string]bool{"exportacao": false}, map[string]int{"smartphone": 1})))
}

func (s *AccountRepositorySuite) TestCreateIsConditional() {
	s.seed("uid-1")

	err := s.repo.Create(s.ctx, &account.Account{ID: "uid-1", Email: "other@example.com"})
	s.Require().Error(err)
	s.True(ierr.IsAlreadyExists(err))

	got, err := s.repo.Get(s.ctx, "uid-1")
	s.Require().NoError(err)
	s.Equal("uid-1@example.com", got.Email)
	s.Equal(types.SubscriptionStatusTrial, got.Status)
	s.True(got.Trial.Active)
}

func (s *AccountRepositorySuite) TestGetMissingAccount() {
	_, err := s.repo.Get(s.ctx, "uid-missing")
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AccountRepositorySuite) TestSetBillingCustomerIDKeepsFirstWriter() {
	s.seed("uid-1")

	stored, err := s.repo.SetBillingCustomerID(s.ctx, "uid-1", "cus_first")
	s.Require().NoError(err)
	s.Equal("cus_first", stored)

	stored, err = s.repo.SetBillingCustomerID(s.ctx, "uid-1", "cus_second")
	s.Require().NoError(err)
	s.Equal("cus_first", stored)

	got, err := s.repo.GetByBillingCustomerID(s.ctx, "cus_first")
	s.Require().NoError(err)
	s.Equal("uid-1", got.ID)

	_, err = s.repo.GetByBillingCustomerID(s.ctx, "cus_second")
	s.True(ierr.IsNotFound(err))
}

func (s *AccountRepositorySuite) TestSetBillingCustomerIDConcurrent() {
	s.seed("uid-1")

	const writers = 4
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
			results[i], errs[i] = s.repo.SetBillingCustomerID(s.ctx, "uid-1", fmt.Sprintf("cus_%d", i))
		}(i)
	}
	close(start)
	wg.Wait()

	got, err := s.repo.Get(s.ctx, "uid-1")
	s.Require().NoError(err)
	s.Require().NotEmpty(got.BillingCustomerID)

	// a writer may exhaust its transaction retries under contention, but every
	// writer that returns sees the single stored id
	succeeded := 0
	for i := 0; i < writers; i++ {
		if errs[i] != nil {
			continue
		}
		succeeded++
		s.Equal(got.BillingCustomerID, results[i])
	}
	s.Positive(succeeded)
}

func (s *AccountRepositorySuite) TestSetBillingCustomerIDMissingAccount() {
	_, err := s.repo.SetBillingCustomerID(s.ctx, "uid-missing", "cus_1")
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AccountRepositorySuite) TestApplyEntitlementIsIdempotent() {
	s.seed("uid-1")
	e := account.Entitlement{
		PlanID:   "profissional",
		Features: map[string]bool{"exportacao": true, "analise": true},
		Limits:   map[string]int{"smartphone": 3, "desktop": 1},
	}

	for i := 0; i < 2; i++ {
		_, err := s.repo.ApplyEntitlement(s.ctx, "uid-1", e)
		s.Require().NoError(err)
	}

	got, err := s.repo.Get(s.ctx, "uid-1")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, got.Status)
	s.Equal("profissional", got.PlanID)
	s.Equal(e.Features, got.Features)
	s.Equal(e.Limits, got.Limits)
	s.False(got.Trial.Active)
	s.Equal("uid-1@example.com", got.Email)
}
