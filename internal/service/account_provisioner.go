package service

import (
	"context"
	"strings"
	"time"

	"github.com/geoforest/billing/internal/api/dto"
	"github.com/geoforest/billing/internal/domain/account"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/interfaces"
	"github.com/geoforest/billing/internal/metrics"
	"github.com/geoforest/billing/internal/types"
)

type AccountProvisionerService = interfaces.AccountProvisionerService

type accountProvisionerService struct {
	ServiceParams
}

func NewAccountProvisionerService(params ServiceParams) AccountProvisionerService {
	return &accountProvisionerService{
		ServiceParams: params,
	}
}

func (s *accountProvisionerService) HandleIdentityCreated(ctx context.Context, evt dto.IdentityCreatedEvent) types.ProvisionOutcome {
	outcome := s.provision(ctx, evt)
	metrics.ProvisioningTotal.WithLabelValues(string(outcome)).Inc()
	return outcome
}

func (s *accountProvisionerService) provision(ctx context.Context, evt dto.IdentityCreatedEvent) types.ProvisionOutcome {
	uid := strings.TrimSpace(evt.UID)
	email := strings.TrimSpace(evt.Email)

	if uid == "" {
		s.Logger.Warnw("identity event without uid, skipping")
		return types.ProvisionOutcomeSkipped
	}
	if email == "" {
		s.Logger.Warnw("identity has no email, skipping account creation", "account_id", uid)
		return types.ProvisionOutcomeSkipped
	}

	billing := s.Config.Billing
	acct := account.NewTrialAccount(uid, email, time.Now().UTC(), billing.TrialWindow(), billing.TrialFeatures, billing.TrialLimits)

	if err := s.AccountRepo.Create(ctx, acct); err != nil {
		if ierr.IsAlreadyExists(err) {
			s.Logger.Infow("account already exists, leaving it untouched", "account_id", uid)
			return types.ProvisionOutcomeExists
		}
		s.Logger.Errorw("failed to create trial account",
			"account_id", uid,
			"error", err,
		)
		s.Sentry.CaptureExceptionWithTags(ctx, err, map[string]string{"account_id": uid})
		return types.ProvisionOutcomeFailed
	}

	s.Logger.Infow("created trial account",
		"account_id", uid,
		"trial_end", acct.Trial.End,
	)

	if billing.EagerCustomerCreation {
		if _, err := s.ensureBillingCustomer(ctx, acct, email); err != nil {
			// checkout creates the customer later, the account itself is usable
			s.Logger.Warnw("eager billing customer creation failed",
				"account_id", uid,
				"error", err,
			)
			s.Sentry.CaptureExceptionWithTags(ctx, err, map[string]string{"account_id": uid})
		}
	}

	return types.ProvisionOutcomeCreated
}
