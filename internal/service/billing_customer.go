package service

import (
	"context"

	"github.com/geoforest/billing/internal/domain/account"
	"github.com/geoforest/billing/internal/idempotency"
	"github.com/geoforest/billing/internal/integration/stripe"
	"github.com/geoforest/billing/internal/metrics"
)

// ensureBillingCustomer returns the account's Stripe customer id, creating
// and linking a customer when the account has none. The link is a
// compare-and-set: when another caller linked first, the stored id wins and
// the customer created here is deleted best-effort.
func (p ServiceParams) ensureBillingCustomer(ctx context.Context, acct *account.Account, email string) (string, error) {
	if acct.HasBillingCustomer() {
		return acct.BillingCustomerID, nil
	}

	if acct.Email != "" {
		email = acct.Email
	}

	created, err := p.Gateway.CreateCustomer(ctx, stripe.CreateCustomerRequest{
		AccountID: acct.ID,
		Email:     email,
		IdempotencyKey: p.Idempotency.GenerateKey(idempotency.ScopeBillingCustomer, map[string]interface{}{
			"account_id": acct.ID,
		}),
	})
	if err != nil {
		// A concurrent request holding the same idempotency key is rejected by
		// the provider; its winner may already be linked.
		if current, getErr := p.AccountRepo.Get(ctx, acct.ID); getErr == nil && current.HasBillingCustomer() {
			p.Logger.Infow("billing customer linked by concurrent request",
				"account_id", acct.ID,
				"stripe_customer_id", current.BillingCustomerID,
			)
			return current.BillingCustomerID, nil
		}
		return "", err
	}

	stored, err := p.AccountRepo.SetBillingCustomerID(ctx, acct.ID, created)
	if err != nil {
		p.Logger.Errorw("failed to link billing customer",
			"account_id", acct.ID,
			"stripe_customer_id", created,
			"error", err,
		)
		return "", err
	}

	if stored == created {
		metrics.BillingCustomersCreated.WithLabelValues("linked").Inc()
		p.Logger.Infow("linked billing customer",
			"account_id", acct.ID,
			"stripe_customer_id", stored,
		)
		acct.BillingCustomerID = stored
		return stored, nil
	}

	metrics.BillingCustomersCreated.WithLabelValues("orphaned").Inc()
	p.Logger.Warnw("lost billing customer race, using stored customer",
		"account_id", acct.ID,
		"stored_customer_id", stored,
		"orphan_customer_id", created,
	)
	if err := p.Gateway.DeleteCustomer(ctx, created); err != nil {
		p.Logger.Warnw("failed to delete orphan billing customer",
			"account_id", acct.ID,
			"orphan_customer_id", created,
			"error", err,
		)
	}
	acct.BillingCustomerID = stored
	return stored, nil
}
