package service

import (
	"context"
	"time"

	"github.com/geoforest/billing/internal/api/dto"
	"github.com/geoforest/billing/internal/domain/plan"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/integration/stripe"
	"github.com/geoforest/billing/internal/interfaces"
	"github.com/geoforest/billing/internal/metrics"
	"github.com/geoforest/billing/internal/types"
	stripego "github.com/stripe/stripe-go/v82"
)

type EntitlementReconcilerService = interfaces.EntitlementReconcilerService

type entitlementReconcilerService struct {
	ServiceParams
}

func NewEntitlementReconcilerService(params ServiceParams) EntitlementReconcilerService {
	return &entitlementReconcilerService{
		ServiceParams: params,
	}
}

// HandleStripeWebhook verifies and applies one delivery. A signature failure
// is ErrSignatureInvalid. Any other error means the event was relevant but
// could not be applied, and the provider should redeliver.
func (s *entitlementReconcilerService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookResult, error) {
	start := time.Now()

	event, err := s.Gateway.ParseWebhookEvent(payload, signature)
	if err != nil {
		metrics.WebhookRequestsTotal.WithLabelValues("unknown", "signature_invalid").Inc()
		return nil, err
	}

	eventType := string(event.Type)
	defer func() {
		metrics.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
	}()

	result := &dto.WebhookResult{
		EventID:   event.ID,
		EventType: eventType,
		Outcome:   types.ReconcileOutcomeIgnored,
	}
	log := s.Logger.With("event_id", event.ID, "event_type", eventType)
	s.Sentry.AddBreadcrumb(ctx, "stripe.webhook", eventType, map[string]interface{}{
		"event_id": event.ID,
	})

	switch eventType {
	case types.WebhookEventTypeInvoicePaymentSucceeded:
		err = s.handleInvoicePaid(ctx, event, result)
	case types.WebhookEventTypePaymentIntentSucceeded:
		if s.Config.Billing.ReconcilePaymentIntents {
			err = s.handlePaymentIntentSucceeded(ctx, event, result)
		}
	default:
		log.Debugw("ignoring unhandled webhook event")
	}

	if err != nil {
		metrics.WebhookRequestsTotal.WithLabelValues(eventType, "failed").Inc()
		log.Errorw("failed to reconcile webhook event",
			"account_id", result.AccountID,
			"error", err,
		)
		s.Sentry.CaptureExceptionWithTags(ctx, err, map[string]string{
			"event_type": eventType,
			"event_id":   event.ID,
		})
		return nil, err
	}

	metrics.WebhookRequestsTotal.WithLabelValues(eventType, string(result.Outcome)).Inc()
	if result.Outcome == types.ReconcileOutcomeApplied {
		log.Infow("plan activated",
			"account_id", result.AccountID,
			"plan_id", result.PlanID,
		)
	}
	return result, nil
}

func (s *entitlementReconcilerService) handleInvoicePaid(ctx context.Context, event *stripego.Event, result *dto.WebhookResult) error {
	invoice, err := stripe.ParseInvoicePayment(event.Data.Raw)
	if err != nil {
		return err
	}
	if invoice.CustomerID == "" {
		return ierr.NewError("invoice has no customer").
			WithHint("Invoice has no customer").
			WithReportableDetails(map[string]any{"invoice_id": invoice.InvoiceID}).
			Mark(ierr.ErrInternal)
	}

	accountID, err := s.resolveAccountID(ctx, invoice.CustomerID)
	if err != nil {
		return err
	}
	if accountID == "" {
		return ierr.NewError("no account for billing customer").
			WithHint("Could not resolve the account for this customer").
			WithReportableDetails(map[string]any{"stripe_customer_id": invoice.CustomerID}).
			Mark(ierr.ErrInternal)
	}
	result.AccountID = accountID

	if invoice.PriceID == "" {
		return ierr.NewError("invoice has no line price").
			WithHint("Invoice has no price").
			WithReportableDetails(map[string]any{"invoice_id": invoice.InvoiceID}).
			Mark(ierr.ErrInternal)
	}

	return s.activate(ctx, accountID, invoice.PriceID, result)
}

// handlePaymentIntentSucceeded activates plans bought through the payment
// sheet. Intents created elsewhere carry no checkout metadata and are ignored.
func (s *entitlementReconcilerService) handlePaymentIntentSucceeded(ctx context.Context, event *stripego.Event, result *dto.WebhookResult) error {
	intent, err := stripe.ParseIntentPayment(event.Data.Raw)
	if err != nil {
		return err
	}
	if intent.AccountID == "" || intent.PriceID == "" {
		s.Logger.Debugw("payment intent without checkout metadata, ignoring",
			"payment_intent_id", intent.PaymentIntentID,
		)
		return nil
	}
	result.AccountID = intent.AccountID
	return s.activate(ctx, intent.AccountID, intent.PriceID, result)
}

// resolveAccountID maps a Stripe customer to an account, first through the
// stored link and then through the customer's metadata
func (s *entitlementReconcilerService) resolveAccountID(ctx context.Context, customerID string) (string, error) {
	acct, err := s.AccountRepo.GetByBillingCustomerID(ctx, customerID)
	if err == nil {
		return acct.ID, nil
	}
	if !ierr.IsNotFound(err) {
		return "", err
	}

	accountID, err := s.Gateway.GetCustomerAccountID(ctx, customerID)
	if err != nil {
		return "", err
	}
	s.Logger.Debugw("resolved account from customer metadata",
		"stripe_customer_id", customerID,
		"account_id", accountID,
	)
	return accountID, nil
}

func (s *entitlementReconcilerService) activate(ctx context.Context, accountID, priceID string, result *dto.WebhookResult) error {
	p, err := s.findPlan(ctx, priceID)
	if err != nil {
		return err
	}

	if _, err := s.AccountRepo.ApplyEntitlement(ctx, accountID, p.Entitlement()); err != nil {
		return err
	}

	result.PlanID = p.ID
	result.Outcome = types.ReconcileOutcomeApplied
	return nil
}

// findPlan checks each configured interval in order and returns the first match
func (s *entitlementReconcilerService) findPlan(ctx context.Context, priceID string) (*plan.Plan, error) {
	for _, interval := range s.Config.Billing.PlanIntervals {
		p, err := s.PlanRepo.FindByPriceID(ctx, interval, priceID)
		if err == nil {
			return p, nil
		}
		if !ierr.IsNotFound(err) {
			return nil, err
		}
	}
	return nil, ierr.NewErrorf("no plan for price %s", priceID).
		WithHint("No plan matches the purchased price").
		WithReportableDetails(map[string]any{"price_id": priceID}).
		Mark(ierr.ErrInternal)
}
