package service

import (
	"context"
	"errors"
	"strings"

	"github.com/geoforest/billing/internal/api/dto"
	"github.com/geoforest/billing/internal/domain/account"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/integration/stripe"
	"github.com/geoforest/billing/internal/interfaces"
	"github.com/geoforest/billing/internal/metrics"
	"github.com/geoforest/billing/internal/types"
)

type CheckoutService = interfaces.CheckoutService

type checkoutService struct {
	ServiceParams
	publishableKey string
}

func NewCheckoutService(params ServiceParams) CheckoutService {
	return &checkoutService{
		ServiceParams:  params,
		publishableKey: params.Config.Stripe.PublishableKey,
	}
}

const (
	checkoutVariantPaymentSheet = "payment_sheet"
	checkoutVariantSession      = "session"
)

func (s *checkoutService) CreatePaymentSheet(ctx context.Context, req dto.CreatePaymentSheetRequest) (*dto.PaymentSheetResponse, error) {
	resp, err := s.createPaymentSheet(ctx, req)
	metrics.CheckoutTotal.WithLabelValues(checkoutVariantPaymentSheet, ierr.CallableStatusFromErr(err)).Inc()
	return resp, err
}

func (s *checkoutService) createPaymentSheet(ctx context.Context, req dto.CreatePaymentSheetRequest) (*dto.PaymentSheetResponse, error) {
	acct, err := s.resolveCaller(ctx, req.Validate)
	if err != nil {
		return nil, err
	}
	log := s.Logger.With("account_id", acct.ID, "price_id", req.PriceID)

	customerID, err := s.ensureBillingCustomer(ctx, acct, types.GetEmail(ctx))
	if err != nil {
		return nil, s.internal(ctx, err, acct.ID, "Could not prepare the billing customer")
	}

	ephemeralKey, err := s.Gateway.CreateEphemeralKey(ctx, customerID)
	if err != nil {
		return nil, s.internal(ctx, err, acct.ID, "Could not start the payment")
	}

	price, err := s.Gateway.GetPrice(ctx, req.PriceID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Infow("price not found", "account_id", acct.ID, "price_id", req.PriceID, "error", err)
			return nil, priceNotFound(req.PriceID)
		}
		return nil, s.internal(ctx, err, acct.ID, "Could not start the payment")
	}
	if price.UnitAmount <= 0 {
		return nil, priceNotFound(req.PriceID)
	}

	currency := s.Config.Billing.Currency
	if price.Currency != "" && !strings.EqualFold(price.Currency, currency) {
		log.Warnw("price currency differs from billing currency",
			"price_currency", price.Currency,
			"billing_currency", currency,
		)
	}

	intent, err := s.Gateway.CreatePaymentIntent(ctx, stripe.PaymentIntentRequest{
		CustomerID: customerID,
		Amount:     price.UnitAmount,
		Currency:   currency,
		Metadata: map[string]string{
			types.MetadataKeyAccountID: acct.ID,
			types.MetadataKeyPriceID:   req.PriceID,
		},
	})
	if err != nil {
		return nil, s.internal(ctx, err, acct.ID, "Could not start the payment")
	}
	if intent.ClientSecret == "" {
		return nil, s.internal(ctx, errors.New("payment intent has no client secret"), acct.ID, "Could not start the payment")
	}

	log.Infow("payment sheet created",
		"stripe_customer_id", customerID,
		"payment_intent_id", intent.ID,
		"unit_amount", price.UnitAmount,
		"currency", currency,
	)

	return &dto.PaymentSheetResponse{
		PaymentIntent:  intent.ClientSecret,
		EphemeralKey:   ephemeralKey,
		Customer:       customerID,
		PublishableKey: s.publishableKey,
	}, nil
}

func (s *checkoutService) CreateCheckoutSession(ctx context.Context, req dto.CreateCheckoutSessionRequest) (*dto.CheckoutSessionResponse, error) {
	resp, err := s.createCheckoutSession(ctx, req)
	metrics.CheckoutTotal.WithLabelValues(checkoutVariantSession, ierr.CallableStatusFromErr(err)).Inc()
	return resp, err
}

func (s *checkoutService) createCheckoutSession(ctx context.Context, req dto.CreateCheckoutSessionRequest) (*dto.CheckoutSessionResponse, error) {
	acct, err := s.resolveCaller(ctx, req.Validate)
	if err != nil {
		return nil, err
	}

	customerID, err := s.ensureBillingCustomer(ctx, acct, types.GetEmail(ctx))
	if err != nil {
		return nil, s.internal(ctx, err, acct.ID, "Could not prepare the billing customer")
	}

	session, err := s.Gateway.CreateCheckoutSession(ctx, stripe.CheckoutSessionRequest{
		CustomerID: customerID,
		PriceID:    req.PriceID,
		SuccessURL: s.Config.Billing.SuccessURL,
		CancelURL:  s.Config.Billing.CancelURL,
		Metadata: map[string]string{
			types.MetadataKeyAccountID: acct.ID,
			types.MetadataKeyPriceID:   req.PriceID,
		},
	})
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Infow("price not found", "account_id", acct.ID, "price_id", req.PriceID, "error", err)
			return nil, priceNotFound(req.PriceID)
		}
		return nil, s.internal(ctx, err, acct.ID, "Could not start the checkout")
	}
	if session.URL == "" {
		return nil, s.internal(ctx, errors.New("checkout session has no url"), acct.ID, "Could not start the checkout")
	}

	s.Logger.Infow("checkout session created",
		"account_id", acct.ID,
		"price_id", req.PriceID,
		"checkout_session_id", session.ID,
	)
	return &dto.CheckoutSessionResponse{URL: session.URL}, nil
}

// resolveCaller runs the checks shared by both callables, in order: caller
// identity, then arguments, then the account record. Nothing touches the
// store or the provider before the arguments are valid.
func (s *checkoutService) resolveCaller(ctx context.Context, validate func() error) (*account.Account, error) {
	uid := types.GetUserID(ctx)
	if uid == "" {
		return nil, ierr.NewError("no verified identity on request").
			WithHint("Authentication required").
			Mark(ierr.ErrUnauthenticated)
	}

	if err := validate(); err != nil {
		return nil, err
	}

	acct, err := s.AccountRepo.Get(ctx, uid)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, err
		}
		return nil, s.internal(ctx, err, uid, "Could not load the account")
	}
	return acct, nil
}

// internal logs and reports err and returns an Internal error for the
// caller. The wrapped provider or store error never reaches the response.
func (s *checkoutService) internal(ctx context.Context, err error, accountID, hint string) error {
	s.Logger.Errorw("checkout failed",
		"account_id", accountID,
		"error", err,
	)
	s.Sentry.CaptureExceptionWithTags(ctx, err, map[string]string{"account_id": accountID})
	// a fresh error so kinds marked on the cause (NotFound from the provider)
	// cannot leak into the caller status
	return ierr.NewError(strings.ToLower(hint)).
		WithHint(hint).
		Mark(ierr.ErrInternal)
}

func priceNotFound(priceID string) error {
	return ierr.NewErrorf("price %s not found or not purchasable", priceID).
		WithHint("Price not found").
		WithReportableDetails(map[string]any{"priceId": priceID}).
		Mark(ierr.ErrNotFound)
}
