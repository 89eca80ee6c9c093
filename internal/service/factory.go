package service

import (
	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/domain/account"
	"github.com/geoforest/billing/internal/domain/plan"
	"github.com/geoforest/billing/internal/idempotency"
	"github.com/geoforest/billing/internal/integration/stripe"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	AccountRepo account.Repository
	PlanRepo    plan.Repository

	// Billing provider
	Gateway     stripe.Gateway
	Idempotency *idempotency.Generator

	Sentry *sentry.Service
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	accountRepo account.Repository,
	planRepo plan.Repository,
	gateway stripe.Gateway,
	idempotencyGen *idempotency.Generator,
	sentryService *sentry.Service,
) ServiceParams {
	return ServiceParams{
		Logger:      logger,
		Config:      config,
		AccountRepo: accountRepo,
		PlanRepo:    planRepo,
		Gateway:     gateway,
		Idempotency: idempotencyGen,
		Sentry:      sentryService,
	}
}
