package api

import (
	v1 "github.com/geoforest/billing/internal/api/v1"
	"github.com/geoforest/billing/internal/interfaces"
	"github.com/geoforest/billing/internal/logger"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Trigger  *v1.TriggerHandler
	Callable *v1.CallableHandler
	Webhook  *v1.WebhookHandler
}

func NewHandlers(
	provisioner interfaces.AccountProvisionerService,
	checkout interfaces.CheckoutService,
	reconciler interfaces.EntitlementReconcilerService,
	logger *logger.Logger,
) Handlers {
	return Handlers{
		Health:   v1.NewHealthHandler(),
		Trigger:  v1.NewTriggerHandler(provisioner, logger),
		Callable: v1.NewCallableHandler(checkout, logger),
		Webhook:  v1.NewWebhookHandler(reconciler, logger),
	}
}
