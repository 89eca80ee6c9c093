package api

import (
	"github.com/geoforest/billing/internal/auth"
	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/rest/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(handlers Handlers, cfg *config.Configuration, authProvider auth.Provider, logger *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers, cfg, authProvider, logger)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers, cfg *config.Configuration, authProvider auth.Provider, logger *logger.Logger) {
	triggers := router.Group("/triggers")
	triggers.Use(middleware.TriggerKeyMiddleware(cfg, logger))
	{
		triggers.POST("/identity-created", handlers.Trigger.IdentityCreated)
	}

	callables := router.Group("/callable")
	callables.Use(
		middleware.AuthenticateMiddleware(authProvider, logger),
		middleware.RateLimitMiddleware(cfg),
	)
	{
		callables.POST("/createPaymentSheet", handlers.Callable.CreatePaymentSheet)
		callables.POST("/createCheckoutSession", handlers.Callable.CreateCheckoutSession)
	}

	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/stripe", handlers.Webhook.HandleStripeWebhook)
	}
}
