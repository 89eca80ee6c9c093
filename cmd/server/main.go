package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/geoforest/billing/internal/api"
	"github.com/geoforest/billing/internal/auth"
	"github.com/geoforest/billing/internal/cache"
	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/dynamodb"
	"github.com/geoforest/billing/internal/firebase"
	"github.com/geoforest/billing/internal/idempotency"
	"github.com/geoforest/billing/internal/integration/stripe"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/repository"
	"github.com/geoforest/billing/internal/sentry"
	"github.com/geoforest/billing/internal/service"
	"github.com/geoforest/billing/internal/types"
	"github.com/geoforest/billing/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	opts = append(opts,
		fx.Provide(
			validator.NewValidator,

			newServerConfig,

			logger.NewLogger,

			cache.Initialize,

			firebase.NewClient,

			dynamodb.NewClient,

			fx.Annotate(
				stripe.NewClient,
				fx.As(new(stripe.Gateway)),
			),

			idempotency.NewGenerator,

			auth.NewProvider,

			repository.NewAccountRepository,
			repository.NewPlanRepository,
		),
	)

	opts = append(opts, sentry.Module())

	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewAccountProvisionerService,
			service.NewCheckoutService,
			service.NewEntitlementReconcilerService,
		),
	)

	opts = append(opts,
		fx.Provide(
			api.NewHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			registerClientHooks,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

// newServerConfig loads the configuration and requires the Stripe
// credentials, which only the API process needs
func newServerConfig() (*config.Configuration, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Stripe.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func registerClientHooks(lc fx.Lifecycle, fb *firebase.Client, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := fb.Close(); err != nil {
				log.Warnw("failed to close firebase client", "error", err)
			}
			return nil
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	sentryService *sentry.Service,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
	case types.ModeAWSLambdaAPI:
		// lambda.Start blocks before fx start hooks run
		if err := sentryService.Init(); err != nil {
			log.Warnw("failed to initialize sentry", "error", err)
		}
		startAWSLambdaAPI(r)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}

func startAWSLambdaAPI(r *gin.Engine) {
	ginLambda := ginadapter.New(r)
	lambda.Start(ginLambda.ProxyWithContext)
}
