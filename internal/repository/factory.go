package repository

import (
	"github.com/geoforest/billing/internal/cache"
	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/domain/account"
	"github.com/geoforest/billing/internal/domain/plan"
	"github.com/geoforest/billing/internal/dynamodb"
	"github.com/geoforest/billing/internal/firebase"
	"github.com/geoforest/billing/internal/logger"
	dynamoRepo "github.com/geoforest/billing/internal/repository/dynamodb"
	firestoreRepo "github.com/geoforest/billing/internal/repository/firestore"
	"github.com/geoforest/billing/internal/types"
	"go.uber.org/fx"
)

// RepositoryParams holds the store clients; only the configured one is non-nil
type RepositoryParams struct {
	fx.In

	Config   *config.Configuration
	Logger   *logger.Logger
	Firebase *firebase.Client `optional:"true"`
	DynamoDB *dynamodb.Client `optional:"true"`
	Cache    cache.Cache
}

func NewAccountRepository(p RepositoryParams) account.Repository {
	switch p.Config.Store.Provider {
	case types.StoreProviderDynamoDB:
		return dynamoRepo.NewAccountRepository(
			p.DynamoDB.DB(),
			p.Config.DynamoDB.AccountsTable,
			p.Config.DynamoDB.CustomerIndex,
			p.Logger,
		)
	default:
		return firestoreRepo.NewAccountRepository(
			p.Firebase.Firestore(),
			p.Config.Store.AccountsCollection,
			p.Logger,
		)
	}
}

// NewPlanRepository returns the store-backed plan repository behind the plan cache
func NewPlanRepository(p RepositoryParams) plan.Repository {
	var repo plan.Repository
	switch p.Config.Store.Provider {
	case types.StoreProviderDynamoDB:
		repo = dynamoRepo.NewPlanRepository(p.DynamoDB.DB(), p.Config.DynamoDB.PlansTable, p.Logger)
	default:
		repo = firestoreRepo.NewPlanRepository(p.Firebase.Firestore(), p.Config.Store.PlansCollection, p.Logger)
	}
	return NewCachedPlanRepository(repo, p.Cache, p.Config.Billing.PlanCacheTTL)
}
