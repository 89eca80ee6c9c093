package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/geoforest/billing/internal/cache"
	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/domain/plan"
	"github.com/geoforest/billing/internal/dynamodb"
	"github.com/geoforest/billing/internal/firebase"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/repository"
	"github.com/geoforest/billing/internal/types"
	"github.com/spf13/viper"
)

type seedPlan struct {
	ID       string            `mapstructure:"id"`
	Name     string            `mapstructure:"name"`
	Features map[string]bool   `mapstructure:"features"`
	Limits   map[string]int    `mapstructure:"limits"`
	PriceIDs map[string]string `mapstructure:"price_ids"`
}

func main() {
	dryRun := flag.Bool("dry-run", false, "Print the tables and plans without writing them")
	plansFile := flag.String("plans", "./internal/config/plans.yaml", "YAML file with the plan catalog")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	plans, err := loadPlans(*plansFile)
	if err != nil {
		logger.Fatalw("Failed to load plan catalog", "file", *plansFile, "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *dryRun {
		logger.Info("Dry run mode - nothing is written")
		if cfg.Store.Provider == types.StoreProviderDynamoDB {
			for _, table := range dynamodb.TableDefinitions(cfg.DynamoDB) {
				fmt.Printf("table %s\n", *table.TableName)
			}
		}
		for _, p := range plans {
			fmt.Printf("plan %s (%s) prices=%v features=%v limits=%v\n", p.ID, p.Name, p.PriceIDs, p.Features, p.Limits)
		}
		return
	}

	params := repository.RepositoryParams{
		Config: cfg,
		Logger: logger,
		Cache:  cache.Initialize(cfg, logger),
	}

	switch cfg.Store.Provider {
	case types.StoreProviderDynamoDB:
		client, err := dynamodb.NewClient(cfg)
		if err != nil {
			logger.Fatalw("Failed to create dynamodb client", "error", err)
		}
		if err := client.EnsureTables(ctx, cfg.DynamoDB, logger); err != nil {
			logger.Fatalw("Failed to create tables", "error", err)
		}
		params.DynamoDB = client
	default:
		client, err := firebase.NewClient(cfg, logger)
		if err != nil {
			logger.Fatalw("Failed to create firebase client", "error", err)
		}
		defer client.Close()
		params.Firebase = client
	}

	repo := repository.NewPlanRepository(params)
	for _, p := range plans {
		if err := repo.Upsert(ctx, p); err != nil {
			logger.Fatalw("Failed to upsert plan", "plan_id", p.ID, "error", err)
		}
		logger.Infow("Upserted plan", "plan_id", p.ID)
	}

	fmt.Println("Migration process completed")
}

func loadPlans(path string) ([]*plan.Plan, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var seeds []seedPlan
	if err := v.UnmarshalKey("plans", &seeds); err != nil {
		return nil, err
	}

	plans := make([]*plan.Plan, 0, len(seeds))
	for _, s := range seeds {
		if s.ID == "" || len(s.PriceIDs) == 0 {
			return nil, fmt.Errorf("plan %q needs an id and at least one price", s.Name)
		}
		plans = append(plans, &plan.Plan{
			ID:       s.ID,
			Name:     s.Name,
			Features: s.Features,
			Limits:   s.Limits,
			PriceIDs: s.PriceIDs,
		})
	}
	return plans, nil
}
