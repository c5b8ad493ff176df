package main

import (
	"context"
	"log"
	"os"

	"shop-service/config"
	"shop-service/internal/broker"
	"shop-service/internal/redisclient"
	"shop-service/internal/seed"
	"shop-service/internal/service"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	catalog, err := loadCatalog(cfg.Seed.File)
	if err != nil {
		logger.Fatal("Failed to load seed catalog", zap.Error(err))
	}

	ctx := context.Background()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// a running server may hold a cached snapshot of the old counts
	var cache service.StatsCache
	if redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		logger.Warn("Redis unavailable, stats cache will not be invalidated", zap.Error(err))
	} else {
		defer redisClient.Close()
		cache = redisclient.NewStatsCache(redisClient, 0)
	}

	catalogService := service.NewCatalogService(db, broker.NewEventPublisher(broker.NopPublisher{}), cache)
	seedService := service.NewSeedService(db, catalogService, catalog)

	result, err := seedService.SeedAll(ctx)
	if err != nil {
		logger.Fatal("Seed failed", zap.Error(err))
	}

	logger.Info("Database seeded",
		zap.Int("categories", result.Categories),
		zap.Int("colors", result.Colors),
		zap.Int("products", result.Products))
}

func loadCatalog(path string) (*seed.Catalog, error) {
	if path == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.Parse(data)
}
