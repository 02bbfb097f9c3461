// Package main provides the entry point for the GreenBite planning engine
// API server.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/greenbite/engine/internal/application/planner"
	"github.com/greenbite/engine/internal/domain/planning"
	"github.com/greenbite/engine/internal/infrastructure/ai/openai"
	"github.com/greenbite/engine/internal/infrastructure/config"
	"github.com/greenbite/engine/internal/infrastructure/http/server"
	gormstore "github.com/greenbite/engine/internal/infrastructure/persistence/gorm"
	"github.com/greenbite/engine/internal/infrastructure/persistence/memory"
	"github.com/greenbite/engine/internal/infrastructure/persistence/redis"
	"github.com/greenbite/engine/internal/ports/outbound"
	"github.com/greenbite/engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Persistence
	var (
		uow     outbound.UnitOfWork
		lots    outbound.LotRepository
		plans   outbound.MealPlanRepository
		catalog outbound.RecipeCatalog
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err := gormstore.Open(cfg.Database)
		if err != nil {
			zapLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		uow = gormstore.NewUnitOfWork(db)
		lots = gormstore.NewLotRepository(db)
		plans = gormstore.NewMealPlanRepository(db)
		catalog = gormstore.NewCatalogRepository(db)
		zapLogger.Info("Connected to postgres",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Database),
		)
	default:
		store := memory.NewStore()
		uow, lots, plans, catalog = store, store, store, store
		zapLogger.Info("Using in-memory persistence")
	}

	// Cache
	var cache outbound.CacheRepository
	if cfg.Redis.Enabled {
		redisCache, err := redis.NewCacheRepository(cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		cache = redisCache
		zapLogger.Info("Connected to redis", zap.String("addr", cfg.Redis.Addr()))
	} else {
		cache = memory.NewCache()
	}

	// Recipe generation
	var generator outbound.GenerationService
	if cfg.AI.Enabled {
		generator = openai.NewClient(openai.Config{
			APIKey:      cfg.AI.APIKey,
			BaseURL:     cfg.AI.BaseURL,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
			Timeout:     cfg.AI.Timeout,
		}, zapLogger)
	} else {
		generator = disabledGenerator{}
	}

	service := planner.NewService(
		uow, lots, plans, catalog,
		generator, cache,
		planning.ScoreWeights{
			Matched: cfg.Planner.MatchedWeight,
			Ratio:   cfg.Planner.RatioWeight,
			Missing: cfg.Planner.MissingWeight,
		},
		zapLogger,
	)

	httpServer := server.New(cfg.Server, service, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zapLogger.Info("Starting GreenBite engine",
			zap.String("version", cfg.App.Version),
			zap.String("environment", cfg.App.Environment),
			zap.Int("port", cfg.Server.Port),
		)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exited")
}

// disabledGenerator stands in when recipe generation is turned off; the
// planner degrades to catalog-only sourcing.
type disabledGenerator struct{}

func (disabledGenerator) GenerateRecipes(ctx context.Context, ingredients []string, count int) ([]outbound.GeneratedRecipe, error) {
	return nil, errors.New("recipe generation is disabled")
}
