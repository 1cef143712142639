package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cocoamatch/backend/config"
	httpDelivery "github.com/cocoamatch/backend/internal/delivery/http"
	"github.com/cocoamatch/backend/internal/infrastructure/cache"
	"github.com/cocoamatch/backend/internal/infrastructure/catalog"
	"github.com/cocoamatch/backend/internal/infrastructure/openfoodfacts"
	"github.com/cocoamatch/backend/internal/match"
	"github.com/cocoamatch/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.Server.Environment, cfg.Server.LogLevel)
	defer logger.Sync()

	logger.Info("starting cocoamatch backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port))

	// The alias and synonym tables are static configuration; a malformed
	// table is fatal here rather than a corrupted score later.
	brandAliases, err := match.NewBrandAliases(cfg.Aliases.Brands)
	if err != nil {
		logger.Fatal("loading brand aliases", zap.Error(err))
	}
	categorySynonyms, err := match.NewCategorySynonyms(cfg.Aliases.Categories)
	if err != nil {
		logger.Fatal("loading category synonyms", zap.Error(err))
	}

	ranker := match.NewRanker(match.NewScorer(brandAliases, categorySynonyms))

	// Site catalog for label-scan matching.
	scanCatalog := loadCatalog(cfg, logger)

	scanService := usecase.NewScanService(scanCatalog, ranker, usecase.ScanConfig{
		DefaultTopN: cfg.Matching.ScanTopN,
	}, logger)

	// External catalog lookup with caching and rate limiting.
	lookupClient := openfoodfacts.NewClient(
		cfg.Lookup.BaseURL,
		cfg.Lookup.UserAgent,
		cfg.Lookup.RatePerSec,
		cfg.Lookup.RateBurst,
		logger,
	)
	lookupCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
	searcher := cache.NewCachedSearcher(lookupClient, lookupCache, cfg.Cache.TTL)

	reconcileService := usecase.NewReconcileService(searcher, ranker, usecase.ReconcileConfig{
		TopN:                 cfg.Reconcile.TopN,
		AutoAcceptThreshold:  cfg.Reconcile.AutoAcceptThreshold,
		QuickReviewThreshold: cfg.Reconcile.QuickReviewThreshold,
		LookupTimeout:        cfg.Reconcile.LookupTimeout,
	}, logger)

	handler := httpDelivery.NewHandler(scanService, reconcileService, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func loadCatalog(cfg *config.Config, logger *zap.Logger) *catalog.MemoryCatalog {
	if cfg.Matching.CatalogSeedPath == "" {
		logger.Warn("no catalog seed configured, scan matching starts empty")
		return catalog.NewMemoryCatalog(nil)
	}

	entries, err := catalog.LoadSeedFile(cfg.Matching.CatalogSeedPath)
	if err != nil {
		logger.Fatal("loading catalog seed", zap.Error(err))
	}
	logger.Info("catalog loaded",
		zap.String("path", cfg.Matching.CatalogSeedPath),
		zap.Int("entries", len(entries)))

	return catalog.NewMemoryCatalog(entries)
}

func newLogger(environment, level string) *zap.Logger {
	parsed := zapcore.InfoLevel
	switch level {
	case "debug":
		parsed = zapcore.DebugLevel
	case "warn":
		parsed = zapcore.WarnLevel
	case "error":
		parsed = zapcore.ErrorLevel
	}

	var zapCfg zap.Config
	if environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(parsed)

	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	return logger
}
