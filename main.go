package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/config"
	"github.com/fenilmodi00/ipo-dashboard/database"
	"github.com/fenilmodi00/ipo-dashboard/handlers"
	"github.com/fenilmodi00/ipo-dashboard/jobs"
	"github.com/fenilmodi00/ipo-dashboard/services"
	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()

	unified := shared.NewDefaultUnifiedConfiguration()
	unified.Logging.Level = cfg.LogLevel
	unified.Logging.Format = cfg.LogFormat
	unified.Cache.DefaultTTL = cfg.GetCacheTTL()
	unified.ValidateAndApplyDefaults()
	shared.ConfigureLogging(unified.Logging)

	engine, err := services.NewIPOEngineFromConfig(cfg.Engine.Market)
	if err != nil {
		log.Fatalf("Invalid market configuration: %v", err)
	}

	// Persistence: PostgreSQL when configured, process memory otherwise
	var repository services.IPORepository
	var dbMetrics handlers.DatabaseMetricsSource
	var queryMetrics *shared.DatabaseMetrics
	var healthCheck func() error
	if cfg.DatabaseURL != "" {
		if err := database.ConnectWithConfig(cfg.DatabaseURL, &unified.Database); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.Migrate("database/schema.sql"); err != nil {
			log.Printf("Migration warning: %v", err)
		}
		if _, err := database.ValidateSchema(context.Background()); err != nil {
			log.Printf("Schema validation warning: %v", err)
		}

		store := database.NewIPOStore(database.DB, &unified.Database)
		repository = store
		dbMetrics = store
		queryMetrics = store.GetDatabaseMetrics()
		healthCheck = database.HealthCheck
	} else {
		logrus.Warn("DATABASE_URL not set, using in-memory IPO repository")
		repository = services.NewMemoryIPORepository()
	}

	// Cache raw records; derived fields are recomputed per request
	cacheService := services.NewCacheServiceWithConfig(unified.Cache.DefaultTTL, unified.Cache.MaxSize)
	defer cacheService.Close()
	cachedRepository := services.NewCachedIPORepository(repository, cacheService)

	ipoService := services.NewIPOService(cachedRepository, engine)

	var favorites services.FavoritesRepository
	if cfg.FavoritesPath != "" {
		pebbleFavorites, err := database.OpenPebbleFavorites(cfg.FavoritesPath)
		if err != nil {
			log.Fatalf("Failed to open favorites store: %v", err)
		}
		defer pebbleFavorites.Close()
		favorites = pebbleFavorites
	} else {
		favorites = services.NewInMemoryFavorites()
	}

	logrus.WithFields(logrus.Fields{
		"market_timezone": cfg.Engine.Market.Timezone,
		"apply_open":      cfg.Engine.Market.ApplyOpen,
		"apply_close":     cfg.Engine.Market.ApplyClose,
		"cache_ttl":       unified.Cache.DefaultTTL,
		"refresh_cron":    cfg.RefreshCron,
	}).Info("IPO dashboard services initialized")

	httpMetrics := shared.NewHTTPMetrics()

	// Background jobs
	refreshJob := jobs.NewCacheRefreshJob(cachedRepository, ipoService)
	scheduler := jobs.NewScheduler(refreshJob, ipoService.GetServiceMetrics(), engine.GetServiceMetrics()).
		TrackRequestMetrics(queryMetrics, httpMetrics)
	if err := scheduler.RegisterAll(cfg.RefreshCron); err != nil {
		log.Fatalf("Failed to register jobs: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		time.Sleep(2 * time.Second)
		refreshJob.Run()
	}()

	// Setup Fiber
	app := fiber.New()

	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(handlers.HTTPMetricsMiddleware(httpMetrics))

	handlers.SetupRoutes(app, handlers.Routes{
		IPO:         handlers.NewIPOHandler(ipoService),
		Stream:      handlers.NewCountdownStreamHandler(ipoService),
		Admin:       handlers.NewAdminHandler(ipoService),
		Favorites:   handlers.NewFavoritesHandler(favorites),
		Performance: handlers.NewPerformanceHandler(ipoService, cachedRepository, dbMetrics, httpMetrics),
		HealthCheck: healthCheck,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
