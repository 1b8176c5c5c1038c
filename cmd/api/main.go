package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/venuehub/specials-api/api/swagger"
	"github.com/venuehub/specials-api/internal/handler"
	"github.com/venuehub/specials-api/internal/middleware"
	"github.com/venuehub/specials-api/internal/repository"
	"github.com/venuehub/specials-api/internal/service"
	"github.com/venuehub/specials-api/pkg/cache"
	"github.com/venuehub/specials-api/pkg/config"
	"github.com/venuehub/specials-api/pkg/database"
	"github.com/venuehub/specials-api/pkg/jobs"
	"github.com/venuehub/specials-api/pkg/logger"
	corsmiddleware "github.com/venuehub/specials-api/pkg/middleware/cors"
	reqidmiddleware "github.com/venuehub/specials-api/pkg/middleware/requestid"
)

// @title Venue Specials API
// @version 1.0.0
// @description Discover venue specials running right now near a location
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Geocode caching degrades gracefully without redis.
		logr.Warn("redis unavailable, geocode caching disabled", zap.Error(err))
		redisClient = nil
	}

	specialRepo := repository.NewSpecialRepository(db)
	venueRepo := repository.NewVenueRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Geocoding.CacheTTL, logr)
	geocodeSvc := service.NewGeocodeService(cfg.Geocoding, cacheSvc, metricsSvc, logr)

	var venueSvc *service.VenueService
	geocodeQueue := jobs.NewQueue[service.GeocodeJob]("venue-geocode", func(ctx context.Context, job service.GeocodeJob) error {
		return venueSvc.HandleGeocodeJob(ctx, job)
	}, jobs.Config{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	venueSvc = service.NewVenueService(venueRepo, specialRepo, geocodeSvc, geocodeQueue, validate, logr)

	searchSvc := service.NewSearchService(specialRepo, geocodeSvc, metricsSvc, cfg.Search, logr)
	specialSvc := service.NewSpecialService(specialRepo, venueRepo, validate, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportSvc = service.NewExportService(venueSvc, logr)
	}

	geocodeQueue.Start(context.Background())
	defer geocodeQueue.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	specialHandler := handler.NewSpecialHandler(searchSvc, specialSvc)
	var venueHandler *handler.VenueHandler
	if exportSvc != nil {
		venueHandler = handler.NewVenueHandler(venueSvc, exportSvc)
	} else {
		venueHandler = handler.NewVenueHandler(venueSvc, nil)
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/specials", specialHandler.Search)
		api.GET("/specials/:id", specialHandler.Get)
		api.POST("/specials", specialHandler.Create)
		api.PUT("/specials/:id", specialHandler.Update)
		api.DELETE("/specials/:id", specialHandler.Delete)

		api.GET("/venues/:id", venueHandler.Get)
		api.POST("/venues", venueHandler.Create)
		api.PUT("/venues/:id", venueHandler.Update)
		api.GET("/venues/:id/specials", venueHandler.ListSpecials)
		api.GET("/venues/:id/specials/export", venueHandler.ExportSpecials)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
