package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsefit/studio-insights-api/internal/handler"
	"github.com/pulsefit/studio-insights-api/internal/middleware"
	"github.com/pulsefit/studio-insights-api/internal/repository"
	"github.com/pulsefit/studio-insights-api/internal/service"
	"github.com/pulsefit/studio-insights-api/pkg/cache"
	"github.com/pulsefit/studio-insights-api/pkg/config"
	"github.com/pulsefit/studio-insights-api/pkg/database"
	"github.com/pulsefit/studio-insights-api/pkg/jobs"
	"github.com/pulsefit/studio-insights-api/pkg/logger"
	corsmiddleware "github.com/pulsefit/studio-insights-api/pkg/middleware/cors"
	reqidmiddleware "github.com/pulsefit/studio-insights-api/pkg/middleware/requestid"
	"github.com/pulsefit/studio-insights-api/pkg/storage"
)

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Insights.CacheTTL, logr, redisClient != nil)

	sessionRepo := repository.NewSessionRepository(db)
	leadRepo := repository.NewLeadRepository(db)

	insightsSvc := service.NewInsightsService(sessionRepo, cacheSvc, metricsSvc, logr, cfg.Insights)
	dashboardSvc := service.NewDashboardService(sessionRepo, leadRepo, sessionRepo, cacheSvc, metricsSvc, logr, cfg.Dashboard)
	drilldownSvc := service.NewDrilldownService(sessionRepo, cacheRepo, metricsSvc, logr, cfg.Drilldown)
	importSvc := service.NewImportService(sessionRepo, cacheSvc, metricsSvc, logr, cfg.Imports)

	insightsHandler := handler.NewInsightsHandler(insightsSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	drilldownHandler := handler.NewDrilldownHandler(drilldownSvc)
	sessionsHandler := handler.NewSessionsHandler(importSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db.DB, redisClient)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Snapshot)

	api := r.Group(cfg.APIPrefix)
	{
		insights := api.Group("/insights")
		{
			insights.GET("/performance", insightsHandler.Performance)
			insights.GET("/trainers", insightsHandler.Trainers)
			insights.GET("/revenue", insightsHandler.Revenue)
		}

		api.GET("/dashboard", dashboardHandler.Overview)

		drilldown := api.Group("/drilldown")
		{
			drilldown.POST("", drilldownHandler.Open)
			drilldown.GET("/:id", drilldownHandler.View)
			drilldown.DELETE("/:id", drilldownHandler.Close)
		}

		api.POST("/sessions/import", sessionsHandler.Import)
	}

	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportSvc := service.NewExportService(sessionRepo, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.SignedURLTTL,
		}, logr)

		reportRepo := repository.NewReportRepository(db)
		worker := service.NewReportWorker(reportRepo, exportSvc, metricsSvc, cfg.Reports.WorkerRetries, logr)
		reportQueue = jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportQueue.Start(rootCtx)

		reportSvc := service.NewReportService(reportRepo, reportQueue, exportSvc, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportSvc.RecoverPendingJobs(rootCtx)
		reportSvc.StartCleanup(rootCtx)

		reportHandler := handler.NewReportHandler(reportSvc)
		api.POST("/reports", reportHandler.Create)
		api.GET("/reports/:id", reportHandler.Status)
		api.GET("/export/:token", reportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "reports_enabled", cfg.Reports.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	if reportQueue != nil {
		reportQueue.Stop()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
