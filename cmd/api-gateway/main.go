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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/gradeup-app/gradeup-api/api/swagger"
	"github.com/gradeup-app/gradeup-api/internal/handler"
	"github.com/gradeup-app/gradeup-api/internal/middleware"
	"github.com/gradeup-app/gradeup-api/internal/models"
	"github.com/gradeup-app/gradeup-api/internal/repository"
	"github.com/gradeup-app/gradeup-api/internal/service"
	"github.com/gradeup-app/gradeup-api/pkg/cache"
	"github.com/gradeup-app/gradeup-api/pkg/config"
	"github.com/gradeup-app/gradeup-api/pkg/database"
	"github.com/gradeup-app/gradeup-api/pkg/jobs"
	"github.com/gradeup-app/gradeup-api/pkg/logger"
	corsmiddleware "github.com/gradeup-app/gradeup-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gradeup-app/gradeup-api/pkg/middleware/requestid"
	"github.com/gradeup-app/gradeup-api/pkg/storage"
)

// @title GradeUp API
// @version 1.0.0
// @description NIL brand-athlete matching and availability platform
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	userRepo := repository.NewUserRepository(db)
	athleteRepo := repository.NewAthleteRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	taxonomyRepo := repository.NewTaxonomyRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	reportRepo := repository.NewReportRepository(db)

	metricsService := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Matching.StatsCacheTTL, logr, redisClient != nil)

	validate := validator.New()

	authService := service.NewAuthService(userRepo, athleteRepo, brandRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "gradeup-api",
		Audience:           []string{"gradeup"},
	})
	taxonomyService := service.NewTaxonomyService(taxonomyRepo, validate, logr, cfg.Taxonomy)
	matchService := service.NewMatchService(matchRepo, athleteRepo, brandRepo, taxonomyService, cacheService, logr, cfg.Matching)
	recalcService := service.NewRecalcService(matchRepo, athleteRepo, brandRepo, cacheService, metricsService, logr, cfg.Recalc)
	availabilityService := service.NewAvailabilityService(availabilityRepo, athleteRepo, validate, logr, cfg.Availability)
	calendarService := service.NewCalendarService(calendarRepo, validate, logr)

	recalcWorker := service.NewRecalcWorker(recalcService, logr)
	recalcQueue := jobs.NewQueue("recalc", recalcWorker.Handle, jobs.QueueConfig{
		Workers: 1,
		Logger:  logr,
	})
	recalcQueue.Start(ctx)

	var reportService *service.ReportService
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		exportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportService := service.NewExportService(matchRepo, exportStore, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.SignedURLTTL,
		}, logr, nil, nil)

		worker := service.NewReportWorker(reportRepo, exportService, cfg.Reports.WorkerRetries, logr)
		reportQueue = jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportQueue.Start(ctx)

		reportService = service.NewReportService(reportRepo, authService, reportQueue, exportService, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportService.RecoverPendingJobs(ctx)
		reportService.StartCleanup(ctx)
	}

	authHandler := handler.NewAuthHandler(authService)
	matchHandler := handler.NewMatchHandler(matchService, authService, recalcQueue)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService, authService)
	taxonomyHandler := handler.NewTaxonomyHandler(taxonomyService, authService)
	calendarHandler := handler.NewCalendarHandler(calendarService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/auth/me", authHandler.Me)

	protected.GET("/system/metrics", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)

	protected.POST("/matches/calculate", middleware.RequireRoles(models.RoleAdmin), matchHandler.Calculate)
	protected.GET("/matches/athletes-by-industry", middleware.RequireRoles(models.RoleBrand, models.RoleAdmin), matchHandler.ByIndustry)

	protected.GET("/athletes/:id/matches/top", matchHandler.TopMatches)
	protected.GET("/athletes/:id/matches/stats", matchHandler.Stats)
	protected.POST("/athletes/:id/matches/recalculate", middleware.RequireRoles(models.RoleAthlete, models.RoleAdmin), matchHandler.RecalculateAthlete)

	protected.GET("/brands/:id/matching-athletes", matchHandler.MatchingAthletes)
	protected.POST("/brands/:id/matches/recalculate", middleware.RequireRoles(models.RoleBrand, models.RoleAdmin), matchHandler.RecalculateBrand)

	protected.GET("/taxonomy/major-categories", taxonomyHandler.MajorCategories)
	protected.GET("/taxonomy/industry-map", taxonomyHandler.IndustryMap)
	protected.GET("/brands/:id/industries", taxonomyHandler.BrandIndustries)
	protected.PUT("/brands/:id/industries", middleware.RequireRoles(models.RoleBrand, models.RoleAdmin), taxonomyHandler.ReplaceBrandIndustries)
	protected.POST("/brands/:id/industries", middleware.RequireRoles(models.RoleBrand, models.RoleAdmin), taxonomyHandler.AddBrandIndustry)
	protected.DELETE("/brands/:id/industries/:industryId", middleware.RequireRoles(models.RoleBrand, models.RoleAdmin), taxonomyHandler.RemoveBrandIndustry)

	protected.GET("/athletes/:id/availability", availabilityHandler.Get)
	protected.GET("/athletes/:id/availability/check", availabilityHandler.Check)
	protected.GET("/athletes/:id/availability/blocked-periods", availabilityHandler.BlockedPeriods)
	protected.GET("/athletes/:id/availability/suggest-timing", availabilityHandler.SuggestTiming)
	protected.GET("/athletes/:id/availability/blocking-events", availabilityHandler.BlockingEvents)
	protected.GET("/athletes/:id/availability/summary", availabilityHandler.Summary)

	availabilityWrites := protected.Group("")
	availabilityWrites.Use(middleware.RequireRoles(models.RoleAthlete, models.RoleAdmin))
	availabilityWrites.Use(middleware.Audit(userRepo, "AVAILABILITY_WRITE", "athlete_availability"))
	availabilityWrites.PUT("/athletes/:id/availability", availabilityHandler.Update)
	availabilityWrites.POST("/athletes/:id/availability/blocked-periods", availabilityHandler.AddBlockedPeriod)
	availabilityWrites.DELETE("/athletes/:id/availability/blocked-periods/:periodId", availabilityHandler.RemoveBlockedPeriod)

	if cfg.Calendar.Enabled {
		protected.GET("/schools/:id/calendar", calendarHandler.List)

		calendarWrites := protected.Group("")
		calendarWrites.Use(middleware.RequireRoles(models.RoleSchoolAdmin, models.RoleAdmin))
		calendarWrites.Use(middleware.Audit(userRepo, "CALENDAR_WRITE", "academic_calendar"))
		calendarWrites.POST("/schools/:id/calendar", calendarHandler.Create)
		calendarWrites.PUT("/schools/:id/calendar/:eventId", calendarHandler.Update)
		calendarWrites.DELETE("/schools/:id/calendar/:eventId", calendarHandler.Delete)
	}

	if reportService != nil {
		reportHandler := handler.NewReportHandler(reportService)
		protected.POST("/reports/generate", reportHandler.Generate)
		protected.GET("/reports/:id", reportHandler.Status)
		api.GET("/export/:token", reportHandler.Download)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
	recalcQueue.Stop()
	if reportQueue != nil {
		reportQueue.Stop()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
