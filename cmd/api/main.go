package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/academy-admin-api/api/swagger"
	"github.com/noah-isme/academy-admin-api/internal/handler"
	"github.com/noah-isme/academy-admin-api/internal/middleware"
	"github.com/noah-isme/academy-admin-api/internal/models"
	"github.com/noah-isme/academy-admin-api/internal/repository"
	"github.com/noah-isme/academy-admin-api/internal/service"
	"github.com/noah-isme/academy-admin-api/pkg/cache"
	"github.com/noah-isme/academy-admin-api/pkg/config"
	"github.com/noah-isme/academy-admin-api/pkg/database"
	"github.com/noah-isme/academy-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academy-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academy-admin-api/pkg/middleware/requestid"
)

// @title Academy Admin API
// @version 1.0.0
// @description Signup-code and class-join admission engine for the academy dashboard
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, status caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.SignupCodes.StatusCacheTTL, logr)
	}

	batchRepo := repository.NewBatchRepository(db)
	classRepo := repository.NewClassRepository(db)
	requestRepo := repository.NewJoinRequestRepository(db)
	usageRepo := repository.NewUsageLogRepository(db)

	signupSvc := service.NewSignupCodeService(batchRepo, usageRepo, cacheSvc, metricsSvc, validate, logr,
		cfg.SignupCodes.CodeLength, cfg.SignupCodes.StatusCacheTTL)
	activitySvc := service.NewActivityLogService(usageRepo, logr)
	exportSvc := service.NewExportService(usageRepo, logr)
	admissionSvc := service.NewAdmissionService(requestRepo, classRepo, service.NewBulkReporter(), metricsSvc,
		validate, logr, cfg.Admissions.MaxBulkSize)

	signupHandler := handler.NewSignupCodeHandler(signupSvc)
	activityHandler := handler.NewActivityLogHandler(activitySvc, exportSvc)
	requestHandler := handler.NewJoinRequestHandler(admissionSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/signup/redeem", signupHandler.Redeem)

	admin := api.Group("")
	admin.Use(middleware.JWT(cfg.JWT.Secret))
	admin.Use(middleware.RequireRole(models.RoleAdmin, models.RoleTeacher))
	{
		admin.POST("/batches/:id/signup-code/reset", signupHandler.Reset)
		admin.PATCH("/batches/:id/signup-code/toggle", signupHandler.Toggle)
		admin.GET("/batches/:id/signup-code", signupHandler.Status)
		admin.GET("/batches/:id/signup-code/events", signupHandler.Events)

		admin.GET("/activity-logs", activityHandler.Query)
		admin.GET("/activity-logs/export", activityHandler.Export)

		admin.GET("/classes/:id/join-requests", requestHandler.ListPending)
		admin.GET("/classes/:id/join-requests/history", requestHandler.History)
		admin.POST("/join-requests/:id/approve", requestHandler.Approve)
		admin.POST("/join-requests/:id/reject", requestHandler.Reject)
		admin.POST("/join-requests/bulk-approve", requestHandler.BulkApprove)
		admin.POST("/join-requests/bulk-reject", requestHandler.BulkReject)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
