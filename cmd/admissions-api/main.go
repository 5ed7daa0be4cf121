package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/unisel/admissions-api/api/swagger"
	"github.com/unisel/admissions-api/internal/handler"
	"github.com/unisel/admissions-api/internal/middleware"
	"github.com/unisel/admissions-api/internal/models"
	"github.com/unisel/admissions-api/internal/repository"
	"github.com/unisel/admissions-api/internal/service"
	"github.com/unisel/admissions-api/pkg/cache"
	"github.com/unisel/admissions-api/pkg/config"
	"github.com/unisel/admissions-api/pkg/database"
	"github.com/unisel/admissions-api/pkg/lock"
	"github.com/unisel/admissions-api/pkg/logger"
	corsmiddleware "github.com/unisel/admissions-api/pkg/middleware/cors"
	reqidmiddleware "github.com/unisel/admissions-api/pkg/middleware/requestid"
)

// @title Admissions API
// @version 1.0.0
// @description Eligibility outcome processing and convocation list ranking
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	locker := lock.NewLocker(redisClient, "admissions")
	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	scoreRepo := repository.NewEnemScoreRepository(db)
	outcomeRepo := repository.NewApplicationOutcomeRepository(db)
	convocationRepo := repository.NewConvocationRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	processRepo := repository.NewProcessSelectionRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	applicationService := service.NewApplicationService(applicationRepo, outcomeRepo, scoreRepo, logr)
	outcomeService := service.NewOutcomeService(applicationRepo, scoreRepo, outcomeRepo, locker, cfg.Processing.LockTTL, metrics, logr)
	convocationService := service.NewConvocationService(convocationRepo, outcomeRepo, courseRepo, locker, cfg.Convocations.LockTTL, metrics, logr)
	exportService := service.NewExportService(convocationRepo, logr)
	processService := service.NewProcessSelectionService(processRepo, logr)

	authHandler := handler.NewAuthHandler(authService)
	applicationHandler := handler.NewApplicationHandler(applicationService)
	outcomeHandler := handler.NewOutcomeHandler(outcomeService, applicationService)
	convocationHandler := handler.NewConvocationHandler(convocationService, exportService)
	processHandler := handler.NewProcessSelectionHandler(processService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/applications", applicationHandler.List)
		protected.GET("/applications/:id", applicationHandler.Get)
		protected.GET("/applications/:id/outcome", applicationHandler.GetOutcome)
		protected.GET("/applications/:id/score", applicationHandler.GetScore)

		protected.GET("/process-selections", processHandler.List)
		protected.GET("/process-selections/:id", processHandler.Get)
		protected.GET("/process-selections/:id/convocation-lists", processHandler.ListConvocationLists)
		protected.GET("/process-selections/:id/outcomes", outcomeHandler.List)
		protected.POST("/process-selections/:id/outcomes", outcomeHandler.Create)
		protected.POST("/process-selections/:id/outcomes/process",
			middleware.RequireRole(models.RoleAdmin), outcomeHandler.Process)

		protected.GET("/convocation-lists/:id", convocationHandler.Get)
		protected.GET("/convocation-lists/:id/applications", convocationHandler.ListRows)
		protected.POST("/convocation-lists/:id/generate",
			middleware.RequireRole(models.RoleAdmin), convocationHandler.Generate)

		if cfg.Exports.Enabled {
			protected.GET("/convocation-lists/:id/export/csv", convocationHandler.ExportCSV)
			protected.GET("/convocation-lists/:id/export/pdf", convocationHandler.ExportPDF)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
