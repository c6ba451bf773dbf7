package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/boxgym/boxgym-api/api/swagger"
	"github.com/boxgym/boxgym-api/internal/handler"
	"github.com/boxgym/boxgym-api/internal/middleware"
	"github.com/boxgym/boxgym-api/internal/repository"
	"github.com/boxgym/boxgym-api/internal/service"
	"github.com/boxgym/boxgym-api/pkg/cache"
	"github.com/boxgym/boxgym-api/pkg/config"
	"github.com/boxgym/boxgym-api/pkg/database"
	"github.com/boxgym/boxgym-api/pkg/jobs"
	"github.com/boxgym/boxgym-api/pkg/logger"
	corsmiddleware "github.com/boxgym/boxgym-api/pkg/middleware/cors"
	reqidmiddleware "github.com/boxgym/boxgym-api/pkg/middleware/requestid"
	"github.com/boxgym/boxgym-api/pkg/storage"
)

// @title BoxGym API
// @version 1.0.0
// @description Management API for a boxing school: members, training sessions, attendance and billing
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	metricsService := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		repo := repository.NewCacheRepository(redisClient)
		defer repo.Close() //nolint:errcheck
		cacheRepo = repo
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, logr, cfg.Cache.Enabled)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	professorRepo := repository.NewProfessorRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	pricingRepo := repository.NewPricingRepository(db)
	reportRepo := repository.NewReportRepository(db)

	authService := service.NewAuthService(userRepo, studentRepo, professorRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "boxgym-api",
	})
	pricingService := service.NewPricingService(pricingRepo, userRepo, nil, logr)
	billingService := service.NewBillingService(studentRepo, pricingService, cacheService, logr, cfg.Cache.RevenueTTL)
	pricingService.BindBilling(billingService)
	studentService := service.NewStudentService(studentRepo, userRepo, billingService, nil, logr)
	professorService := service.NewProfessorService(professorRepo, nil, logr)
	sessionService := service.NewSessionService(sessionRepo, cacheService, nil, logr, cfg.Cache.SessionTTL)
	attendanceService := service.NewAttendanceService(attendanceRepo, sessionRepo, studentRepo, nil, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		reportService *service.ReportService
		reportQueue   *jobs.Queue
	)
	if cfg.Reports.Enabled {
		reportStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		exportService := service.NewExportService(attendanceRepo, billingService, reportStorage, logr)
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

		reportQueue = jobs.NewQueue("reports", func(ctx context.Context, job jobs.Job) error {
			return reportService.ProcessJob(ctx, job)
		}, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportService = service.NewReportService(reportRepo, reportQueue, exportService, signer, metricsService, nil, logr)
		reportQueue.Start(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	authHandler := handler.NewAuthHandler(authService)
	studentHandler := handler.NewStudentHandler(studentService)
	professorHandler := handler.NewProfessorHandler(professorService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	billingHandler := handler.NewBillingHandler(billingService, pricingService)
	metricsHandler := handler.NewMetricsHandler(metricsService, db)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register/student", authHandler.RegisterStudent)
	api.POST("/auth/register/professor", authHandler.RegisterProfessor)
	api.POST("/auth/refresh", authHandler.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.POST("/auth/change-password", authHandler.ChangePassword)

		authed.GET("/students", middleware.RequireProfessor(), studentHandler.List)
		authed.GET("/students/:id", middleware.RequireProfessorOrSelf(), studentHandler.Get)
		authed.PUT("/students/:id", middleware.RequireProfessorOrSelf(), studentHandler.Update)
		authed.POST("/students/:id/payments", middleware.RequireProfessor(), studentHandler.RecordPayment)
		authed.DELETE("/students/:id", middleware.RequireProfessor(), studentHandler.Delete)

		authed.GET("/professors", professorHandler.List)
		authed.GET("/professors/:id", professorHandler.Get)
		authed.PUT("/professors/:id", middleware.RequireProfessorOrSelf(), professorHandler.Update)

		authed.GET("/sessions", sessionHandler.List)
		authed.GET("/sessions/:id", sessionHandler.Get)
		authed.POST("/sessions", middleware.RequireProfessor(), sessionHandler.Create)
		authed.PUT("/sessions/:id", middleware.RequireProfessor(), sessionHandler.Update)
		authed.DELETE("/sessions/:id", middleware.RequireProfessor(), sessionHandler.Delete)
		authed.GET("/sessions/:id/attendance", middleware.RequireProfessor(), attendanceHandler.BySession)

		authed.POST("/attendance", attendanceHandler.Mark)
		authed.GET("/attendance", attendanceHandler.List)

		authed.GET("/billing/revenue", middleware.RequireProfessor(), billingHandler.Revenue)
		authed.GET("/billing/pricing", middleware.RequireProfessor(), billingHandler.ListPricing)
		authed.PUT("/billing/pricing", middleware.RequireProfessor(), billingHandler.ReplacePricing)

		authed.GET("/metrics/snapshot", middleware.RequireProfessor(), metricsHandler.Snapshot)

		if reportService != nil {
			reportHandler := handler.NewReportHandler(reportService)
			authed.POST("/reports", middleware.RequireProfessor(), reportHandler.Create)
			authed.GET("/reports", middleware.RequireProfessor(), reportHandler.List)
			authed.GET("/reports/:id", middleware.RequireProfessor(), reportHandler.Get)
			authed.GET("/reports/:id/download", middleware.RequireProfessor(), reportHandler.DownloadToken)
			api.GET("/export/:token", reportHandler.Download)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	if reportQueue != nil {
		reportQueue.Stop()
	}
	logr.Sugar().Infow("server stopped")
}
