package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "credhub/docs"
	"credhub/internal/caching"
	"credhub/internal/config"
	"credhub/internal/handlers"
	"credhub/internal/jobs"
	"credhub/internal/jobs/background"
	"credhub/internal/middleware"
	"credhub/internal/models"
	"credhub/internal/observability"
	"credhub/internal/repositories"
	"credhub/internal/services"
	"credhub/internal/session"
	"credhub/pkg/database"
)

const version = "1.0.0"

// @title        credhub API
// @version      1.0
// @description  Provider credentialing administration backend.
// @BasePath     /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Missing connection parameters leave the client unconfigured; the API
	// still starts and reports NOT_CONFIGURED.
	db, err := database.NewClient(ctx, database.Options{URL: cfg.Database.URL, Schema: cfg.Database.Schema}, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if db.Configured() {
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("failed to apply schema", zap.Error(err))
		}
	}

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		if cfg.Environment == "production" {
			logger.Fatal("JWT_SECRET is required in production")
		}
		jwtSecret = random.String(32)
		logger.Warn("JWT_SECRET not set, using a generated secret; sessions will not survive a restart")
	}

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)

	var store services.ObjectStore
	if cfg.Minio.Endpoint != "" {
		store, err = services.NewMinioStore(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
		if err == nil {
			err = store.EnsureBucketExists(ctx, cfg.Minio.Bucket)
		}
		if err != nil {
			logger.Warn("document storage unavailable", zap.String("endpoint", cfg.Minio.Endpoint), zap.Error(err))
			store = nil
		}
	}

	// Repositories
	userRepo := repositories.NewUserRepo(db)
	orgRepo := repositories.NewOrganizationRepo(db)
	membershipRepo := repositories.NewMembershipRepo(db)
	locationRepo := repositories.NewLocationRepo(db)
	providerRepo := repositories.NewProviderRepo(db)
	workflowRepo := repositories.NewWorkflowRepo(db)
	taskRepo := repositories.NewTaskRepo(db)
	documentRepo := repositories.NewDocumentRepo(db)
	auditLogsRepo := repositories.NewAuditLogsRepo(db)
	statsRepo := repositories.NewStatsRepo(db)
	diagnosticsRepo := repositories.NewDiagnosticsRepo(db)

	// Services
	auditLogsSvc := services.NewAuditLogsService(auditLogsRepo)
	effects := services.NewWriteEffects(auditLogsSvc, cacheSvc, logger)
	authSvc := services.NewAuthService(userRepo, cacheSvc, jwtSecret, cfg.Auth.TokenTTL, cfg.Auth.RedirectTo, logger)
	orgSvc := services.NewOrganizationService(orgRepo, membershipRepo, services.NewOrgTx(db), logger)
	locationSvc := services.NewLocationService(locationRepo, orgSvc, effects)
	providerSvc := services.NewProviderService(providerRepo, orgSvc, effects)
	workflowSvc := services.NewWorkflowService(workflowRepo, orgSvc, effects)
	taskSvc := services.NewTaskService(taskRepo, effects)
	setupSvc := services.NewSetupService(orgSvc, locationSvc, providerSvc)
	dashboardSvc := services.NewDashboardService(statsRepo, orgSvc, cacheSvc, logger)
	complianceSvc := services.NewComplianceService(providerRepo, workflowRepo, services.NewRenewalTx(db), effects, logger)
	documentSvc := services.NewDocumentService(documentRepo, providerRepo, store, cfg.Minio.Bucket, effects, logger)
	rosterSvc := services.NewRosterService(providerSvc)
	diagnosticsSvc := services.NewDiagnosticsService(diagnosticsRepo)

	// Background work: asynq for on-demand compliance runs, gocron for the
	// periodic sweep.
	redisOpt := asynq.RedisClientOpt{
		Addr:     strings.TrimPrefix(cfg.Redis.Addr, "redis://"),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	var complianceQueue handlers.ComplianceQueue
	worker := jobs.NewServer(redisOpt, cfg.Jobs.Concurrency, logger)
	if err := worker.Start(jobs.NewServeMux(jobs.NewComplianceWorker(complianceSvc, logger))); err != nil {
		logger.Warn("compliance worker not started, checks will run inline", zap.Error(err))
	} else {
		defer worker.Shutdown()
		client := asynq.NewClient(redisOpt)
		defer client.Close()
		complianceQueue = jobs.NewComplianceQueue(client, logger)
	}

	scheduler, err := background.NewJobScheduler(complianceSvc, cacheSvc, cfg.Jobs.ComplianceSweep, logger)
	if err != nil {
		logger.Fatal("failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Auth middleware
	var external jwt.Keyfunc
	if cfg.Auth.JWKSURL != "" {
		keyfunc, end, err := middleware.NewJWKSKeyfunc(cfg.Auth.JWKSURL, logger)
		if err != nil {
			logger.Fatal("failed to load JWKS", zap.String("url", cfg.Auth.JWKSURL), zap.Error(err))
		}
		defer end()
		external = keyfunc
	}
	jwtConfig := middleware.JWTConfig(authSvc, external, logger)
	membership := middleware.NewMembershipMiddleware(orgSvc, logger)

	// Handlers
	evaluator := &session.Evaluator{
		Configured:   cfg.Database.Configured() && db.Configured(),
		Auth:         authSvc,
		Orgs:         orgSvc,
		CheckTimeout: session.DefaultCheckTimeout,
		Logger:       logger,
	}
	authHandlers := handlers.NewAuthHandlers(authSvc, evaluator)
	orgHandlers := handlers.NewOrganizationHandlers(orgSvc, setupSvc, logger)
	locationHandlers := handlers.NewLocationHandlers(locationSvc)
	providerHandlers := handlers.NewProviderHandlers(providerSvc, documentSvc, rosterSvc)
	workflowHandlers := handlers.NewWorkflowHandlers(workflowSvc)
	taskHandlers := handlers.NewTaskHandlers(taskSvc)
	dashboardHandlers := handlers.NewDashboardHandlers(dashboardSvc, complianceSvc, complianceQueue, logger)
	auditLogsHandlers := handlers.NewAuditLogsHandlers(auditLogsSvc)
	healthHandlers := handlers.NewHealthHandlers(db, cacheSvc, store != nil, diagnosticsSvc, version)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
			middleware.APIKeyHeader, middleware.OrganizationHeader,
		},
	}))
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	versions := middleware.NewVersionMiddleware()
	e.Use(versions.Resolve())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := versions.Group(e, "v1", middleware.RequireAPIKey(cfg.Database.APIKey))

	// Authentication routes (no JWT required)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.SignUp)
	auth.POST("/signin", authHandlers.SignIn)
	auth.POST("/signout", authHandlers.SignOut)
	auth.GET("/session", authHandlers.GetSession)
	v1.GET("/session/state", authHandlers.SessionState)

	// Protected routes
	protected := v1.Group("", echojwt.WithConfig(jwtConfig), membership.LoadMembership())
	staff := membership.RequireRole(models.RoleAdmin, models.RoleManager)

	protected.GET("/organizations", orgHandlers.ListOrganizations)
	protected.POST("/organizations", orgHandlers.CreateOrganization)
	protected.POST("/memberships", orgHandlers.CreateMembership, membership.RequireRole(models.RoleAdmin))
	protected.POST("/setup", orgHandlers.RunSetup)

	protected.GET("/locations", locationHandlers.ListLocations)
	protected.POST("/locations", locationHandlers.CreateLocation)

	protected.GET("/providers", providerHandlers.ListProviders)
	protected.POST("/providers", providerHandlers.CreateProvider)
	protected.GET("/providers/roster.pdf", providerHandlers.ExportRoster)
	protected.PATCH("/providers/:id", providerHandlers.UpdateProvider)
	protected.GET("/providers/:id/documents", providerHandlers.ListDocuments)
	protected.POST("/providers/:id/documents", providerHandlers.UploadDocument)

	protected.GET("/workflows", workflowHandlers.ListWorkflows)
	protected.POST("/workflows", workflowHandlers.CreateWorkflow)

	protected.GET("/tasks", taskHandlers.ListTasks)
	protected.POST("/tasks", taskHandlers.CreateTask)
	protected.PATCH("/tasks/:id", taskHandlers.UpdateTask)

	protected.GET("/dashboard/stats", dashboardHandlers.GetStats)
	protected.POST("/compliance/run", dashboardHandlers.RunCompliance, staff)
	protected.GET("/audit-logs", auditLogsHandlers.ListAuditLogs)
	protected.GET("/diagnostics", healthHandlers.Diagnostics, staff)

	go func() {
		logger.Info("credhub server starting",
			zap.String("version", version),
			zap.String("port", cfg.Port),
			zap.Bool("database_configured", db.Configured()),
			zap.Bool("storage_enabled", store != nil))
		if err := e.Start(fmt.Sprintf(":%s", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
