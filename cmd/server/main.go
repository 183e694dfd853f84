package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	addressapp "github.com/erp/backoffice/internal/application/address"
	companyapp "github.com/erp/backoffice/internal/application/company"
	identityapp "github.com/erp/backoffice/internal/application/identity"
	storeapp "github.com/erp/backoffice/internal/application/store"
	"github.com/erp/backoffice/internal/application/validation"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/migration"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/storage"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/erp/backoffice/internal/infrastructure/viacep"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/erp/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

//	@title			Back Office API
//	@version		1.0
//	@description	Empresas, lojas, usuários, papéis e permissões de um back office multiempresa.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Telemetry.Profiling.SpanProfiles && profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log := loggerProvider.Bridge(baseLog, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracing(cfg.Telemetry, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		runMigrations(db, log)
	}

	// Redis backs the CEP cache and token revocation when enabled
	cacheFactory := cache.NewFactory(cfg.Redis, cache.WithLogger(log))
	defer func() {
		_ = cacheFactory.Close()
	}()
	var revocations auth.RevocationStore = auth.NewInMemoryRevocationStore()
	if client := cacheFactory.Client(); client != nil {
		revocations = auth.NewRedisRevocationStore(client)
	}

	objects := newObjectStorage(ctx, cfg.Storage, log)

	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	cepProvider, err := telemetry.NewInstrumentedCEPProvider(viacep.NewClient(cfg.CEP), meter)
	if err != nil {
		log.Fatal("Failed to instrument CEP provider", zap.Error(err))
	}

	// Repositories
	uow := persistence.NewGormUnitOfWork(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	permissionRepo := persistence.NewGormPermissionRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)

	// Application services
	v := validation.New()
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, revocations, v, log)
	userService := identityapp.NewUserService(userRepo, companyRepo, uow, revocations, cfg.JWT.AccessTokenExpiration, v, log)
	roleService := identityapp.NewRoleService(roleRepo, uow, v, log)
	permissionService := identityapp.NewPermissionService(permissionRepo, uow, v, log)
	companyService := companyapp.NewService(companyRepo, objects, v, cfg.Storage.LogoPrefix, log)
	storeService := storeapp.NewService(companyRepo, storeRepo, uow, v, log)
	lookupService := addressapp.NewService(cepProvider, locationRepo, cacheFactory.CEPCache(), cfg.CEP.CacheTTL, log)
	referenceService := addressapp.NewReferenceService(locationRepo)

	handlers := router.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Check{
			"database": func(context.Context) error { return db.Ping() },
		}),
		Auth:       handler.NewAuthHandler(authService, userService),
		Address:    handler.NewAddressHandler(lookupService, referenceService),
		Company:    handler.NewCompanyHandler(companyService),
		Store:      handler.NewStoreHandler(storeService),
		User:       handler.NewUserHandler(userService),
		Role:       handler.NewRoleHandler(roleService),
		Permission: handler.NewPermissionHandler(permissionService),
	}

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.NewEngine(router.Config{
		Production: cfg.App.IsProduction(),
		HTTP:       cfg.HTTP,
		Tracing: middleware.TracingConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			Enabled:        tracerProvider.IsEnabled(),
			TracerProvider: otel.GetTracerProvider(),
		},
		Metrics: httpMetrics,
		JWT: middleware.JWTConfig{
			JWTService:  jwtService,
			Revocations: revocations,
		},
		Swagger: cfg.Swagger,
		Logger:  log,
	}, handlers)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func runMigrations(db *persistence.Database, log *zap.Logger) {
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get database handle for migrations", zap.Error(err))
	}
	// The migrator is not closed: closing it closes the shared pool.
	m, err := migration.New(sqlDB, log)
	if err != nil {
		log.Fatal("Failed to initialize migrator", zap.Error(err))
	}
	if err := m.Up(); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}
}

// newObjectStorage returns the S3 logo store, or an in-memory one when
// object storage is disabled
func newObjectStorage(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) companyapp.ObjectStorage {
	if !cfg.Enabled {
		log.Warn("Object storage disabled, logos are kept in memory")
		return storage.NewMemoryObjectStorage("/storage")
	}
	s3, err := storage.NewS3ObjectStorage(ctx, cfg, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to ensure storage bucket", zap.Error(err))
	}
	return s3
}
