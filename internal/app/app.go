package app

import (
	"context"
	"fmt"

	"github.com/diillson/user-service-go/internal/adapter/database"
	"github.com/diillson/user-service-go/internal/adapter/http"
	"github.com/diillson/user-service-go/internal/app/user"
	"github.com/diillson/user-service-go/internal/infra/metrics"
	"github.com/diillson/user-service-go/internal/infra/middleware"
	"github.com/diillson/user-service-go/pkg/cache"
	"github.com/diillson/user-service-go/pkg/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App agrega as dependências da aplicação já injetadas
type App struct {
	Logger        *zap.Logger
	Config        *config.Config
	DB            *database.Database
	Cache         cache.Cache
	UserService   *user.Service
	UserHandler   *http.UserHandler
	HealthChecker *http.HealthChecker
	Middleware    *middleware.Middleware
	APIMetrics    *metrics.APIMetrics
}

// NewApp cria uma nova instância da aplicação com todas as dependências injetadas
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbConfig := database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        database.ParseLogLevel(cfg.Database.LogLevel),
		SlowThreshold:   cfg.Database.SlowThreshold,
		MigrationDir:    cfg.Database.MigrationDir,
		SkipMigrations:  cfg.Database.SkipMigrations,
	}

	db, err := database.NewDatabase(ctx, dbConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("erro ao inicializar banco de dados: %w", err)
	}

	apiMetrics := metrics.NewAPIMetrics()

	appCache := newCache(cfg, apiMetrics, logger)

	userRepo := database.NewUserRepository(db.DB(), logger)
	userService := user.NewService(userRepo, appCache, logger)

	userHandler := http.NewUserHandler(userService, logger)
	userHandler.SetMetrics(apiMetrics)

	healthChecker := http.NewHealthChecker(db, appCache, logger)

	middlewares := middleware.NewMiddleware(logger, cfg.Tracing.ServiceName)
	middlewares.SetMetricsMiddleware(middleware.NewMetricsMiddleware(apiMetrics, logger))

	return &App{
		Logger:        logger,
		Config:        cfg,
		DB:            db,
		Cache:         appCache,
		UserService:   userService,
		UserHandler:   userHandler,
		HealthChecker: healthChecker,
		Middleware:    middlewares,
		APIMetrics:    apiMetrics,
	}, nil
}

// newCache escolhe o backend de cache conforme a configuração, com
// fallback para memória quando o Redis não responde
func newCache(cfg *config.Config, apiMetrics *metrics.APIMetrics, logger *zap.Logger) cache.Cache {
	if !cfg.Cache.Enabled {
		return &cache.NoOpCache{}
	}

	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(
			cfg.Cache.Redis.Address,
			cfg.Cache.Redis.Password,
			cfg.Cache.Redis.DB,
			logger,
		)
		if err == nil {
			logger.Info("Cache Redis inicializado",
				zap.String("address", cfg.Cache.Redis.Address))
			return redisCache
		}

		logger.Error("Erro ao conectar ao Redis, usando cache em memória",
			zap.String("address", cfg.Cache.Redis.Address),
			zap.Error(err))
	}

	return cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL, apiMetrics, logger)
}

// RegisterRoutes registra todas as rotas no router
func (a *App) RegisterRoutes(router *gin.Engine) {
	router.Use(a.Middleware.Recovery())
	router.Use(a.Middleware.Logger())
	router.Use(a.Middleware.SecurityHeaders())
	router.Use(a.Middleware.CORS())
	router.Use(a.Middleware.Metrics())

	if a.Config.Tracing.Enabled {
		router.Use(a.Middleware.Tracing())
	}

	users := router.Group("/users")
	{
		users.POST("", a.UserHandler.CreateUser)
		users.GET("", a.UserHandler.ListUsers)
		users.GET("/:id", a.UserHandler.GetUser)
		users.PUT("/:id", a.UserHandler.UpdateUser)
		users.DELETE("/:id", a.UserHandler.DeleteUser)
	}

	router.GET("/health", a.HealthChecker.LivenessCheck)
	router.GET("/health/liveness", a.HealthChecker.LivenessCheck)
	router.GET("/health/readiness", a.HealthChecker.ReadinessCheck)
	router.GET("/health/details", a.HealthChecker.DetailedHealth)

	if a.Config.Metrics.Enabled {
		metricsHandler := middleware.NewMetricsHandler(a.APIMetrics, a.Logger)
		metricsHandler.RegisterEndpoint(router, a.Config.Metrics.PrometheusPath)
	}
}

// Close libera os recursos da aplicação
func (a *App) Close() error {
	return a.DB.Close()
}
