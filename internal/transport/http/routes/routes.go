package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mtaha2509/logging-platform/internal/infra/config"
	"github.com/mtaha2509/logging-platform/internal/transport/http/handlers"
	"github.com/mtaha2509/logging-platform/internal/transport/http/middleware"
	"github.com/mtaha2509/logging-platform/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Logs          *usecase.LogQueryService
	Trends        *usecase.TrendService
	Alerts        *usecase.AlertService
	Permissions   *usecase.PermissionBatchService
	Notifications *usecase.NotificationService
	Applications  *usecase.ApplicationService
	Users         *usecase.UserService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS([]string{"*"}))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth, deps.Config.Auth)

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		queryMiddlewares := buildQueryMiddlewares(deps)

		authGroup := api.Group("/auth")
		authGroup.Use(authMiddleware)
		handlers.NewAuthHandler().RegisterRoutes(authGroup)

		logGroup := api.Group("/logs")
		logGroup.Use(authMiddleware)
		if len(queryMiddlewares) > 0 {
			logGroup.Use(queryMiddlewares...)
		}
		handlers.NewLogHandler(deps.Services.Logs).RegisterRoutes(logGroup)

		trendGroup := api.Group("/trends")
		trendGroup.Use(authMiddleware)
		if len(queryMiddlewares) > 0 {
			trendGroup.Use(queryMiddlewares...)
		}
		handlers.NewTrendHandler(deps.Services.Trends).RegisterRoutes(trendGroup)

		alertGroup := api.Group("/alerts")
		alertGroup.Use(authMiddleware)
		handlers.NewAlertHandler(deps.Services.Alerts).RegisterRoutes(alertGroup)

		permissionGroup := api.Group("/permissions")
		permissionGroup.Use(authMiddleware, middleware.RequireAdmin())
		handlers.NewPermissionHandler(deps.Services.Permissions).RegisterRoutes(permissionGroup)

		notificationGroup := api.Group("/notifications")
		notificationGroup.Use(authMiddleware)
		handlers.NewNotificationHandler(deps.Services.Notifications).RegisterRoutes(notificationGroup)

		applicationGroup := api.Group("/applications")
		applicationGroup.Use(authMiddleware)
		handlers.NewApplicationHandler(deps.Services.Applications).RegisterRoutes(applicationGroup)

		userGroup := api.Group("/users")
		userGroup.Use(authMiddleware)
		handlers.NewUserHandler(deps.Services.Users).RegisterRoutes(userGroup)
	}

	return r
}

// buildQueryMiddlewares throttles the read-heavy query endpoints per client IP.
func buildQueryMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.QueryMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       "query_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
