package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mtaha2509/logging-platform/internal/core/port"
	"github.com/mtaha2509/logging-platform/internal/infra/config"
	"github.com/mtaha2509/logging-platform/internal/infra/database"
	kafkainfra "github.com/mtaha2509/logging-platform/internal/infra/kafka"
	"github.com/mtaha2509/logging-platform/internal/infra/logger"
	redisinfra "github.com/mtaha2509/logging-platform/internal/infra/redis"
	"github.com/mtaha2509/logging-platform/internal/infra/scheduler"
	"github.com/mtaha2509/logging-platform/internal/infra/telemetry"
	postgresrepo "github.com/mtaha2509/logging-platform/internal/repository/postgres"
	redisrepo "github.com/mtaha2509/logging-platform/internal/repository/redis"
	"github.com/mtaha2509/logging-platform/internal/transport/http/middleware"
	"github.com/mtaha2509/logging-platform/internal/transport/http/routes"
	"github.com/mtaha2509/logging-platform/internal/usecase"
)

type Application struct {
	cfg       *config.AppConfig
	engine    *gin.Engine
	logger    *zap.Logger
	pool      *pgxpool.Pool
	redis     *redisinfra.Client
	producer  *kafkainfra.Producer
	scheduler *scheduler.Scheduler
	tracer    *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init tracer provider: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if cfg.Postgres.Migrate {
		if err := database.Migrate(pool, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var eventPublisher port.EventPublisher
	var producer *kafkainfra.Producer
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka disabled, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	scopeCache := redisrepo.NewScopeCacheRepository(redisClient.Client(), cfg.Redis.ScopePrefix)
	scopeTTL := cfg.Redis.ScopeTTL
	if scopeTTL <= 0 {
		scopeTTL = 5 * time.Minute
	}

	scopeResolver := usecase.NewScopeResolver(repos.Users, repos.Permissions, log).
		WithCache(scopeCache, scopeTTL)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "logpf:ratelimit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	authService := usecase.NewAuthService(repos.Users)
	logService := usecase.NewLogQueryService(repos.Logs, scopeResolver, usecase.PageBounds{
		DefaultSize: cfg.Pagination.DefaultSize,
		MaxSize:     cfg.Pagination.MaxSize,
	}, log)
	trendService := usecase.NewTrendService(repos.Logs, scopeResolver, log)
	alertService := usecase.NewAlertService(repos.Alerts, repos.Applications, scopeResolver)
	permissionService := usecase.NewPermissionBatchService(repos.Permissions, repos.Users, repos.Applications, scopeResolver, eventPublisher, log)
	notificationService := usecase.NewNotificationService(repos.Notifications)
	applicationService := usecase.NewApplicationService(repos.Applications, repos.Permissions, repos.Users, scopeResolver)
	userService := usecase.NewUserService(repos.Users)

	evaluator := usecase.NewAlertEvaluator(repos.Alerts, repos.Applications, repos.Logs, eventPublisher, usecase.EvaluatorConfig{
		Workers:         cfg.Evaluator.Workers,
		PerAlertTimeout: cfg.Evaluator.PerAlertTimeout,
		MaxRetries:      cfg.Evaluator.MaxRetries,
		RetryDelay:      cfg.Evaluator.RetryDelay,
	}, log)

	sweepInterval := cfg.Evaluator.Interval
	if sweepInterval <= 0 {
		sweepInterval = 30 * time.Second
	}
	sweepScheduler := scheduler.New(evaluator, sweepInterval, log).WithMetrics(metrics)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		log.Warn("failed to register http metrics", zap.Error(err))
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     httpMetrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:          authService,
			Logs:          logService,
			Trends:        trendService,
			Alerts:        alertService,
			Permissions:   permissionService,
			Notifications: notificationService,
			Applications:  applicationService,
			Users:         userService,
		},
	})

	return &Application{
		cfg:       cfg,
		engine:    engine,
		logger:    log,
		pool:      pool,
		redis:     redisClient,
		producer:  producer,
		scheduler: sweepScheduler,
		tracer:    tracer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			if err := a.tracer.Shutdown(context.Background()); err != nil {
				a.logger.Warn("tracer provider shutdown failed", zap.Error(err))
			}
		}
	}()

	a.scheduler.Start(ctx)
	defer a.scheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting logging platform API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
