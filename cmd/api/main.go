package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"jobportal/internal/app"
	"jobportal/internal/cache"
	"jobportal/internal/config"
	"jobportal/internal/database"
	apphttp "jobportal/internal/http"
	"jobportal/internal/http/handlers"
	httpmw "jobportal/internal/http/middleware"
	"jobportal/internal/maintenance"
	"jobportal/internal/metrics"
	"jobportal/internal/observability"
	"jobportal/internal/repository/postgres"
	"jobportal/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, database.PostgresConfig{
		Driver:          cfg.DBDriver,
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := database.Migrate(ctx, db, logger); err != nil {
			logger.WithError(err).Fatal("failed to apply migrations")
		}
	}

	var (
		redisClient *redis.Client
		store       cache.Cache = cache.Noop{}
		limiter     httpmw.Limiter
		checks      = map[string]handlers.Pinger{"postgres": db}
	)
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to redis")
		}
		defer redisClient.Close()
		redisCache := cache.NewRedisCache(redisClient, "jobportal:cache:")
		store = redisCache
		limiter = httpmw.NewRedisLimiter(redisClient, logger)
		checks["redis"] = redisCache
	} else {
		logger.Warn("REDIS_URL not set; using in-memory rate limiting and no CMS cache")
		limiter = httpmw.NewMemoryLimiter()
	}

	userRepo := postgres.NewUserRepository(db)
	recruiterRepo := postgres.NewRecruiterRepository(db)
	planRepo := postgres.NewPlanRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)
	jobRepo := postgres.NewJobRepository(db)
	applicationRepo := postgres.NewApplicationRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	bannerRepo := postgres.NewBannerRepository(db)
	cardRepo := postgres.NewCardRepository(db)

	collector := metrics.NewCollector()
	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)

	notificationService := app.NewNotificationService(notificationRepo, logger)
	authService := app.NewAuthService(userRepo, jwtProvider, cfg.AccessTokenTTL, logger)
	recruiterService := app.NewRecruiterService(recruiterRepo, userRepo, logger)
	subscriptionService := app.NewSubscriptionService(planRepo, subscriptionRepo, jobRepo, recruiterRepo, notificationService, logger)
	jobService := app.NewJobService(jobRepo, recruiterRepo, subscriptionService, notificationService, logger)
	applicationService := app.NewApplicationService(applicationRepo, jobRepo, userRepo, subscriptionService, notificationService, collector, logger)
	cmsService := app.NewCMSService(bannerRepo, cardRepo, store, cfg.CMSCacheTTL, cfg.Location(), logger)
	sweeper := maintenance.NewSweeper(jobService, subscriptionService, collector, logger)

	plans, err := config.LoadPlans(cfg.PlansFile)
	if err != nil {
		logger.WithError(err).Fatal("failed to load plan catalog")
	}
	if len(plans) > 0 {
		seeded, err := subscriptionService.SeedPlans(ctx, plans)
		if err != nil {
			logger.WithError(err).Fatal("failed to seed plans")
		}
		logger.WithField("plans", seeded).Info("plan catalog seeded")
	}

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		AuthHandler:         handlers.NewAuthHandler(authService),
		JobHandler:          handlers.NewJobHandler(jobService),
		ApplicationHandler:  handlers.NewApplicationHandler(applicationService, limiter),
		RecruiterHandler:    handlers.NewRecruiterHandler(recruiterService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(subscriptionService),
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
		CMSHandler:          handlers.NewCMSHandler(cmsService),
		HealthHandler:       handlers.NewHealthHandler(checks),
		MaintenanceHandler:  handlers.NewMaintenanceHandler(sweeper, logger),
		AuthMiddleware:      httpmw.NewAuthMiddleware(jwtProvider),
		Limiter:             limiter,
		Metrics:             collector,
		Logger:              logger,
		RequestTimeout:      cfg.RequestTimeout,
		CORSOrigins:         cfg.CORSOrigins,
	})

	go sweeper.Run(ctx, cfg.SweepInterval)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("API started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
