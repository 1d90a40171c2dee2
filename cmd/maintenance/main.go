package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"jobportal/internal/app"
	"jobportal/internal/config"
	"jobportal/internal/database"
	"jobportal/internal/maintenance"
	"jobportal/internal/metrics"
	"jobportal/internal/observability"
	"jobportal/internal/repository/postgres"
)

// maintenance runs one expiry sweep over jobs and subscriptions and exits.
// Schedule it with cron when the API runs with SWEEP_INTERVAL=0.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("maintenance failed")
	}
}

func run(cfg *config.Config, logger logrus.FieldLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, database.PostgresConfig{
		Driver:          cfg.DBDriver,
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := database.Migrate(ctx, db, logger); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	jobRepo := postgres.NewJobRepository(db)
	recruiterRepo := postgres.NewRecruiterRepository(db)
	notifications := app.NewNotificationService(postgres.NewNotificationRepository(db), logger)
	subscriptions := app.NewSubscriptionService(postgres.NewPlanRepository(db), postgres.NewSubscriptionRepository(db), jobRepo, recruiterRepo, notifications, logger)
	jobs := app.NewJobService(jobRepo, recruiterRepo, subscriptions, notifications, logger)

	sweeper := maintenance.NewSweeper(jobs, subscriptions, metrics.NewCollector(), logger)
	_, err = sweeper.RunOnce(ctx)
	return err
}
