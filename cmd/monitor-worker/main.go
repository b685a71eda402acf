package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Betech-JSC/bed-app-annha-sub010/internal/cron"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/monitoring"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/notifications"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/projects"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/config"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/metrics"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/migrate"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/outbox"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "monitor-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "monitor-worker"

	logg = logger.New(logger.Options{
		ServiceName: "monitor-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	notifRepo := notifications.NewRepository(dbClient.DB())

	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		DB:     dbClient,
		Repo:   notifRepo,
		Outbox: outboxSvc,
		Locker: redisClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	monitorService, err := monitoring.NewService(monitoring.ServiceParams{
		Projects:     projects.NewReadPort(dbClient.DB()),
		Dispatcher:   dispatcher,
		Metrics:      metrics.NewSweepMetrics(prometheus.DefaultRegisterer),
		Logger:       logg,
		Workers:      cfg.Monitoring.Workers,
		QueryTimeout: cfg.Monitoring.QueryTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create monitoring service", err)
		os.Exit(1)
	}

	sweepJob, err := cron.NewSweepJob(cron.SweepJobParams{
		Logger:  logg,
		Monitor: monitorService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sweep job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewNotificationRetentionJob(cron.NotificationRetentionJobParams{
		Logger:        logg,
		Repository:    notifRepo,
		RetentionDays: cfg.Retention.NotificationDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create retention job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("monitor-worker"), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler lock", err)
		os.Exit(1)
	}

	scheduler, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(sweepJob, retentionJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Monitoring.SweepInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "monitor-worker",
	})
	logg.Info(ctx, "starting monitor worker")

	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "monitor worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "monitor worker shutting down gracefully")
}
