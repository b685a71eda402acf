package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Betech-JSC/bed-app-annha-sub010/api/routes"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/events"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/monitoring"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/notifications"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/projects"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/workflow"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/config"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/metrics"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/migrate"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/outbox"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/pubsub"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
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

	notifService, err := notifications.NewService(notifications.ServiceParams{Repo: notifRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	readPort := projects.NewReadPort(dbClient.DB())

	acceptanceService, err := workflow.NewAcceptanceService(workflow.AcceptanceServiceParams{
		DB:         dbClient,
		Repo:       workflow.NewStageRepository(dbClient.DB()),
		Projects:   readPort,
		Dispatcher: dispatcher,
		Outbox:     outboxSvc,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create acceptance service", err)
		os.Exit(1)
	}

	costService, err := workflow.NewCostService(workflow.CostServiceParams{
		DB:         dbClient,
		Repo:       workflow.NewCostRepository(dbClient.DB()),
		Projects:   readPort,
		Dispatcher: dispatcher,
		Outbox:     outboxSvc,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cost service", err)
		os.Exit(1)
	}

	observer, err := events.NewObserver(events.ObserverParams{
		DB:         dbClient,
		Projects:   readPort,
		Dispatcher: dispatcher,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create observer", err)
		os.Exit(1)
	}

	monitorService, err := monitoring.NewService(monitoring.ServiceParams{
		Projects:     readPort,
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

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			PubSub:        pubsubClient,
			Notifications: notifService,
			Acceptance:    acceptanceService,
			Costs:         costService,
			Observer:      observer,
			Monitor:       monitorService,
		}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
