package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	notification "github.com/solemate/solemate-backend/internal/notifications"
	"github.com/solemate/solemate-backend/pkg/config"
	"github.com/solemate/solemate-backend/pkg/db"
	"github.com/solemate/solemate-backend/pkg/logger"
	"github.com/solemate/solemate-backend/pkg/metrics"
	"github.com/solemate/solemate-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "notify-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "notify-worker",
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

	sender, err := notification.NewWebhookSender(cfg.Notifier)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook sender", err)
		os.Exit(1)
	}

	dispatcher, err := notification.NewDispatcher(notification.DispatcherParams{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		Repository: notification.NewRepository(dbClient.DB()),
		Sender:     sender,
		Metrics:    metrics.NewNotifierMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"webhook": cfg.Notifier.WebhookURL,
	})
	logg.Info(ctx, "starting notification dispatcher")

	if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "notification dispatcher stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "notification dispatcher shutting down gracefully")
}
