package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/cli"
	applog "finboard/internal/log"
	"finboard/internal/services"
	"finboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger(nil).Error("Startup failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg)
	logger.Info("Starting finboard-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	store, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRequestQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		_ = store.Close()
		os.Exit(1)
	}

	dashboard := services.NewDashboardService(store.Fetcher, cli.DashboardConfig(cfg), logger)
	refreshWorker := worker.NewRefreshWorker(dashboard, amqpClient, cfg.AMQPReportRoutingKey, logger)

	consumeErr := amqpClient.ConsumeRefreshRequests(ctx, refreshWorker.HandleRefreshMessage)
	if errors.Is(consumeErr, context.Canceled) {
		consumeErr = nil
	}
	if consumeErr != nil {
		logger.Error("Message consumption failed", applog.FieldError, consumeErr)
	}

	shutdownErr := cli.GracefulShutdown(logger, 10*time.Second,
		func(context.Context) error { return amqpClient.Close() },
		func(context.Context) error { return store.Close() },
	)
	if consumeErr != nil || shutdownErr != nil {
		os.Exit(1)
	}
}
