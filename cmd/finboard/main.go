package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finboard/internal/cli"
	apphttp "finboard/internal/http"
	applog "finboard/internal/log"
	"finboard/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger(nil).Error("Startup failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	store, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	dashboard := services.NewDashboardService(store.Fetcher, cli.DashboardConfig(cfg), logger)
	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout:     cfg.RequestTimeout,
	}, dashboard, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.RequestTimeout + 5*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	// Live rows are copied into SQLITE_DB_PATH so history survives source edits.
	snapshots, closeSnapshots, err := cli.SnapshotScheduler(cfg, store.Fetcher, logger)
	if err != nil {
		logger.Error("Failed to initialize snapshot scheduler", applog.FieldError, err)
		store.Close()
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting finboard server", "port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if snapshots != nil {
		if err := snapshots.Start(gctx); err != nil {
			logger.Error("Failed to start snapshot scheduler", applog.FieldError, err)
		}
	}
	g.Go(func() error {
		<-gctx.Done()
		return cli.GracefulShutdown(logger, 30*time.Second,
			srv.Shutdown,
			func(ctx context.Context) error {
				if snapshots == nil || !snapshots.IsRunning() {
					return nil
				}
				return snapshots.Stop(ctx)
			},
			func(context.Context) error { return closeSnapshots() },
			func(context.Context) error { return store.Close() },
		)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
