// Package cli provides common initialization shared by cmd/finboard,
// cmd/finboard-worker and cmd/finboard-report.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finboard/internal/backend"
	"finboard/internal/config"
	applog "finboard/internal/log"
	"finboard/internal/normalize"
	"finboard/internal/services"
	"finboard/internal/source"
	"finboard/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads the environment and validates the result.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// SetupLogger builds the application logger from LOG_LEVEL and LOG_FORMAT
// and installs it as the slog default.
func SetupLogger(cfg *config.Config) *applog.Logger {
	lc := applog.DefaultConfig()
	if cfg != nil {
		lc.Level = applog.ParseLevel(cfg.LogLevel)
		lc.Format = cfg.LogFormat
	}
	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// DashboardConfig maps pipeline settings onto the dashboard service.
func DashboardConfig(cfg *config.Config) services.DashboardConfig {
	return services.DashboardConfig{
		Horizon: cfg.ForecastHorizon,
		TopN:    cfg.TopN,
		Normalizer: normalize.Options{
			DayFirst: cfg.DateDayFirst,
			Location: cfg.Location(),
		},
	}
}

// OpenBackend creates the store adapter selected by DATA_BACKEND.
// Callers must Close the result.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*backend.BackendResult, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bc)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bc.Type, err)
	}
	return res, nil
}

// SnapshotScheduler copies live into the SQLite store at SQLITE_DB_PATH every
// SNAPSHOT_INTERVAL. It returns a nil service when no interval is set.
// Callers must run the returned close function after stopping the service.
func SnapshotScheduler(cfg *config.Config, live source.TransactionFetcher, logger *applog.Logger) (*services.SnapshotService, func() error, error) {
	if cfg.SnapshotInterval <= 0 {
		return nil, func() error { return nil }, nil
	}
	if !backend.BackendType(cfg.DataBackend).Live() {
		return nil, nil, fmt.Errorf("snapshot scheduler needs a live source, DATA_BACKEND=%s is the snapshot store", cfg.DataBackend)
	}
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot store: %w", err)
	}
	svc := services.NewSnapshotService(live, repo, services.SnapshotConfig{
		SourceName: cfg.DataBackend,
		Interval:   cfg.SnapshotInterval,
		Keep:       cfg.SnapshotKeep,
	}, logger)
	return svc, repo.Close, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// GracefulShutdown runs each cleanup step under a shared timeout. Every step
// runs even when an earlier one fails; the errors are joined.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, steps ...func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, step := range steps {
		if step == nil {
			continue
		}
		if err := step(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if ctx.Err() != nil {
		logger.Warn("Shutdown timeout reached")
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error("Shutdown finished with errors", applog.FieldError, err)
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}
