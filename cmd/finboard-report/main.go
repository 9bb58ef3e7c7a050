package main

import (
	"context"
	"os"

	appcli "finboard/internal/cli"
	applog "finboard/internal/log"
)

func main() {
	appcli.LoadEnvFile()

	cfg, err := appcli.LoadAndValidateConfig()
	if err != nil {
		appcli.SetupLogger(nil).Error("Startup failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := appcli.SetupLogger(cfg).WithComponent(applog.ComponentCLI)

	ctx, cancel := appcli.SignalContext(context.Background(), logger)
	defer cancel()

	app := newApp(&env{
		cfg:    cfg,
		logger: logger,
		out:    os.Stdout,
		open:   appcli.OpenBackend,
	})
	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Error("Command failed", applog.FieldError, err)
		os.Exit(1)
	}
}
