package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/ougirez/nightlights/internal/api"
	"github.com/ougirez/nightlights/internal/api/controller"
	"github.com/ougirez/nightlights/internal/config"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config.Flags(pflag.CommandLine)
	pflag.Parse()

	if err := config.Load(pflag.CommandLine); err != nil {
		logger.Fatal(ctx, err)
	}
	if err := logger.Init(viper.GetString(constants.ViperLogLevelKey)); err != nil {
		logger.Fatal(ctx, err)
	}
	defer logger.Sync()

	if viper.GetString(constants.ViperSecretKey) == "" {
		logger.Warn(ctx, "server.secret is empty, run submission is disabled")
	}

	app, err := config.Wire(ctx)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	defer app.Close()

	var panel controller.PanelReader
	if app.Store != nil {
		panel = app.Store
	}

	svc, err := api.NewAPIService(api.Opts{
		Pipeline: app.Pipeline,
		Defaults: app.Defaults,
		Panel:    panel,
		LogLevel: viper.GetString(constants.ViperLogLevelKey),
	})
	if err != nil {
		logger.Fatal(ctx, err)
	}

	go svc.Serve(viper.GetString(constants.ViperAddrKey))
	logger.Infof(ctx, "listening on %s", viper.GetString(constants.ViperAddrKey))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = svc.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(shutdownCtx, "shutdown: %s", err.Error())
	}
}
