package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/ougirez/nightlights/internal/config"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

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

	app, err := config.Wire(ctx)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	defer app.Close()

	run, err := app.Pipeline.Run(ctx, app.Defaults)
	if err != nil {
		app.Close()
		logger.Fatal(ctx, err)
	}

	logger.Info(ctx, "extraction complete",
		zap.String("run_id", run.ID), zap.String("description", run.Description), zap.Int("rows", run.Rows))
}
