package main

import (
	"context"
	"path/filepath"

	"github.com/ougirez/nightlights/internal/config"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/logger"
	"github.com/ougirez/nightlights/internal/service/merge"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	ctx := context.Background()

	config.Flags(pflag.CommandLine)
	exposure := pflag.String("exposure", "exposure.csv", "wide exposure table (adm2_en, YYYY-MM...)")
	lights := pflag.String("lights", "", "extracted panel csv; defaults to <export.dir>/<export.description>.csv")
	out := pflag.String("out", "final_merged.csv", "merged output path")
	pflag.Parse()

	if err := config.Load(pflag.CommandLine); err != nil {
		logger.Fatal(ctx, err)
	}
	if err := logger.Init(viper.GetString(constants.ViperLogLevelKey)); err != nil {
		logger.Fatal(ctx, err)
	}
	defer logger.Sync()

	if *lights == "" {
		*lights = filepath.Join(viper.GetString(constants.ViperExportDirKey), viper.GetString(constants.ViperExportDescriptionKey)+".csv")
	}

	n, err := merge.NewMergeService().Merge(ctx, merge.Opts{ExposurePath: *exposure, LightsPath: *lights, OutPath: *out})
	if err != nil {
		logger.Fatal(ctx, err)
	}

	logger.Infof(ctx, "wrote %d rows to %s", n, *out)
}
