package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/service/pipeline"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix     = "NIGHTLIGHTS"
	flagConfig    = "config"
	defaultConfig = "config/config.yaml"
)

type Alias struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// Flags registers the flags shared by every binary.
func Flags(flags *pflag.FlagSet) {
	flags.String(flagConfig, defaultConfig, "path to the yaml config")
	flags.String("log-level", "", "override log.level")
}

// Load reads the config file into the global viper. NIGHTLIGHTS_* environment
// variables override file values, e.g. NIGHTLIGHTS_POSTGRES_DSN. A missing file
// leaves the defaults in place.
func Load(flags *pflag.FlagSet) error {
	setDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	path, err := flags.GetString(flagConfig)
	if err != nil {
		return fmt.Errorf("flag %s: %w", flagConfig, err)
	}
	viper.SetConfigFile(path)

	if err = viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("viper.ReadInConfig: %w", err)
		}
	}

	if level, _ := flags.GetString("log-level"); level != "" {
		viper.Set(constants.ViperLogLevelKey, level)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault(constants.ViperAddrKey, ":8080")
	viper.SetDefault(constants.ViperLogLevelKey, "info")

	viper.SetDefault(constants.ViperRegionsSourceKey, constants.SourceGeoJSON)
	viper.SetDefault(constants.ViperRegionsPathKey, "data/gaul_level2.geojson")
	viper.SetDefault(constants.ViperRegionsCountryKey, constants.DefaultCountry)
	viper.SetDefault(constants.ViperRegionsCountryFieldKey, constants.DefaultCountryField)
	viper.SetDefault(constants.ViperRegionsNameFieldKey, constants.DefaultNameField)

	viper.SetDefault(constants.ViperRastersSourceKey, constants.SourceDir)
	viper.SetDefault(constants.ViperRastersPathKey, "data/viirs")
	viper.SetDefault(constants.ViperRastersBandKey, constants.DefaultBand)
	viper.SetDefault(constants.ViperRastersStartKey, constants.DefaultStart)
	viper.SetDefault(constants.ViperRastersEndKey, constants.DefaultEnd)

	viper.SetDefault(constants.ViperAggregateScaleKey, constants.DefaultScale)
	viper.SetDefault(constants.ViperAggregateReducerKey, constants.DefaultReducer)
	viper.SetDefault(constants.ViperAggregateWorkersKey, 0)

	viper.SetDefault(constants.ViperExportDestinationKey, constants.DestinationFile)
	viper.SetDefault(constants.ViperExportDescriptionKey, constants.DefaultDescription)
	viper.SetDefault(constants.ViperExportFormatKey, constants.DefaultFormat)
	viper.SetDefault(constants.ViperExportDirKey, "out")

	viper.SetDefault(constants.ViperMinioBucketKey, "nightlights")
	viper.SetDefault(constants.ViperMinioSecureKey, true)
}

// Pipeline builds the run definition from the loaded configuration.
func Pipeline() (pipeline.Config, error) {
	start, err := time.Parse(time.DateOnly, viper.GetString(constants.ViperRastersStartKey))
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("%s: %w", constants.ViperRastersStartKey, constants.ErrInvalidConfig)
	}
	end, err := time.Parse(time.DateOnly, viper.GetString(constants.ViperRastersEndKey))
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("%s: %w", constants.ViperRastersEndKey, constants.ErrInvalidConfig)
	}

	var aliases []Alias
	if err = viper.UnmarshalKey(constants.ViperRegionsAliasesKey, &aliases); err != nil {
		return pipeline.Config{}, fmt.Errorf("%s: %w", constants.ViperRegionsAliasesKey, constants.ErrInvalidConfig)
	}
	var aliasMap map[string]string
	if len(aliases) > 0 {
		aliasMap = make(map[string]string, len(aliases))
		for _, a := range aliases {
			aliasMap[a.From] = a.To
		}
	}

	cfg := pipeline.Config{
		Country:      viper.GetString(constants.ViperRegionsCountryKey),
		CountryField: viper.GetString(constants.ViperRegionsCountryFieldKey),
		NameField:    viper.GetString(constants.ViperRegionsNameFieldKey),
		Aliases:      aliasMap,
		Band:         viper.GetString(constants.ViperRastersBandKey),
		Start:        start,
		End:          end,
		Scale:        viper.GetFloat64(constants.ViperAggregateScaleKey),
		Reducer:      viper.GetString(constants.ViperAggregateReducerKey),
		Workers:      viper.GetInt(constants.ViperAggregateWorkersKey),
		Destination:  viper.GetString(constants.ViperExportDestinationKey),
		Description:  viper.GetString(constants.ViperExportDescriptionKey),
		Format:       viper.GetString(constants.ViperExportFormatKey),
	}

	return cfg, cfg.Validate()
}
