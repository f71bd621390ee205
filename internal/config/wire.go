package config

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ougirez/nightlights/internal/pkg/catalog"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/logger"
	"github.com/ougirez/nightlights/internal/pkg/store"
	"github.com/ougirez/nightlights/internal/pkg/store/xpgx"
	"github.com/ougirez/nightlights/internal/service/aggregate"
	"github.com/ougirez/nightlights/internal/service/export"
	"github.com/ougirez/nightlights/internal/service/pipeline"
	"github.com/ougirez/nightlights/internal/service/raster"
	"github.com/ougirez/nightlights/internal/service/region"
	"github.com/spf13/viper"
)

const httpIndexTimeout = 5 * time.Minute

type App struct {
	Pipeline *pipeline.Service
	Defaults pipeline.Config
	// Store is nil unless postgres.dsn is set.
	Store store.Store

	pool *xpgx.Pool
}

func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// Wire builds the pipeline from the loaded configuration.
func Wire(ctx context.Context) (*App, error) {
	defaults, err := Pipeline()
	if err != nil {
		return nil, err
	}

	app := &App{Defaults: defaults}

	if dsn := viper.GetString(constants.ViperPostgresDSNKey); dsn != "" {
		app.pool, err = xpgx.Connect(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("xpgx.Connect: %w", err)
		}
		app.Store = store.NewStore(app.pool)
		if err = app.Store.EnsureSchema(ctx); err != nil {
			app.Close()
			return nil, err
		}
	}

	source, err := boundarySource(app.Store)
	if err != nil {
		app.Close()
		return nil, err
	}
	rasters, err := rasterCatalog()
	if err != nil {
		app.Close()
		return nil, err
	}
	exporters, err := exporters(ctx, app.Store)
	if err != nil {
		app.Close()
		return nil, err
	}

	var runs pipeline.RunStore = pipeline.NewMemoryRuns()
	if app.Store != nil {
		runs = app.Store
	}

	app.Pipeline = pipeline.NewPipelineService(
		region.NewRegionService(source),
		raster.NewRasterService(rasters),
		aggregate.NewAggregateService(),
		exporters,
		runs,
	)

	return app, nil
}

func boundarySource(st store.Store) (region.BoundarySource, error) {
	switch src := viper.GetString(constants.ViperRegionsSourceKey); src {
	case constants.SourceGeoJSON:
		return &region.GeoJSONSource{Path: viper.GetString(constants.ViperRegionsPathKey)}, nil
	case constants.SourcePostgres:
		if st == nil {
			return nil, fmt.Errorf("regions from postgres without %s: %w", constants.ViperPostgresDSNKey, constants.ErrInvalidConfig)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("regions source %q: %w", src, constants.ErrUnknownSource)
	}
}

func rasterCatalog() (catalog.Catalog, error) {
	path := viper.GetString(constants.ViperRastersPathKey)

	switch src := viper.GetString(constants.ViperRastersSourceKey); src {
	case constants.SourceDir:
		return catalog.NewDir(path), nil
	case constants.SourceHTTP:
		return catalog.NewHTTPIndex(path, &http.Client{Timeout: httpIndexTimeout}), nil
	default:
		return nil, fmt.Errorf("rasters source %q: %w", src, constants.ErrUnknownSource)
	}
}

// exporters registers every destination the configuration can serve.
func exporters(ctx context.Context, st store.Store) (map[string]*export.Service, error) {
	out := map[string]*export.Service{
		constants.DestinationFile: export.NewExportService(&export.FileSink{Dir: viper.GetString(constants.ViperExportDirKey)}),
	}

	if endpoint := viper.GetString(constants.ViperMinioEndpointKey); endpoint != "" {
		sink, err := export.NewMinioSink(ctx, export.MinioConfig{
			Endpoint:  endpoint,
			AccessKey: viper.GetString(constants.ViperMinioAccessKeyKey),
			SecretKey: viper.GetString(constants.ViperMinioSecretKeyKey),
			Bucket:    viper.GetString(constants.ViperMinioBucketKey),
			Secure:    viper.GetBool(constants.ViperMinioSecureKey),
			Region:    viper.GetString(constants.ViperMinioRegionKey),
		})
		if err != nil {
			return nil, fmt.Errorf("export.NewMinioSink: %w", err)
		}
		out[constants.DestinationMinio] = export.NewExportService(sink)
	}

	if st != nil {
		out[constants.DestinationPostgres] = export.NewExportService(export.NewStoreSink(st))
	}

	for name := range out {
		logger.Debugf(ctx, "export destination %s enabled", name)
	}
	return out, nil
}
