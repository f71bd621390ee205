package constants

const (
	CookieKeySecretToken = "secret_token"
	CtxKeyRunID          = "run_id"

	DefaultCountry     = "Philippines"
	DefaultBand        = "avg_rad"
	DefaultStart       = "2012-01-01"
	DefaultEnd         = "2024-12-31"
	DefaultScale       = 500
	DefaultReducer     = "mean"
	DefaultFormat      = "csv"
	DefaultDescription = "PH_VIIRS_Monthly_2012_2024_Provinces"

	DefaultCountryField = "ADM0_NAME"
	DefaultNameField    = "ADM2_NAME"
)

// viper keys
const (
	ViperSecretKey = "server.secret"
	ViperAddrKey   = "server.addr"

	ViperLogLevelKey = "log.level"

	ViperPostgresDSNKey = "postgres.dsn"

	ViperRegionsSourceKey       = "regions.source"
	ViperRegionsPathKey         = "regions.path"
	ViperRegionsCountryKey      = "regions.country"
	ViperRegionsCountryFieldKey = "regions.country_field"
	ViperRegionsNameFieldKey    = "regions.name_field"
	ViperRegionsAliasesKey      = "regions.aliases"

	ViperRastersSourceKey = "rasters.source"
	ViperRastersPathKey   = "rasters.path"
	ViperRastersBandKey   = "rasters.band"
	ViperRastersStartKey  = "rasters.start"
	ViperRastersEndKey    = "rasters.end"

	ViperAggregateScaleKey   = "aggregate.scale"
	ViperAggregateReducerKey = "aggregate.reducer"
	ViperAggregateWorkersKey = "aggregate.workers"

	ViperExportDestinationKey = "export.destination"
	ViperExportDescriptionKey = "export.description"
	ViperExportFormatKey      = "export.format"
	ViperExportDirKey         = "export.dir"

	ViperMinioEndpointKey  = "minio.endpoint"
	ViperMinioAccessKeyKey = "minio.access_key"
	ViperMinioSecretKeyKey = "minio.secret_key"
	ViperMinioBucketKey    = "minio.bucket"
	ViperMinioSecureKey    = "minio.secure"
	ViperMinioRegionKey    = "minio.region"
)

// dataset sources and export destinations
const (
	SourceGeoJSON  = "geojson"
	SourcePostgres = "postgres"
	SourceDir      = "dir"
	SourceHTTP     = "http"

	DestinationFile     = "file"
	DestinationMinio    = "minio"
	DestinationPostgres = "postgres"
)
