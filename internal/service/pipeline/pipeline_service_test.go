package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/catalog"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/service/aggregate"
	"github.com/ougirez/nightlights/internal/service/export"
	"github.com/ougirez/nightlights/internal/service/raster"
	"github.com/ougirez/nightlights/internal/service/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boundaries = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"ADM0_NAME": "Philippines", "ADM2_NAME": "Ilocos Norte"},
     "geometry": {"type": "Polygon", "coordinates": [[[0.5,0.25],[1.5,0.25],[1.5,0.75],[0.5,0.75],[0.5,0.25]]]}},
    {"type": "Feature", "properties": {"ADM0_NAME": "Philippines", "ADM2_NAME": "Batanes"},
     "geometry": {"type": "Polygon", "coordinates": [[[30,30],[31,30],[31,31],[30,31],[30,30]]]}},
    {"type": "Feature", "properties": {"ADM0_NAME": "Indonesia", "ADM2_NAME": "Aceh"},
     "geometry": {"type": "Polygon", "coordinates": [[[2.5,0.5],[3.5,0.5],[3.5,1.5],[2.5,1.5],[2.5,0.5]]]}}
  ]
}`

type fixture struct {
	svc    *Service
	runs   *MemoryRuns
	outDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	geojsonPath := filepath.Join(dir, "gaul.geojson")
	require.NoError(t, os.WriteFile(geojsonPath, []byte(boundaries), 0o644))

	rasterDir := filepath.Join(dir, "viirs")
	require.NoError(t, os.Mkdir(rasterDir, 0o755))
	for m := 1; m <= 3; m++ {
		values := make([]float32, 8)
		for i := range values {
			values[i] = float32(m * (i + 1))
		}

		f, err := os.Create(filepath.Join(rasterDir, fmt.Sprintf("viirs_2012%02d.nc", m)))
		require.NoError(t, err)
		require.NoError(t, catalog.WriteNetCDF(f, catalog.FrameFile{
			Band:     constants.DefaultBand,
			Captured: time.Date(2012, time.Month(m), 1, 0, 0, 0, 0, time.UTC),
			Grid:     &domain.Grid{DX: 1, DY: 1, NX: 4, NY: 2, Values: values},
		}))
		require.NoError(t, f.Close())
	}

	outDir := filepath.Join(dir, "out")
	runs := NewMemoryRuns()
	svc := NewPipelineService(
		region.NewRegionService(&region.GeoJSONSource{Path: geojsonPath}),
		raster.NewRasterService(catalog.NewDir(rasterDir)),
		aggregate.NewAggregateService(),
		map[string]*export.Service{constants.DestinationFile: export.NewExportService(&export.FileSink{Dir: outDir})},
		runs,
	)

	return &fixture{svc: svc, runs: runs, outDir: outDir}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Start = time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg.End = time.Date(2012, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg.Scale = 0
	cfg.Description = "test_panel"
	return cfg
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRun_TwoProvincesTwoMonths(t *testing.T) {
	fx := newFixture(t)

	run, err := fx.svc.Run(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusDone, run.Status)
	assert.Equal(t, 4, run.Rows)

	rows := readCSV(t, filepath.Join(fx.outDir, "test_panel.csv"))
	assert.Equal(t, [][]string{
		{"province", "year", "month", "mean_lights"},
		{"Ilocos Norte", "2012", "1", "1.5"},
		{"Batanes", "2012", "1", ""},
		{"Ilocos Norte", "2012", "2", "3"},
		{"Batanes", "2012", "2", ""},
	}, rows)

	stored, err := fx.svc.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusDone, stored.Status)
	assert.Equal(t, 4, stored.Rows)
}

func TestRun_UnknownCountryExportsHeaderOnly(t *testing.T) {
	fx := newFixture(t)
	cfg := testConfig()
	cfg.Country = "Atlantis"

	run, err := fx.svc.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, run.Rows)

	rows := readCSV(t, filepath.Join(fx.outDir, "test_panel.csv"))
	assert.Len(t, rows, 1)
}

func TestRun_StageFailureMarksRunFailed(t *testing.T) {
	fx := newFixture(t)
	cfg := testConfig()
	cfg.Band = "cf_cvg"

	run, err := fx.svc.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, constants.ErrBandNotFound))
	require.NotNil(t, run)
	assert.Equal(t, domain.RunStatusFailed, run.Status)

	stored, err := fx.svc.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusFailed, stored.Status)
	assert.NotEmpty(t, stored.Error)
}

func TestRun_DefinitionErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "end before start", mutate: func(c *Config) { c.End = c.Start.AddDate(0, -1, 0) }, want: constants.ErrInvalidConfig},
		{name: "negative scale", mutate: func(c *Config) { c.Scale = -1 }, want: constants.ErrInvalidConfig},
		{name: "no description", mutate: func(c *Config) { c.Description = "" }, want: constants.ErrInvalidConfig},
		{name: "path in description", mutate: func(c *Config) { c.Description = "../x" }, want: constants.ErrInvalidConfig},
		{name: "reducer", mutate: func(c *Config) { c.Reducer = "median" }, want: constants.ErrUnsupportedReducer},
		{name: "format", mutate: func(c *Config) { c.Format = "geojson" }, want: constants.ErrUnsupportedFormat},
		{name: "destination", mutate: func(c *Config) { c.Destination = constants.DestinationMinio }, want: constants.ErrUnknownSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			cfg := testConfig()
			tt.mutate(&cfg)

			run, err := fx.svc.Run(context.Background(), cfg)
			assert.Nil(t, run)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Empty(t, fx.runs.runs)
		})
	}
}

func TestSubmit_ReturnsQueuedRun(t *testing.T) {
	fx := newFixture(t)

	run, err := fx.svc.Submit(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusQueued, run.Status)
	assert.NotEmpty(t, run.ID)

	require.Eventually(t, func() bool {
		got, err := fx.svc.GetRun(context.Background(), run.ID)
		return err == nil && got.Finished()
	}, 5*time.Second, 10*time.Millisecond)

	got, err := fx.svc.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusDone, got.Status)
	assert.Equal(t, 4, got.Rows)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Philippines", cfg.Country)
	assert.Equal(t, "avg_rad", cfg.Band)
	assert.Equal(t, float64(500), cfg.Scale)
	assert.Equal(t, "PH_VIIRS_Monthly_2012_2024_Provinces", cfg.Description)
	assert.True(t, raster.InWindow(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), cfg.Start, cfg.End))
}

func TestMemoryRuns_NotFound(t *testing.T) {
	runs := NewMemoryRuns()

	_, err := runs.GetRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, constants.ErrRunNotFound))

	err = runs.UpdateRun(context.Background(), &domain.Run{ID: "missing"})
	assert.True(t, errors.Is(err, constants.ErrRunNotFound))
}

func TestMemoryRuns_StoresCopies(t *testing.T) {
	runs := NewMemoryRuns()
	run := &domain.Run{ID: "r", Status: domain.RunStatusQueued}
	require.NoError(t, runs.CreateRun(context.Background(), run))

	run.Status = domain.RunStatusDone

	got, err := runs.GetRun(context.Background(), "r")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusQueued, got.Status)
}

type panickingSource struct{}

func (panickingSource) Boundaries(context.Context) ([]*domain.Boundary, error) {
	panic("corrupt boundary file")
}

func TestSubmit_PanicMarksRunFailed(t *testing.T) {
	fx := newFixture(t)
	fx.svc.regions = region.NewRegionService(panickingSource{})

	run, err := fx.svc.Submit(context.Background(), testConfig())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := fx.svc.GetRun(context.Background(), run.ID)
		return err == nil && got.Status == domain.RunStatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	got, err := fx.svc.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Error, "corrupt boundary file")
}
