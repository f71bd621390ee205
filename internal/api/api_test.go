package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/catalog"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/store"
	"github.com/ougirez/nightlights/internal/pkg/utils"
	"github.com/ougirez/nightlights/internal/service/aggregate"
	"github.com/ougirez/nightlights/internal/service/export"
	"github.com/ougirez/nightlights/internal/service/pipeline"
	"github.com/ougirez/nightlights/internal/service/raster"
	"github.com/ougirez/nightlights/internal/service/region"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "s3cr3t"

type emptySource struct{}

func (emptySource) Boundaries(context.Context) ([]*domain.Boundary, error) { return nil, nil }

type emptyCatalog struct{}

func (emptyCatalog) List(context.Context) ([]catalog.Entry, error) { return nil, nil }

func (emptyCatalog) Open(context.Context, catalog.Entry, string) (*domain.Grid, error) {
	return nil, nil
}

type panelStub struct {
	got store.ListPanelRecordsOpts
}

func (p *panelStub) ListPanelRecords(_ context.Context, opts store.ListPanelRecordsOpts) ([]*domain.PanelRecord, error) {
	p.got = opts
	mean := 0.5
	return []*domain.PanelRecord{{
		AggregateRecord: domain.AggregateRecord{Province: "Cebu", Year: 2015, Month: 3, MeanLights: &mean},
		RunID:           "00000000-0000-0000-0000-000000000001",
		Description:     "d",
	}}, nil
}

func newTestAPI(t *testing.T) (*APIService, *panelStub) {
	t.Helper()
	viper.Set(constants.ViperSecretKey, secret)
	t.Cleanup(func() { viper.Set(constants.ViperSecretKey, "") })

	svc := pipeline.NewPipelineService(
		region.NewRegionService(emptySource{}),
		raster.NewRasterService(emptyCatalog{}),
		aggregate.NewAggregateService(),
		map[string]*export.Service{constants.DestinationFile: export.NewExportService(&export.FileSink{Dir: t.TempDir()})},
		pipeline.NewMemoryRuns(),
	)

	panel := &panelStub{}
	api, err := NewAPIService(Opts{Pipeline: svc, Defaults: pipeline.DefaultConfig(), Panel: panel, LogLevel: "error"})
	require.NoError(t, err)
	return api, panel
}

func (svc *APIService) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	svc.router.ServeHTTP(rec, req)
	return rec
}

func adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := utils.GenerateAuthToken(&utils.AuthTokenWrapper{Secret: secret})
	require.NoError(t, err)
	return &http.Cookie{Name: constants.CookieKeySecretToken, Value: token}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var resp domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestLoginAdmin(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/admin/login", `{"secret":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/admin/login", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/admin/login", `{"secret":"s3cr3t"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, constants.CookieKeySecretToken, cookies[0].Name)

	token, err := utils.ParseAuthToken(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, secret, token.Secret)
}

func TestSubmitRun_RequiresAdmin(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/runs", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, constants.ErrMissingAuthCookie.Error(), decodeError(t, rec).Message)

	rec = api.do(t, http.MethodPost, "/api/v1/runs", "", &http.Cookie{Name: constants.CookieKeySecretToken, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitRun_AcceptedThenDone(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/runs", `{"description":"api_run","scale":1000}`, adminCookie(t))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var run domain.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, domain.RunStatusQueued, run.Status)
	assert.Equal(t, "api_run", run.Description)

	require.Eventually(t, func() bool {
		rec := api.do(t, http.MethodGet, "/api/v1/runs/"+run.ID, "")
		if rec.Code != http.StatusOK {
			return false
		}
		var got domain.Run
		return json.Unmarshal(rec.Body.Bytes(), &got) == nil && got.Status == domain.RunStatusDone
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSubmitRun_BadOverrides(t *testing.T) {
	api, _ := newTestAPI(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "malformed json", body: `{"scale":`, code: http.StatusBadRequest},
		{name: "negative scale", body: `{"scale":-5}`, code: http.StatusBadRequest},
		{name: "bad date", body: `{"start":"2012/01/01"}`, code: http.StatusBadRequest},
		{name: "end before start", body: `{"start":"2020-01-01","end":"2019-01-01"}`, code: http.StatusBadRequest},
		{name: "unwired destination", body: `{"destination":"minio"}`, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/v1/runs", tt.body, adminCookie(t))
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestGetRun_NotFound(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/runs/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/runs/8a3c2f8e-5a8e-4a43-a7a7-6f0a1f3b9c11", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, decodeError(t, rec).Code)
}

func TestListPanel(t *testing.T) {
	api, panel := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/panel?province=Cebu&year=2015", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "Cebu", panel.got.Province)
	assert.Equal(t, 2015, panel.got.Year)
	assert.Equal(t, uint64(1000), panel.got.Limit)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Cebu", records[0]["province"])
	assert.Equal(t, 0.5, records[0]["mean_lights"])

	rec = api.do(t, http.MethodGet, "/api/v1/panel?year=1800", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGommonLevel(t *testing.T) {
	assert.Equal(t, gommonLevel("DEBUG"), gommonLevel("debug"))
	assert.Equal(t, gommonLevel(""), gommonLevel("info"))
	assert.NotEqual(t, gommonLevel("error"), gommonLevel("info"))
}

func TestAdminMiddleware_EmptySecretRejectsAll(t *testing.T) {
	api, _ := newTestAPI(t)
	cookie := adminCookie(t)
	viper.Set(constants.ViperSecretKey, "")

	rec := api.do(t, http.MethodPost, "/api/v1/runs", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServe_ShutdownIsNotAnError(t *testing.T) {
	api, _ := newTestAPI(t)

	done := make(chan error, 1)
	go func() { done <- api.serve("127.0.0.1:0") }()

	require.Eventually(t, func() bool { return api.router.ListenerAddr() != nil }, 5*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, api.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after shutdown")
	}
}

func TestServe_ListenFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	api, _ := newTestAPI(t)
	assert.Error(t, api.serve(busy.Addr().String()))
}
