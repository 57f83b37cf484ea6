package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfbench/internal/activeweight"
	"mfbench/internal/config"
	"mfbench/internal/shared/testutil"
)

func newTestApp(t *testing.T, mutate ...func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Telemetry.TracingEnabled = false
	for _, m := range mutate {
		m(cfg)
	}

	logger, _ := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func analysisRequest(t *testing.T, target string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, content := range map[string]string{
		"schemes":    testutil.SchemesCSV,
		"benchmarks": testutil.BenchmarksCSV,
	} {
		fw, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func fixtureFields() map[string]string {
	return map[string]string{
		"scheme":               "Alpha Equity Fund",
		"schemes_skip_rows":    "1",
		"benchmarks_skip_rows": "2",
	}
}

func TestNew(t *testing.T) {
	app := newTestApp(t)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.AnalysisService)
	assert.NotNil(t, app.HealthService)
	assert.NotNil(t, app.Metrics)
	assert.Equal(t, ":0", app.Server.Addr)
	assert.Equal(t, app.Router, app.Server.Handler)
}

func TestNew_InvalidColumnPattern(t *testing.T) {
	cfg := config.Default()
	cfg.Columns.Schemes = cfg.Columns.Schemes.With(activeweight.RoleStockName, "([unclosed")

	logger, _ := testutil.NewTestLogger(t)
	_, err := New(cfg, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis service")
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		path string
		key  string
		want interface{}
	}{
		{"/api/health", "status", "ok"},
		{"/api/health/ready", "status", "ready"},
		{"/api/health/live", "status", "alive"},
		{"/api/version", "build_id", BuildID},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, http.StatusOK, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body[tt.key])
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouter_Analysis(t *testing.T) {
	app := newTestApp(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, analysisRequest(t, "/api/analysis", fixtureFields()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Scheme      string  `json:"scheme"`
		Benchmark   string  `json:"benchmark"`
		ActiveShare float64 `json:"active_share"`
		Holdings    []struct {
			Stock string `json:"stock"`
		} `json:"holdings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Alpha Equity Fund", body.Scheme)
	assert.Equal(t, "NIFTY50", body.Benchmark)
	assert.InDelta(t, 5.375, body.ActiveShare, 1e-9)
	assert.Len(t, body.Holdings, 5)
}

func TestRouter_Report(t *testing.T) {
	app := newTestApp(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, analysisRequest(t, "/api/analysis/report?format=csv", fixtureFields()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "HDFC BANK LTD,9.25,11,-1.75")
}

func TestRouter_UploadTooLarge(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Server.MaxUploadBytes = 64
	})

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, analysisRequest(t, "/api/analysis", fixtureFields()))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	app := newTestApp(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	app := newTestApp(t)

	// Produce at least one analysis sample before scraping.
	app.Router.ServeHTTP(httptest.NewRecorder(), analysisRequest(t, "/api/analysis", fixtureFields()))

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "analysis"), "metrics output should include analysis instruments")
}

func TestRouter_CORS(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:8080", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Analysis-Warnings")
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	require.NoError(t, app.Stop(context.Background()))
	assert.NoError(t, ctx.Err(), "a clean shutdown must not cancel the run context")
}
