package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTel_Prometheus(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = false

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)

	metrics, err := CreateAnalysisMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordAnalysis(context.Background(), "benchmark", OutcomeOK, 250*time.Millisecond)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "analyses_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestInitializeOTel_Disabled(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableMetrics = false
	cfg.EnableTracing = false

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Meter)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableMetrics = true
	cfg.MetricExporter = "statsd"

	_, err := InitializeOTel(cfg, discardLogger())
	assert.ErrorContains(t, err, "unsupported metric exporter")
}

func TestAnalysisMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := CreateAnalysisMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordTable(ctx, "schemes", 10, 2, 3)
	metrics.RecordTable(ctx, "benchmarks", 5, 0, 0)
	metrics.RecordEmptySelection(ctx, "scheme")
	metrics.RecordReport(ctx, "xlsx")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(15), sums["rows_loaded_total"])
	assert.Equal(t, int64(2), sums["dropped_rows_total"])
	assert.Equal(t, int64(3), sums["unparseable_weights_total"])
	assert.Equal(t, int64(1), sums["empty_selections_total"])
	assert.Equal(t, int64(1), sums["reports_generated_total"])
}

func TestAnalysisMetrics_NilSafe(t *testing.T) {
	var m *AnalysisMetrics
	assert.NotPanics(t, func() {
		m.RecordAnalysis(context.Background(), "vendor", OutcomeError, time.Second)
		m.RecordTable(context.Background(), "schemes", 1, 1, 1)
		m.RecordHTTPRequest(context.Background(), http.MethodGet, "/", 200, time.Millisecond)
	})

	metrics, err := CreateAnalysisMetrics(noop.NewMeterProvider().Meter("noop"))
	require.NoError(t, err)
	assert.NotNil(t, metrics.AnalysesTotal)
}
