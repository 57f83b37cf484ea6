package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mfbench/internal/activeweight"
	"mfbench/internal/config"
	"mfbench/internal/dataprocessing"
	apierrors "mfbench/internal/errors"
	"mfbench/internal/infrastructure"
	"mfbench/internal/shared/testutil"
)

func loadFixture(t *testing.T, data string, skip int) activeweight.RawTable {
	t.Helper()
	table, err := dataprocessing.ParseCSV(strings.NewReader(data), dataprocessing.LoadOptions{
		SkipRows: skip,
		Encoding: "utf-8",
	})
	require.NoError(t, err)
	return table
}

func schemesFixture(t *testing.T) activeweight.RawTable {
	return loadFixture(t, testutil.SchemesCSV, testutil.SchemesSkipRows)
}

func benchmarksFixture(t *testing.T) *activeweight.RawTable {
	table := loadFixture(t, testutil.BenchmarksCSV, testutil.BenchmarksSkipRows)
	return &table
}

func newService(t *testing.T, mutate func(*config.AnalysisConfig), opts ...AnalysisOption) (*AnalysisService, *testutil.BufferedSlogHandler) {
	t.Helper()
	cfg := config.Default().Analysis
	if mutate != nil {
		mutate(&cfg)
	}
	logger, handler := testutil.NewTestLogger(t)
	svc, err := NewAnalysisService(cfg, config.ColumnsConfig{}, logger, opts...)
	require.NoError(t, err)
	handler.Clear()
	return svc, handler
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestAnalyze_ReconcilesSchemeAgainstBenchmark(t *testing.T) {
	svc, _ := newService(t, nil)

	req := svc.NewRequest(schemesFixture(t), benchmarksFixture(t))
	req.Scheme = "alpha equity fund"
	req.TopN = 2

	res, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, ModeReconciled, res.Mode)
	assert.Equal(t, "NIFTY50", res.Benchmark)
	assert.Equal(t, config.BenchmarkSourceScheme, res.BenchmarkSource)
	assert.Empty(t, res.Warnings)

	want := []struct{ stock, scheme, bench, active string }{
		{"HDFC BANK LTD", "9.25", "11", "-1.75"},
		{"INFOSYS LTD", "7.5", "5.5", "2"},
		{"ITC LTD", "0", "0", "0"},
		{"LARSEN & TOUBRO LTD", "0", "4", "-4"},
		{"TATA MOTORS LTD", "3", "0", "3"},
	}
	require.Len(t, res.Holdings, len(want))
	for i, w := range want {
		h := res.Holdings[i]
		assert.Equal(t, w.stock, h.Stock)
		assertDecimal(t, w.scheme, h.SchemeWeight, w.stock)
		assertDecimal(t, w.bench, h.BenchmarkWeight, w.stock)
		assertDecimal(t, w.active, h.ActiveWeight, w.stock)
	}

	industries := make([]string, 0, len(res.Industries))
	for _, i := range res.Industries {
		industries = append(industries, i.Industry)
	}
	assert.Equal(t, []string{"Automobiles", "Banks", "FMCG", "IT - Software"}, industries)
	assertDecimal(t, "-1.75", res.Industries[1].ActiveWeight)

	require.Len(t, res.Ranking.Overweight, 2)
	require.Len(t, res.Ranking.Underweight, 2)
	assert.Equal(t, "TATA MOTORS LTD", res.Ranking.Overweight[0].Stock)
	assert.Equal(t, "INFOSYS LTD", res.Ranking.Overweight[1].Stock)
	assert.Equal(t, "LARSEN & TOUBRO LTD", res.Ranking.Underweight[0].Stock)
	assert.Equal(t, "HDFC BANK LTD", res.Ranking.Underweight[1].Stock)

	assertDecimal(t, "5.375", res.ActiveShare)
	assertDecimal(t, "19.75", res.Totals.Scheme)
	assertDecimal(t, "20.5", res.Totals.Benchmark)
	assertDecimal(t, "-0.75", res.Totals.Active)

	assert.Equal(t, 6, res.Stats.Schemes.Rows)
	assert.Equal(t, 5, res.Stats.Schemes.Kept)
	assert.Equal(t, 1, res.Stats.Schemes.Dropped)
	assert.Equal(t, 1, res.Stats.Schemes.Unparseable)
	assert.Equal(t, 4, res.Stats.SelectedRows)
	require.NotNil(t, res.Stats.Benchmarks)
	assert.Equal(t, 4, res.Stats.Benchmarks.Rows)
	assert.Equal(t, 3, res.Stats.BenchmarkRows)
	assert.Equal(t, "Weight(%)", res.Stats.Benchmarks.Columns[activeweight.RoleBenchmarkWeight])

	sections := res.Sections()
	require.Len(t, sections, 3)
	assert.Equal(t, activeweight.SectionIndustrySummary, sections[0].Name)
	assert.Equal(t, activeweight.SectionActiveWeights, res.ComparisonSection().Name)
	assert.Len(t, res.ComparisonSection().Rows, 5)
}

func TestAnalyze_BenchmarkSourcePolicies(t *testing.T) {
	tests := []struct {
		name          string
		source        string
		defaultBench  string
		requested     string
		wantBenchmark string
		wantSource    string
		wantBenchRows int
	}{
		{"request wins", config.BenchmarkSourceScheme, "NIFTY50", "bse500", "bse500", config.BenchmarkSourceRequest, 1},
		{"scheme row", config.BenchmarkSourceScheme, "BSE500", "", "NIFTY50", config.BenchmarkSourceScheme, 3},
		{"configured default", config.BenchmarkSourceConfig, "BSE500", "", "BSE500", config.BenchmarkSourceConfig, 1},
		{"request only uses every row", config.BenchmarkSourceRequest, "BSE500", "", "", "", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t, func(c *config.AnalysisConfig) {
				c.BenchmarkSource = tt.source
				c.DefaultBenchmark = tt.defaultBench
			})

			req := svc.NewRequest(schemesFixture(t), benchmarksFixture(t))
			req.Scheme = "Alpha Equity Fund"
			req.Benchmark = tt.requested

			res, err := svc.Analyze(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBenchmark, res.Benchmark)
			assert.Equal(t, tt.wantSource, res.BenchmarkSource)
			assert.Equal(t, tt.wantBenchRows, res.Stats.BenchmarkRows)
		})
	}
}

func TestAnalyze_EmptySchemeSelection(t *testing.T) {
	svc, logs := newService(t, nil)

	req := svc.NewRequest(schemesFixture(t), benchmarksFixture(t))
	req.Scheme = "Unknown Fund"

	res, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, []string{WarningEmptySelection}, res.Warnings)
	assert.Empty(t, res.Ranking.Overweight)
	assert.Empty(t, res.Industries)
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "no holdings match the selected scheme")
}

func TestAnalyze_EmptyBenchmarkSelectionIsDegenerate(t *testing.T) {
	svc, _ := newService(t, nil)

	req := svc.NewRequest(schemesFixture(t), benchmarksFixture(t))
	req.Scheme = "Alpha Equity Fund"
	req.Benchmark = "SENSEX"

	res, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{WarningEmptyBenchmark}, res.Warnings)
	require.Len(t, res.Holdings, 4)
	for _, h := range res.Holdings {
		assert.True(t, h.BenchmarkWeight.IsZero(), h.Stock)
		assert.True(t, h.ActiveWeight.Equal(h.SchemeWeight), h.Stock)
	}
}

func TestAnalyze_SchemaResolutionFailure(t *testing.T) {
	svc, _ := newService(t, nil)

	raw := activeweight.RawTable{
		Columns: []string{"Scheme Name", "Security Name", "% of Holdings"},
		Rows: []activeweight.Record{
			{"Scheme Name": "Alpha", "Security Name": "INFY", "% of Holdings": "1"},
		},
	}

	_, err := svc.Analyze(context.Background(), svc.NewRequest(raw, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, activeweight.ErrSchemaResolution))

	var schemaErr *activeweight.SchemaResolutionError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []activeweight.Role{activeweight.RoleIndustry}, schemaErr.Missing)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeSchema, appErr.Type)
	assert.Equal(t, TableSchemes, appErr.Context["table"])
}

func TestAnalyze_BenchmarkSchemaFailureNamesTable(t *testing.T) {
	svc, _ := newService(t, nil)

	bench := activeweight.RawTable{Columns: []string{"Index Name", "Company Name"}}
	req := svc.NewRequest(schemesFixture(t), &bench)
	req.Scheme = "Alpha Equity Fund"

	_, err := svc.Analyze(context.Background(), req)
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, TableBenchmarks, appErr.Context["table"])
}

func TestAnalyze_VendorMode(t *testing.T) {
	svc, _ := newService(t, nil)

	req := svc.NewRequest(loadFixture(t, testutil.VendorActiveCSV, 0), nil)
	req.Scheme = "Gamma Fund"

	res, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ModeVendor, res.Mode)
	assert.Nil(t, res.Stats.Benchmarks)
	assert.Empty(t, res.Warnings)

	require.Len(t, res.Holdings, 2)
	assert.Equal(t, "AAA", res.Holdings[0].Stock)
	assertDecimal(t, "3", res.Holdings[0].ActiveWeight)
	assert.Equal(t, "BBB", res.Holdings[1].Stock)
	assertDecimal(t, "-3", res.Holdings[1].ActiveWeight)
	assert.Equal(t, 1, res.Stats.Schemes.Unparseable)

	require.Len(t, res.Industries, 2)
	assert.Equal(t, "Finance", res.Industries[0].Industry)
	assertDecimal(t, "-3", res.Industries[0].ActiveWeight)
	assert.Equal(t, "Tech", res.Industries[1].Industry)
	assertDecimal(t, "7", res.Industries[1].FundWeight)
	assertDecimal(t, "3", res.Industries[1].BenchmarkWeight)
	assertDecimal(t, "4", res.Industries[1].ActiveWeight)
}

func TestAnalyze_VendorModeWithoutBenchmarkColumns(t *testing.T) {
	svc, _ := newService(t, nil)

	req := svc.NewRequest(schemesFixture(t), nil)
	req.Scheme = "Beta Value Fund"

	res, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{WarningNoBenchmark}, res.Warnings)
	require.Len(t, res.Holdings, 1)
	assertDecimal(t, "6", res.Holdings[0].ActiveWeight)
}

func TestAnalyze_RejectsInvalidRequests(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.Analyze(context.Background(), AnalysisRequest{})
	assert.ErrorIs(t, err, ErrNoSchemesTable)

	req := svc.NewRequest(schemesFixture(t), nil)
	req.TopN = -1
	_, err = svc.Analyze(context.Background(), req)
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeValidation, appErr.Type)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Analyze(ctx, svc.NewRequest(schemesFixture(t), nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_RecordsMetricsAndSpans(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := infrastructure.CreateAnalysisMetrics(mp.Meter("test"))
	require.NoError(t, err)

	spans := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)).Tracer("test")

	svc, _ := newService(t, nil, WithMetrics(metrics), WithTracer(tracer))

	req := svc.NewRequest(schemesFixture(t), benchmarksFixture(t))
	req.Scheme = "Alpha Equity Fund"
	_, err = svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	req.Scheme = "Unknown Fund"
	_, err = svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	outcomes := make(map[string]int64)
	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			data, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range data.DataPoints {
				sums[m.Name] += dp.Value
				if m.Name == "analyses_total" {
					outcome, _ := dp.Attributes.Value("outcome")
					outcomes[outcome.AsString()] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), outcomes[infrastructure.OutcomeOK])
	assert.Equal(t, int64(1), outcomes[infrastructure.OutcomeEmptySelection])
	assert.Equal(t, int64(1), sums["empty_selections_total"])
	assert.Equal(t, int64(2), sums["unparseable_weights_total"])

	names := make(map[string]bool)
	for _, s := range spans.Ended() {
		names[s.Name()] = true
	}
	for _, name := range []string{"analysis.analyze", "analysis.normalize", "analysis.reconcile", "analysis.rank"} {
		assert.True(t, names[name], name)
	}
}

func TestListSchemes(t *testing.T) {
	svc, _ := newService(t, nil)

	names, err := svc.ListSchemes(context.Background(), schemesFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha Equity Fund", "Beta Value Fund"}, names)

	_, err = svc.ListSchemes(context.Background(), activeweight.RawTable{Columns: []string{"Stock"}})
	assert.ErrorIs(t, err, activeweight.ErrSchemaResolution)
}

func TestNewAnalysisService_InvalidPattern(t *testing.T) {
	columns := config.ColumnsConfig{
		Schemes: activeweight.PatternSet{{Role: activeweight.RoleIndustry, Patterns: []string{"("}}},
	}
	_, err := NewAnalysisService(config.Default().Analysis, columns, nil)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
}

func TestAnalysisService_Ready(t *testing.T) {
	svc, _ := newService(t, nil)
	assert.NoError(t, svc.Ready(context.Background()))

	var missing *AnalysisService
	assert.ErrorIs(t, missing.Ready(context.Background()), ErrServiceUnavailable)
}
