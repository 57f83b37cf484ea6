package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Analysis outcomes recorded on analyses_total.
const (
	OutcomeOK             = "ok"
	OutcomeEmptySelection = "empty_selection"
	OutcomeSchemaError    = "schema_error"
	OutcomeError          = "error"
)

// AnalysisMetrics holds the application metrics.
type AnalysisMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Analysis metrics
	AnalysesTotal         metric.Int64Counter
	AnalysisDuration      metric.Float64Histogram
	RowsLoaded            metric.Int64Counter
	DroppedRowsTotal      metric.Int64Counter
	UnparseableWeights    metric.Int64Counter
	EmptySelectionsTotal  metric.Int64Counter
	ReportsGeneratedTotal metric.Int64Counter
}

// CreateAnalysisMetrics creates the application metrics on meter.
func CreateAnalysisMetrics(meter metric.Meter) (*AnalysisMetrics, error) {
	m := &AnalysisMetrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.AnalysesTotal, err = meter.Int64Counter(
		"analyses_total",
		metric.WithDescription("Total number of active weight analyses by outcome"),
	); err != nil {
		return nil, err
	}
	if m.AnalysisDuration, err = meter.Float64Histogram(
		"analysis_duration_seconds",
		metric.WithDescription("Active weight analysis duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.RowsLoaded, err = meter.Int64Counter(
		"rows_loaded_total",
		metric.WithDescription("Rows read from uploaded tables"),
	); err != nil {
		return nil, err
	}
	if m.DroppedRowsTotal, err = meter.Int64Counter(
		"dropped_rows_total",
		metric.WithDescription("Rows excluded for missing identity values"),
	); err != nil {
		return nil, err
	}
	if m.UnparseableWeights, err = meter.Int64Counter(
		"unparseable_weights_total",
		metric.WithDescription("Weight cells substituted with zero because they were not numeric"),
	); err != nil {
		return nil, err
	}
	if m.EmptySelectionsTotal, err = meter.Int64Counter(
		"empty_selections_total",
		metric.WithDescription("Scheme or benchmark selections that matched no rows"),
	); err != nil {
		return nil, err
	}
	if m.ReportsGeneratedTotal, err = meter.Int64Counter(
		"reports_generated_total",
		metric.WithDescription("Downloadable reports generated by format"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordAnalysis records one finished analysis.
func (m *AnalysisMetrics) RecordAnalysis(ctx context.Context, mode, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	)
	m.AnalysesTotal.Add(ctx, 1, attrs)
	m.AnalysisDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordTable records the row counters of one normalized table.
func (m *AnalysisMetrics) RecordTable(ctx context.Context, table string, rows, dropped, unparseable int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("table", table))
	m.RowsLoaded.Add(ctx, int64(rows), attrs)
	if dropped > 0 {
		m.DroppedRowsTotal.Add(ctx, int64(dropped), attrs)
	}
	if unparseable > 0 {
		m.UnparseableWeights.Add(ctx, int64(unparseable), attrs)
	}
}

// RecordEmptySelection records a selection that matched no rows.
func (m *AnalysisMetrics) RecordEmptySelection(ctx context.Context, selection string) {
	if m == nil {
		return
	}
	m.EmptySelectionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("selection", selection)))
}

// RecordReport records a generated report download.
func (m *AnalysisMetrics) RecordReport(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.ReportsGeneratedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// RecordHTTPRequest records a served request.
func (m *AnalysisMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
