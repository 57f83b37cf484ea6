package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mfbench/internal/activeweight"
	"mfbench/internal/config"
	apierrors "mfbench/internal/errors"
	"mfbench/internal/infrastructure"
)

// Mode says how the stock-level comparison was produced.
type Mode string

const (
	// ModeReconciled joins the scheme holdings with a benchmark table.
	ModeReconciled Mode = "reconciled"
	// ModeVendor uses the benchmark and active weights published in the
	// scheme table itself.
	ModeVendor Mode = "vendor"
)

// Warnings attached to results that are valid but empty or degenerate.
const (
	WarningEmptySelection = "no holdings match the selected scheme"
	WarningEmptyBenchmark = "no benchmark constituents match the selected benchmark"
	WarningNoBenchmark    = "scheme table carries no benchmark weights; active weight equals fund weight"
)

// Table labels used in errors, logs and metrics.
const (
	TableSchemes    = "schemes"
	TableBenchmarks = "benchmarks"
)

// AnalysisRequest carries the loaded tables and the selection of one analysis.
type AnalysisRequest struct {
	Schemes activeweight.RawTable
	// Benchmarks is optional. Without it the scheme table's own benchmark
	// and active weight columns are used.
	Benchmarks   *activeweight.RawTable
	Scheme       string
	Benchmark    string
	TopN         int
	IndustryTopN int
}

// TableStats describes how one source table was normalized.
type TableStats struct {
	Rows        int                          `json:"rows"`
	Kept        int                          `json:"kept"`
	Dropped     int                          `json:"dropped"`
	Unparseable int                          `json:"unparseable"`
	Columns     map[activeweight.Role]string `json:"columns"`
}

// Stats groups the table statistics of an analysis.
type Stats struct {
	Schemes       TableStats  `json:"schemes"`
	Benchmarks    *TableStats `json:"benchmarks,omitempty"`
	SelectedRows  int         `json:"selected_rows"`
	BenchmarkRows int         `json:"benchmark_rows"`
}

// Totals are the summed weights of the comparison.
type Totals struct {
	Scheme    decimal.Decimal
	Benchmark decimal.Decimal
	Active    decimal.Decimal
}

// Result is the outcome of one analysis.
type Result struct {
	Scheme          string
	Benchmark       string
	BenchmarkSource string
	Mode            Mode
	Holdings        []activeweight.ReconciledHolding
	Industries      []activeweight.IndustrySummary
	Ranking         activeweight.Ranking
	IndustryOver    []activeweight.IndustrySummary
	IndustryUnder   []activeweight.IndustrySummary
	ActiveShare     decimal.Decimal
	Totals          Totals
	Stats           Stats
	Warnings        []string
	Duration        time.Duration
}

// Empty reports whether the analysis selected no holdings.
func (r *Result) Empty() bool {
	return len(r.Holdings) == 0
}

// Sections returns the multi-section report of the result.
func (r *Result) Sections() []activeweight.Section {
	return activeweight.BuildReport(r.Industries, r.Ranking)
}

// ComparisonSection returns the full stock-level comparison as one table.
func (r *Result) ComparisonSection() activeweight.Section {
	return activeweight.HoldingsSection(activeweight.SectionActiveWeights, r.Holdings)
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// AnalysisService runs active weight analyses over loaded tables. It holds no
// per-request state and is safe for concurrent use.
type AnalysisService struct {
	cfg       config.AnalysisConfig
	schemes   *activeweight.Resolver
	benchmark *activeweight.Resolver
	logger    *slog.Logger
	metrics   *infrastructure.AnalysisMetrics
	tracer    trace.Tracer
}

// AnalysisOption customizes an AnalysisService.
type AnalysisOption func(*AnalysisService)

// WithMetrics records analysis metrics on m.
func WithMetrics(m *infrastructure.AnalysisMetrics) AnalysisOption {
	return func(s *AnalysisService) { s.metrics = m }
}

// WithTracer sets the tracer used for analysis spans.
func WithTracer(t trace.Tracer) AnalysisOption {
	return func(s *AnalysisService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewAnalysisService creates an analysis service from the analysis defaults
// and the configured column patterns.
func NewAnalysisService(analysis config.AnalysisConfig, columns config.ColumnsConfig, logger *slog.Logger, opts ...AnalysisOption) (*AnalysisService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	schemes, err := activeweight.NewResolver(columns.SchemePatterns())
	if err != nil {
		return nil, apierrors.NewConfigError("invalid scheme column pattern", err)
	}
	benchmark, err := activeweight.NewResolver(columns.BenchmarkPatterns())
	if err != nil {
		return nil, apierrors.NewConfigError("invalid benchmark column pattern", err)
	}

	s := &AnalysisService{
		cfg:       analysis,
		schemes:   schemes,
		benchmark: benchmark,
		logger:    logger,
		tracer:    otel.Tracer(infrastructure.InstrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	logger.Info("AnalysisService initialized",
		slog.String("default_benchmark", analysis.DefaultBenchmark),
		slog.String("benchmark_source", analysis.BenchmarkSource),
		slog.Int("stock_top_n", analysis.StockTopN),
		slog.Int("industry_top_n", analysis.IndustryTopN))

	return s, nil
}

// Defaults returns the analysis defaults the service was configured with.
func (s *AnalysisService) Defaults() config.AnalysisConfig {
	return s.cfg
}

// Ready is the readiness probe of the service.
func (s *AnalysisService) Ready(ctx context.Context) error {
	if s == nil || s.schemes == nil || s.benchmark == nil {
		return ErrServiceUnavailable
	}
	return ctx.Err()
}

// NewRequest returns a request for the given tables with the configured
// top-N sizes.
func (s *AnalysisService) NewRequest(schemes activeweight.RawTable, benchmarks *activeweight.RawTable) AnalysisRequest {
	return AnalysisRequest{
		Schemes:      schemes,
		Benchmarks:   benchmarks,
		TopN:         s.cfg.StockTopN,
		IndustryTopN: s.cfg.IndustryTopN,
	}
}

// ListSchemes returns the distinct scheme names of a scheme table in order of
// first appearance.
func (s *AnalysisService) ListSchemes(ctx context.Context, schemes activeweight.RawTable) ([]string, error) {
	_, span := s.tracer.Start(ctx, "analysis.list_schemes")
	defer span.End()

	mapping := s.schemes.Resolve(schemes.Columns)
	required := []activeweight.Role{activeweight.RoleSchemeName}
	if err := mapping.Require(required, schemes.Columns); err != nil {
		span.SetStatus(codes.Error, "schema resolution failed")
		return nil, apierrors.NewSchemaError(TableSchemes, err)
	}

	table, _, err := activeweight.NewNormalizer(s.logger).Normalize(schemes, mapping, required)
	if err != nil {
		return nil, apierrors.NewSchemaError(TableSchemes, err)
	}
	names := table.Distinct(activeweight.RoleSchemeName)
	span.SetAttributes(attribute.Int("schemes.count", len(names)))
	return names, nil
}

// Analyze normalizes the tables of req, selects the scheme and benchmark,
// and computes stock and industry active weights with their rankings.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (res *Result, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "analysis.analyze",
		trace.WithAttributes(
			attribute.String("analysis.scheme", req.Scheme),
			attribute.String("analysis.benchmark", req.Benchmark),
		))
	defer span.End()

	mode := ModeVendor
	if req.Benchmarks != nil {
		mode = ModeReconciled
	}
	logger := s.logger.With(
		slog.String("scheme", req.Scheme),
		slog.String("mode", string(mode)))

	defer func() {
		outcome := infrastructure.OutcomeOK
		switch {
		case errors.Is(err, activeweight.ErrSchemaResolution):
			outcome = infrastructure.OutcomeSchemaError
		case err != nil:
			outcome = infrastructure.OutcomeError
		case res.Empty():
			outcome = infrastructure.OutcomeEmptySelection
		}
		if err != nil {
			infrastructure.RecordError(ctx, err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.metrics.RecordAnalysis(ctx, string(mode), outcome, time.Since(start))
	}()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res = &Result{Scheme: strings.TrimSpace(req.Scheme), Mode: mode}

	schemes, stats, err := s.normalize(ctx, TableSchemes, s.schemes, req.Schemes, activeweight.SchemeRequiredRoles)
	if err != nil {
		return nil, err
	}
	res.Stats.Schemes = stats

	selected := schemes
	if res.Scheme != "" {
		selected = schemes.Filter(activeweight.RoleSchemeName, res.Scheme)
	}
	res.Stats.SelectedRows = selected.Len()
	if selected.Len() == 0 {
		logger.WarnContext(ctx, "no holdings match the selected scheme",
			slog.Int("scheme_rows", schemes.Len()))
		s.metrics.RecordEmptySelection(ctx, "scheme")
		res.warn(WarningEmptySelection)
		res.Benchmark, res.BenchmarkSource = s.resolveBenchmark(req.Benchmark, selected)
		res.Duration = time.Since(start)
		return res, nil
	}

	res.Benchmark, res.BenchmarkSource = s.resolveBenchmark(req.Benchmark, selected)
	span.SetAttributes(
		attribute.String("analysis.benchmark.resolved", res.Benchmark),
		attribute.String("analysis.benchmark.source", res.BenchmarkSource))

	if req.Benchmarks != nil {
		if err := s.reconcile(ctx, logger, req, selected, res); err != nil {
			return nil, err
		}
	} else {
		if !selected.Has(activeweight.RoleBenchmarkWeight) && !selected.Has(activeweight.RoleActiveWeight) {
			res.warn(WarningNoBenchmark)
		}
		res.Holdings = activeweight.VendorActiveHoldings(selected)
		res.Industries = s.industries(selected, res.Holdings)
	}

	_, rankSpan := s.tracer.Start(ctx, "analysis.rank")
	res.Ranking = activeweight.Rank(res.Holdings, req.TopN)
	res.IndustryOver, res.IndustryUnder = activeweight.RankIndustries(res.Industries, req.IndustryTopN)
	res.ActiveShare = activeweight.ActiveShare(res.Holdings)
	res.Totals.Scheme, res.Totals.Benchmark, res.Totals.Active = activeweight.Totals(res.Holdings)
	rankSpan.End()

	res.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("analysis.holdings", len(res.Holdings)),
		attribute.Int("analysis.industries", len(res.Industries)))

	logger.InfoContext(ctx, "analysis completed",
		slog.String("benchmark", res.Benchmark),
		slog.Int("holdings", len(res.Holdings)),
		slog.Int("industries", len(res.Industries)),
		slog.String("active_share", res.ActiveShare.String()),
		slog.Duration("duration", res.Duration))

	return res, nil
}

// reconcile joins the selected scheme rows with the benchmark table.
func (s *AnalysisService) reconcile(ctx context.Context, logger *slog.Logger, req AnalysisRequest, selected *activeweight.CanonicalTable, res *Result) error {
	bench, stats, err := s.normalize(ctx, TableBenchmarks, s.benchmark, *req.Benchmarks, activeweight.BenchmarkRequiredRoles)
	if err != nil {
		return err
	}
	res.Stats.Benchmarks = &stats

	if res.Benchmark != "" && bench.Has(activeweight.RoleBenchmarkFilter) {
		filtered := bench.Filter(activeweight.RoleBenchmarkFilter, res.Benchmark)
		if filtered.Len() == 0 {
			logger.WarnContext(ctx, "no benchmark constituents match the selected benchmark",
				slog.String("benchmark", res.Benchmark),
				slog.Any("available", bench.Distinct(activeweight.RoleBenchmarkFilter)))
			s.metrics.RecordEmptySelection(ctx, "benchmark")
			res.warn(WarningEmptyBenchmark)
		}
		bench = filtered
	}
	res.Stats.BenchmarkRows = bench.Len()

	_, span := s.tracer.Start(ctx, "analysis.reconcile")
	defer span.End()

	res.Holdings = activeweight.Reconcile(
		selected.Holdings(activeweight.RoleFundWeight),
		bench.Holdings(activeweight.RoleBenchmarkWeight))
	res.Industries = s.industries(selected, res.Holdings)
	span.SetAttributes(attribute.Int("analysis.holdings", len(res.Holdings)))
	return nil
}

// industries aggregates by industry. A scheme table carrying its own
// benchmark weights is summed side by side; otherwise the reconciled
// holdings are grouped.
func (s *AnalysisService) industries(selected *activeweight.CanonicalTable, holdings []activeweight.ReconciledHolding) []activeweight.IndustrySummary {
	if selected.Has(activeweight.RoleBenchmarkWeight) {
		return activeweight.AggregateByIndustry(
			selected.Holdings(activeweight.RoleFundWeight),
			selected.Holdings(activeweight.RoleBenchmarkWeight))
	}
	return activeweight.AggregateReconciled(holdings)
}

// normalize resolves and normalizes one source table, recording its stats.
func (s *AnalysisService) normalize(ctx context.Context, name string, resolver *activeweight.Resolver, raw activeweight.RawTable, required []activeweight.Role) (*activeweight.CanonicalTable, TableStats, error) {
	_, span := s.tracer.Start(ctx, "analysis.normalize",
		trace.WithAttributes(attribute.String("table", name)))
	defer span.End()

	mapping := resolver.Resolve(raw.Columns)
	normalizer := activeweight.NewNormalizer(s.logger.With(slog.String("table", name)))
	normalizer.RetainOriginals = s.cfg.RetainOriginals

	table, dropped, err := normalizer.Normalize(raw, mapping, required)
	if err != nil {
		span.SetStatus(codes.Error, "schema resolution failed")
		return nil, TableStats{}, apierrors.NewSchemaError(name, err)
	}

	stats := TableStats{
		Rows:        raw.Len(),
		Kept:        table.Len(),
		Dropped:     dropped,
		Unparseable: table.Unparseable,
		Columns:     mapping,
	}
	span.SetAttributes(
		attribute.Int("rows", stats.Rows),
		attribute.Int("dropped", stats.Dropped),
		attribute.Int("unparseable", stats.Unparseable))
	s.metrics.RecordTable(ctx, name, stats.Rows, stats.Dropped, stats.Unparseable)
	return table, stats, nil
}

// resolveBenchmark picks the benchmark name under the configured source
// policy. The request always wins; an empty result selects every benchmark
// row.
func (s *AnalysisService) resolveBenchmark(requested string, selected *activeweight.CanonicalTable) (name, source string) {
	if b := strings.TrimSpace(requested); b != "" {
		return b, config.BenchmarkSourceRequest
	}
	switch s.cfg.BenchmarkSource {
	case config.BenchmarkSourceScheme:
		if selected.Len() > 0 {
			if b := selected.Rows[0].Value(activeweight.RoleBenchmarkFilter); b != "" {
				return b, config.BenchmarkSourceScheme
			}
		}
		if b := strings.TrimSpace(s.cfg.DefaultBenchmark); b != "" {
			return b, config.BenchmarkSourceConfig
		}
	case config.BenchmarkSourceConfig:
		return strings.TrimSpace(s.cfg.DefaultBenchmark), config.BenchmarkSourceConfig
	}
	return "", ""
}

func validateRequest(req AnalysisRequest) error {
	if len(req.Schemes.Columns) == 0 {
		return apierrors.NewAppError(apierrors.ErrTypeValidation, "schemes table has no columns", ErrNoSchemesTable)
	}
	if req.TopN < 0 {
		return apierrors.NewAppValidationError("top_n must not be negative")
	}
	if req.IndustryTopN < 0 {
		return apierrors.NewAppValidationError("industry_top_n must not be negative")
	}
	return nil
}
