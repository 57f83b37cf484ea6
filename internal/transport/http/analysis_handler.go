package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"mfbench/internal/activeweight"
	"mfbench/internal/config"
	"mfbench/internal/dataprocessing"
	apierrors "mfbench/internal/errors"
	"mfbench/internal/exporter"
	"mfbench/internal/infrastructure"
	"mfbench/internal/middleware"
	"mfbench/internal/services"
)

// Multipart field names of the analysis endpoints.
const (
	FieldSchemes    = "schemes"
	FieldBenchmarks = "benchmarks"
)

// Report formats of POST /api/analysis/report.
const (
	ReportFormatXLSX = "xlsx"
	ReportFormatCSV  = "csv"
)

// defaultMaxMemory is the part of a multipart form kept in memory; larger
// uploads spill to temporary files.
const defaultMaxMemory = 8 << 20

// AnalysisParams are the form fields of an analysis request.
type AnalysisParams struct {
	Scheme             string `form:"scheme" validate:"omitempty,label"`
	Benchmark          string `form:"benchmark" validate:"omitempty,label"`
	TopN               *int   `form:"top_n" validate:"omitempty,min=0,max=1000"`
	IndustryTopN       *int   `form:"industry_top_n" validate:"omitempty,min=0,max=1000"`
	SchemesSkipRows    *int   `form:"schemes_skip_rows" validate:"omitempty,min=0,max=1000"`
	BenchmarksSkipRows *int   `form:"benchmarks_skip_rows" validate:"omitempty,min=0,max=1000"`
	Encoding           string `form:"encoding" validate:"omitempty,encoding"`
	Sheet              string `form:"sheet" validate:"omitempty,label"`
	SchemesFilename    string `form:"schemes_filename" validate:"required,filename"`
	BenchmarksFilename string `form:"benchmarks_filename" validate:"omitempty,filename"`
}

// ReportFiles names the report attachments.
type ReportFiles struct {
	Workbook string
	CSV      string
}

// AnalysisHandler handles analysis HTTP requests with RFC 7807 compliance
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	csv          *exporter.CSVWriter
	workbook     *exporter.WorkbookWriter
	metrics      *infrastructure.AnalysisMetrics
	files        ReportFiles
	maxMemory    int64
}

// mustRegisterValidations adds the form tags used by AnalysisParams. It panics
// when a tag cannot be registered.
func mustRegisterValidations(v *middleware.ValidationMiddleware) {
	if err := v.RegisterValidation("encoding", validEncoding); err != nil {
		panic(fmt.Sprintf("register encoding validation: %v", err))
	}
}

func validEncoding(fl validator.FieldLevel) bool {
	return dataprocessing.IsSupportedEncoding(fl.Field().String())
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, metrics *infrastructure.AnalysisMetrics) *AnalysisHandler {
	v := middleware.NewValidationMiddleware(logger, errorHandler)
	mustRegisterValidations(v)

	return &AnalysisHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
		validator:    v,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		csv:          exporter.NewCSVWriter(logger),
		workbook:     exporter.NewWorkbookWriter(logger),
		metrics:      metrics,
		files: ReportFiles{
			Workbook: config.WorkbookFileName,
			CSV:      config.CSVFileName,
		},
		maxMemory: defaultMaxMemory,
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))

	r.Post("/analysis", h.Analyze)
	r.Post("/analysis/report", h.Report)
	r.Post("/schemes", h.ListSchemes)

	return r
}

// Analyze handles POST /api/analysis
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	res, ok := h.analyze(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, NewAnalysisResponse(res))
}

// Report handles POST /api/analysis/report?format=xlsx|csv. The workbook holds
// the industry summary and both rankings; the CSV holds the full stock-level
// comparison.
func (h *AnalysisHandler) Report(w http.ResponseWriter, r *http.Request) {
	format, ok := h.query.ValidateEnum(w, r, "format", []string{ReportFormatXLSX, ReportFormatCSV}, ReportFormatXLSX)
	if !ok {
		return
	}

	res, ok := h.analyze(w, r)
	if !ok {
		return
	}

	var (
		buf         bytes.Buffer
		err         error
		filename    string
		contentType string
	)
	switch format {
	case ReportFormatCSV:
		err = h.csv.Write(&buf, res.ComparisonSection(), exporter.WriteOptions{})
		filename, contentType = h.files.CSV, "text/csv; charset=utf-8"
	default:
		err = h.workbook.Write(&buf, res.Sections())
		filename, contentType = h.files.Workbook, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write report",
			slog.String("format", format),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.NewExportError(format+" report", err))
		return
	}
	h.metrics.RecordReport(r.Context(), format)

	if len(res.Warnings) > 0 {
		w.Header().Set("X-Analysis-Warnings", strings.Join(res.Warnings, "; "))
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// ListSchemes handles POST /api/schemes
func (h *AnalysisHandler) ListSchemes(w http.ResponseWriter, r *http.Request) {
	params, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	defaults := h.service.Defaults()
	tables, err := h.load(r, params, defaults, false)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	names, err := h.service.ListSchemes(r.Context(), tables[0])
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	render.JSON(w, r, SchemesResponse{Schemes: names, Count: len(names)})
}

// analyze parses, loads and analyzes one request. It writes the error
// response itself and reports whether the caller should continue.
func (h *AnalysisHandler) analyze(w http.ResponseWriter, r *http.Request) (*services.Result, bool) {
	params, ok := h.parseForm(w, r)
	if !ok {
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	defaults := h.service.Defaults()
	withBenchmarks := params.BenchmarksFilename != ""
	tables, err := h.load(r, params, defaults, withBenchmarks)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	var benchmarks *activeweight.RawTable
	if withBenchmarks {
		benchmarks = &tables[1]
	}
	req := h.service.NewRequest(tables[0], benchmarks)
	req.Scheme = params.Scheme
	req.Benchmark = params.Benchmark
	if params.TopN != nil {
		req.TopN = *params.TopN
	}
	if params.IndustryTopN != nil {
		req.IndustryTopN = *params.IndustryTopN
	}

	h.logger.InfoContext(r.Context(), "running analysis",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("scheme", req.Scheme),
		slog.String("benchmark", req.Benchmark),
		slog.Bool("benchmarks_uploaded", withBenchmarks))

	res, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return res, true
}

// parseForm reads the multipart form and validates its fields.
func (h *AnalysisHandler) parseForm(w http.ResponseWriter, r *http.Request) (*AnalysisParams, bool) {
	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, err)
			return nil, false
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return nil, false
	}

	if _, ok := r.MultipartForm.File[FieldSchemes]; !ok {
		r.MultipartForm.RemoveAll()
		h.errorHandler.HandleError(w, r, apierrors.MissingUploadError(FieldSchemes))
		return nil, false
	}

	params := &AnalysisParams{
		Scheme:          r.FormValue("scheme"),
		Benchmark:       r.FormValue("benchmark"),
		Encoding:        r.FormValue("encoding"),
		Sheet:           r.FormValue("sheet"),
		SchemesFilename: fileHeaderName(r.MultipartForm, FieldSchemes),
	}
	params.BenchmarksFilename = fileHeaderName(r.MultipartForm, FieldBenchmarks)

	var fieldErrs []apierrors.ValidationError
	for _, f := range []struct {
		field string
		dst   **int
	}{
		{"top_n", &params.TopN},
		{"industry_top_n", &params.IndustryTopN},
		{"schemes_skip_rows", &params.SchemesSkipRows},
		{"benchmarks_skip_rows", &params.BenchmarksSkipRows},
	} {
		field := f.field
		raw := strings.TrimSpace(r.FormValue(field))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fieldErrs = append(fieldErrs, apierrors.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s must be a valid integer", field),
			})
			continue
		}
		*f.dst = &n
	}
	if len(fieldErrs) > 0 {
		r.MultipartForm.RemoveAll()
		h.errorHandler.HandleError(w, r, apierrors.NewValidationErrors(fieldErrs))
		return nil, false
	}

	if err := h.validator.ValidateStruct(params); err != nil {
		r.MultipartForm.RemoveAll()
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return params, true
}

type uploadField struct {
	field string
	table string
	skip  int
}

// load decodes the uploaded tables concurrently.
func (h *AnalysisHandler) load(r *http.Request, params *AnalysisParams, defaults config.AnalysisConfig, withBenchmarks bool) ([]activeweight.RawTable, error) {
	encoding := defaults.Encoding
	if params.Encoding != "" {
		encoding = params.Encoding
	}
	schemesSkip := defaults.SchemesSkipRows
	if params.SchemesSkipRows != nil {
		schemesSkip = *params.SchemesSkipRows
	}
	benchmarksSkip := defaults.BenchmarksSkipRows
	if params.BenchmarksSkipRows != nil {
		benchmarksSkip = *params.BenchmarksSkipRows
	}

	fields := []uploadField{{FieldSchemes, services.TableSchemes, schemesSkip}}
	if withBenchmarks {
		fields = append(fields, uploadField{FieldBenchmarks, services.TableBenchmarks, benchmarksSkip})
	}

	uploads := make([]services.Upload, 0, len(fields))
	for _, f := range fields {
		file, header, err := r.FormFile(f.field)
		if err != nil {
			return nil, apierrors.MissingUploadError(f.field)
		}
		defer file.Close()

		if _, err := dataprocessing.DetectFormat(header.Filename); err != nil {
			return nil, apierrors.UnsupportedFormatError(header.Filename)
		}
		uploads = append(uploads, services.Upload{
			Table:    f.table,
			Filename: header.Filename,
			Reader:   file,
			Options: dataprocessing.LoadOptions{
				SkipRows: f.skip,
				Encoding: encoding,
				Sheet:    params.Sheet,
			},
		})
	}

	return services.LoadTables(r.Context(), h.logger, uploads...)
}

func fileHeaderName(form *multipart.Form, field string) string {
	if hs := form.File[field]; len(hs) > 0 {
		return hs[0].Filename
	}
	return ""
}
