// Package http implements the HTTP handlers of the mfbench web service. It is a
// thin layer between the chi router and the services package: handlers parse
// and validate multipart uploads, call the service and format the response.
//
// # Endpoints
//
//	POST /api/analysis                 multipart upload, JSON result
//	POST /api/analysis/report?format=  xlsx workbook or csv comparison attachment
//	POST /api/schemes                  distinct scheme names of a schemes upload
//	GET  /api/health                   liveness summary
//	GET  /api/health/ready             readiness of registered probes
//	GET  /api/version                  build and runtime information
//
// Analysis requests carry a "schemes" file and an optional "benchmarks" file
// (CSV, XLSX or XLS) plus the form fields scheme, benchmark, top_n,
// industry_top_n, schemes_skip_rows, benchmarks_skip_rows, encoding and sheet.
// Fields left out take the configured analysis defaults.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/analysis/missing-columns",
//	    "title": "Required Columns Not Found",
//	    "status": 422,
//	    "detail": "...",
//	    "instance": "/api/analysis",
//	    "missing": ["industry"],
//	    "columns": ["Scheme Name", "Security Name", "% of Holdings"]
//	}
//
// # Testing
//
// Handlers are tested with httptest against a mocked AnalysisServiceInterface.
package http
