// Package services implements the business logic layer of mfbench. It sits
// between the HTTP handlers or CLI and the active weight core, so that
// selection rules, benchmark resolution and observability live in one place
// and can be tested without a transport.
//
// # Analysis flow
//
// AnalysisService.Analyze runs one request through these stages, each wrapped
// in its own span:
//
//	1. Resolve and normalize the schemes table
//	2. Select the requested scheme (an empty selection is a warning, not an error)
//	3. Resolve the benchmark name: request, then scheme row, then configured default
//	4. Normalize the benchmarks table and filter it by benchmark name
//	5. Reconcile, aggregate by industry and rank
//
// Without a benchmarks table the scheme table's own benchmark and active
// weight columns are used.
//
// # Loading uploads
//
// LoadTables decodes the uploaded files concurrently:
//
//	tables, err := services.LoadTables(ctx, logger,
//	    services.Upload{Table: "schemes", Filename: "holdings.csv", Reader: f1, Options: opts1},
//	    services.Upload{Table: "benchmarks", Filename: "index.xlsx", Reader: f2, Options: opts2},
//	)
//
// # Error Handling
//
// Column resolution failures are returned as errors.AppError values of type
// SCHEMA wrapping activeweight.SchemaResolutionError, so the HTTP layer can
// report the missing roles. Undecodable uploads are PARSING errors.
//
// # Health
//
// HealthService reports liveness, version and the readiness of registered
// probes.
package services
