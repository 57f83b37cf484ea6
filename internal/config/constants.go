package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "mfbench"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. MFBENCH_SERVER_PORT.
	EnvPrefix = "MFBENCH"
	// ConfigFileEnv names the variable holding an explicit config file path.
	ConfigFileEnv = "MFBENCH_CONFIG"

	// Report artifacts
	WorkbookFileName = "Mutual_Fund_Report.xlsx"
	CSVFileName      = "scheme_vs_benchmark_comparison.csv"

	// Analysis defaults
	DefaultBenchmark          = "BSE500"
	DefaultStockTopN          = 5
	DefaultIndustryTopN       = 10
	DefaultSchemesSkipRows    = 1
	DefaultBenchmarksSkipRows = 2
	DefaultEncoding           = "iso-8859-1"

	// Upload limits
	DefaultMaxUploadBytes = 32 << 20

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Network Timeouts
	DefaultRequestTimeout  = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

// Benchmark source policies. They decide which benchmark name selects rows of
// the benchmarks table when the request does not name one.
const (
	// BenchmarkSourceRequest uses only the name given with the request. With no
	// name every benchmark row is used.
	BenchmarkSourceRequest = "request"
	// BenchmarkSourceScheme falls back to the benchmark named on the selected
	// scheme's rows, then to the configured default.
	BenchmarkSourceScheme = "scheme"
	// BenchmarkSourceConfig falls back to the configured default directly.
	BenchmarkSourceConfig = "config"
)
