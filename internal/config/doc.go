// Package config provides centralized configuration management for mfbench.
// It loads configuration from multiple sources, validates it, and exposes a
// type-safe API for the rest of the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. The YAML configuration file
//	3. Default values (lowest priority)
//
// The configuration file is the path in MFBENCH_CONFIG, or config.yaml or
// configs/config.yaml in the working directory when present.
//
// # Environment Variables
//
// All environment variables follow the pattern MFBENCH_<SECTION>_<KEY>:
//
//	MFBENCH_SERVER_PORT=8080
//	MFBENCH_LOGGING_LEVEL=debug
//	MFBENCH_ANALYSIS_DEFAULT_BENCHMARK=NIFTY500
//	MFBENCH_ANALYSIS_BENCHMARK_SOURCE=config
//	MFBENCH_ANALYSIS_STOCK_TOP_N=5
//
// # Column Patterns
//
// Header patterns are only read from the configuration file. Each entry
// replaces the built-in patterns of one role:
//
//	columns:
//	  schemes:
//	    - role: fund_weight
//	      patterns: ["% of holdings", "weightage"]
//	  benchmarks:
//	    - role: benchmark_filter
//	      patterns: ["^index$"]
//
// # Benchmark Selection
//
// analysis.benchmark_source decides how the benchmark name is chosen when a
// request does not name one: "scheme" reads it from the selected scheme's
// benchmark column and falls back to analysis.default_benchmark, "config"
// always uses analysis.default_benchmark, and "request" applies no filter.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests use config.Default(), which needs no environment or files.
package config
