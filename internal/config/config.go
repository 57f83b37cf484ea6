package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"mfbench/internal/activeweight"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Columns   ColumnsConfig   `yaml:"columns" ignored:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig controls the OpenTelemetry providers.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
}

// AnalysisConfig contains the defaults of an active weight analysis. Requests
// may override the top-N sizes, skip rows and encoding.
type AnalysisConfig struct {
	DefaultBenchmark   string `yaml:"default_benchmark" envconfig:"DEFAULT_BENCHMARK"`
	BenchmarkSource    string `yaml:"benchmark_source" envconfig:"BENCHMARK_SOURCE"`
	StockTopN          int    `yaml:"stock_top_n" envconfig:"STOCK_TOP_N"`
	IndustryTopN       int    `yaml:"industry_top_n" envconfig:"INDUSTRY_TOP_N"`
	SchemesSkipRows    int    `yaml:"schemes_skip_rows" envconfig:"SCHEMES_SKIP_ROWS"`
	BenchmarksSkipRows int    `yaml:"benchmarks_skip_rows" envconfig:"BENCHMARKS_SKIP_ROWS"`
	Encoding           string `yaml:"encoding" envconfig:"ENCODING"`
	RetainOriginals    bool   `yaml:"retain_originals" envconfig:"RETAIN_ORIGINALS"`
}

// ColumnsConfig holds the header patterns of both source tables. It is only
// read from the config file; an empty list keeps the built-in patterns.
type ColumnsConfig struct {
	Schemes    activeweight.PatternSet `yaml:"schemes"`
	Benchmarks activeweight.PatternSet `yaml:"benchmarks"`
}

// SchemePatterns returns the configured scheme patterns or the defaults.
func (c ColumnsConfig) SchemePatterns() activeweight.PatternSet {
	return mergePatterns(activeweight.DefaultSchemePatterns(), c.Schemes)
}

// BenchmarkPatterns returns the configured benchmark patterns or the defaults.
func (c ColumnsConfig) BenchmarkPatterns() activeweight.PatternSet {
	return mergePatterns(activeweight.DefaultBenchmarkPatterns(), c.Benchmarks)
}

// mergePatterns replaces the default patterns of every role named in custom.
func mergePatterns(defaults, custom activeweight.PatternSet) activeweight.PatternSet {
	out := defaults
	for _, rp := range custom {
		out = out.With(rp.Role, rp.Patterns...)
	}
	return out
}

// Load loads configuration from defaults, the config file if one exists, and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file keep
// their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration and normalizes enumerated values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("unsupported log format: %q", c.Logging.Format)
	}
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	switch c.Logging.Output {
	case "console", "stderr", "file", "both":
	default:
		return fmt.Errorf("unsupported log output: %q", c.Logging.Output)
	}
	if (c.Logging.Output == "file" || c.Logging.Output == "both") && c.Logging.FilePath == "" {
		return fmt.Errorf("log file path is required for output %q", c.Logging.Output)
	}

	if _, err := activeweight.NewResolver(c.Columns.SchemePatterns()); err != nil {
		return fmt.Errorf("scheme columns: %w", err)
	}
	if _, err := activeweight.NewResolver(c.Columns.BenchmarkPatterns()); err != nil {
		return fmt.Errorf("benchmark columns: %w", err)
	}

	return c.Analysis.Validate()
}

// Validate checks the analysis defaults.
func (a *AnalysisConfig) Validate() error {
	a.BenchmarkSource = strings.ToLower(strings.TrimSpace(a.BenchmarkSource))
	switch a.BenchmarkSource {
	case BenchmarkSourceRequest, BenchmarkSourceScheme, BenchmarkSourceConfig:
	default:
		return fmt.Errorf("unsupported benchmark source: %q", a.BenchmarkSource)
	}
	if a.BenchmarkSource == BenchmarkSourceConfig && strings.TrimSpace(a.DefaultBenchmark) == "" {
		return fmt.Errorf("benchmark source %q requires a default benchmark", a.BenchmarkSource)
	}
	if a.StockTopN < 0 || a.IndustryTopN < 0 {
		return fmt.Errorf("top-N sizes must not be negative")
	}
	if a.SchemesSkipRows < 0 || a.BenchmarksSkipRows < 0 {
		return fmt.Errorf("skip rows must not be negative")
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    DefaultRequestTimeout + 5*time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxHeaderBytes:  1 << 20, // 1MB
			MaxUploadBytes:  DefaultMaxUploadBytes,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/mfbench.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			MetricsEnabled: true,
			TracingEnabled: false,
		},
		Analysis: AnalysisConfig{
			DefaultBenchmark:   DefaultBenchmark,
			BenchmarkSource:    BenchmarkSourceScheme,
			StockTopN:          DefaultStockTopN,
			IndustryTopN:       DefaultIndustryTopN,
			SchemesSkipRows:    DefaultSchemesSkipRows,
			BenchmarksSkipRows: DefaultBenchmarksSkipRows,
			Encoding:           DefaultEncoding,
		},
	}
}
