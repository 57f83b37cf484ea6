package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfbench/internal/activeweight"
)

var envVars = []string{
	"MFBENCH_CONFIG",
	"MFBENCH_SERVER_PORT", "MFBENCH_SERVER_READ_TIMEOUT",
	"MFBENCH_LOGGING_LEVEL", "MFBENCH_LOGGING_OUTPUT",
	"MFBENCH_ANALYSIS_DEFAULT_BENCHMARK", "MFBENCH_ANALYSIS_BENCHMARK_SOURCE",
	"MFBENCH_ANALYSIS_STOCK_TOP_N", "MFBENCH_SECURITY_ALLOWED_ORIGINS",
}

// clearEnv unsets the variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "BSE500", cfg.Analysis.DefaultBenchmark)
				assert.Equal(t, BenchmarkSourceScheme, cfg.Analysis.BenchmarkSource)
				assert.Equal(t, 5, cfg.Analysis.StockTopN)
				assert.Equal(t, 10, cfg.Analysis.IndustryTopN)
				assert.Equal(t, 1, cfg.Analysis.SchemesSkipRows)
				assert.Equal(t, 2, cfg.Analysis.BenchmarksSkipRows)
				assert.Equal(t, "iso-8859-1", cfg.Analysis.Encoding)
				assert.Equal(t, "console", cfg.Logging.Output)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"MFBENCH_SERVER_PORT":                "9090",
				"MFBENCH_ANALYSIS_DEFAULT_BENCHMARK": "NIFTY500",
				"MFBENCH_ANALYSIS_BENCHMARK_SOURCE":  "CONFIG",
				"MFBENCH_SECURITY_ALLOWED_ORIGINS":   "http://a.test,http://b.test",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "NIFTY500", cfg.Analysis.DefaultBenchmark)
				assert.Equal(t, BenchmarkSourceConfig, cfg.Analysis.BenchmarkSource)
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
			},
		},
		{
			name: "file overlays defaults",
			file: `
server:
  port: 7070
  read_timeout: 5s
analysis:
  stock_top_n: 3
columns:
  schemes:
    - role: fund_weight
      patterns: ["weightage"]
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 3, cfg.Analysis.StockTopN)
				assert.Equal(t, 10, cfg.Analysis.IndustryTopN)
				assert.Equal(t, []string{"weightage"}, cfg.Columns.SchemePatterns().Patterns(activeweight.RoleFundWeight))
			},
		},
		{
			name: "environment wins over file",
			env:  map[string]string{"MFBENCH_ANALYSIS_STOCK_TOP_N": "8"},
			file: "analysis:\n  stock_top_n: 3\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8, cfg.Analysis.StockTopN)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"MFBENCH_SERVER_PORT": "70000"},
			wantErr: "invalid server port",
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: "failed to load config from file",
		},
		{
			name:    "invalid column pattern",
			file:    "columns:\n  benchmarks:\n    - role: stock_name\n      patterns: [\"(\"]\n",
			wantErr: "benchmark columns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				t.Setenv(ConfigFileEnv, writeConfigFile(t, tt.file))
			}

			cfg, err := Load()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default is valid", mutate: func(*Config) {}},
		{name: "zero read timeout", mutate: func(c *Config) { c.Server.ReadTimeout = 0 }, wantErr: "read timeout"},
		{name: "zero upload limit", mutate: func(c *Config) { c.Server.MaxUploadBytes = 0 }, wantErr: "max upload bytes"},
		{name: "bad rate limit", mutate: func(c *Config) { c.Security.RateLimit.RPS = 0 }, wantErr: "rate limit"},
		{name: "rate limit disabled", mutate: func(c *Config) { c.Security.RateLimit = RateLimitConfig{} }},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "log format"},
		{name: "file output without path", mutate: func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" }, wantErr: "log file path"},
		{name: "bad benchmark source", mutate: func(c *Config) { c.Analysis.BenchmarkSource = "vendor" }, wantErr: "benchmark source"},
		{name: "config source without default", mutate: func(c *Config) {
			c.Analysis.BenchmarkSource = BenchmarkSourceConfig
			c.Analysis.DefaultBenchmark = " "
		}, wantErr: "requires a default benchmark"},
		{name: "negative top n", mutate: func(c *Config) { c.Analysis.StockTopN = -1 }, wantErr: "top-N"},
		{name: "negative skip rows", mutate: func(c *Config) { c.Analysis.BenchmarksSkipRows = -2 }, wantErr: "skip rows"},
		{name: "unknown role", mutate: func(c *Config) {
			c.Columns.Schemes = activeweight.PatternSet{{Role: "ticker", Patterns: []string{"x"}}}
		}, wantErr: "unknown role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestColumnsConfig_DefaultsWhenEmpty(t *testing.T) {
	var c ColumnsConfig
	assert.Equal(t, activeweight.DefaultSchemePatterns(), c.SchemePatterns())
	assert.Equal(t, activeweight.DefaultBenchmarkPatterns(), c.BenchmarkPatterns())
}
