package http

import (
	"context"

	"mfbench/internal/activeweight"
	"mfbench/internal/config"
	"mfbench/internal/services"
)

// AnalysisServiceInterface defines the interface for analysis operations
type AnalysisServiceInterface interface {
	Defaults() config.AnalysisConfig
	NewRequest(schemes activeweight.RawTable, benchmarks *activeweight.RawTable) services.AnalysisRequest
	ListSchemes(ctx context.Context, schemes activeweight.RawTable) ([]string, error)
	Analyze(ctx context.Context, req services.AnalysisRequest) (*services.Result, error)
}
