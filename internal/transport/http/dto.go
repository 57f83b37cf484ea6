package http

import (
	"github.com/shopspring/decimal"

	"mfbench/internal/activeweight"
	"mfbench/internal/services"
)

// HoldingResponse is one stock-level comparison row.
type HoldingResponse struct {
	Stock           string  `json:"stock"`
	Industry        string  `json:"industry,omitempty"`
	SchemeWeight    float64 `json:"scheme_weight"`
	BenchmarkWeight float64 `json:"benchmark_weight"`
	ActiveWeight    float64 `json:"active_weight"`
}

// IndustryResponse is one industry summary row.
type IndustryResponse struct {
	Industry        string  `json:"industry"`
	FundWeight      float64 `json:"fund_weight"`
	BenchmarkWeight float64 `json:"benchmark_weight"`
	ActiveWeight    float64 `json:"active_weight"`
}

// TotalsResponse holds the summed weights.
type TotalsResponse struct {
	Scheme    float64 `json:"scheme"`
	Benchmark float64 `json:"benchmark"`
	Active    float64 `json:"active"`
}

// AnalysisResponse is the JSON body of POST /api/analysis.
type AnalysisResponse struct {
	Scheme              string             `json:"scheme"`
	Benchmark           string             `json:"benchmark"`
	BenchmarkSource     string             `json:"benchmark_source,omitempty"`
	Mode                string             `json:"mode"`
	Holdings            []HoldingResponse  `json:"holdings"`
	Industries          []IndustryResponse `json:"industries"`
	TopOverweight       []HoldingResponse  `json:"top_overweight"`
	TopUnderweight      []HoldingResponse  `json:"top_underweight"`
	IndustryOverweight  []IndustryResponse `json:"industry_overweight"`
	IndustryUnderweight []IndustryResponse `json:"industry_underweight"`
	ActiveShare         float64            `json:"active_share"`
	Totals              TotalsResponse     `json:"totals"`
	Stats               services.Stats     `json:"stats"`
	Warnings            []string           `json:"warnings"`
	DurationMS          int64              `json:"duration_ms"`
}

// SchemesResponse is the JSON body of POST /api/schemes.
type SchemesResponse struct {
	Schemes []string `json:"schemes"`
	Count   int      `json:"count"`
}

// NewAnalysisResponse converts a service result into its JSON form. Weights
// are exact decimals in the service and become JSON numbers here.
func NewAnalysisResponse(res *services.Result) AnalysisResponse {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return AnalysisResponse{
		Scheme:              res.Scheme,
		Benchmark:           res.Benchmark,
		BenchmarkSource:     res.BenchmarkSource,
		Mode:                string(res.Mode),
		Holdings:            holdingResponses(res.Holdings),
		Industries:          industryResponses(res.Industries),
		TopOverweight:       holdingResponses(res.Ranking.Overweight),
		TopUnderweight:      holdingResponses(res.Ranking.Underweight),
		IndustryOverweight:  industryResponses(res.IndustryOver),
		IndustryUnderweight: industryResponses(res.IndustryUnder),
		ActiveShare:         toFloat(res.ActiveShare),
		Totals: TotalsResponse{
			Scheme:    toFloat(res.Totals.Scheme),
			Benchmark: toFloat(res.Totals.Benchmark),
			Active:    toFloat(res.Totals.Active),
		},
		Stats:      res.Stats,
		Warnings:   warnings,
		DurationMS: res.Duration.Milliseconds(),
	}
}

func holdingResponses(rs []activeweight.ReconciledHolding) []HoldingResponse {
	out := make([]HoldingResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, HoldingResponse{
			Stock:           r.Stock,
			Industry:        r.Industry,
			SchemeWeight:    toFloat(r.SchemeWeight),
			BenchmarkWeight: toFloat(r.BenchmarkWeight),
			ActiveWeight:    toFloat(r.ActiveWeight),
		})
	}
	return out
}

func industryResponses(ss []activeweight.IndustrySummary) []IndustryResponse {
	out := make([]IndustryResponse, 0, len(ss))
	for _, s := range ss {
		out = append(out, IndustryResponse{
			Industry:        s.Industry,
			FundWeight:      toFloat(s.FundWeight),
			BenchmarkWeight: toFloat(s.BenchmarkWeight),
			ActiveWeight:    toFloat(s.ActiveWeight),
		})
	}
	return out
}

func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
