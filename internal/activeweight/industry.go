package activeweight

import (
	"sort"

	"github.com/shopspring/decimal"
)

// IndustrySummary is the sector-level comparison.
type IndustrySummary struct {
	Industry        string
	FundWeight      decimal.Decimal
	BenchmarkWeight decimal.Decimal
	ActiveWeight    decimal.Decimal
}

// AggregateByIndustry groups fund and benchmark holdings by industry
// independently, then merges both groupings with an outer union: an industry
// found on one side only still appears, with zero on the other side.
//
// Records without an industry are left out of this aggregate. Invalid weights
// count as zero. The benchmark side may be empty or carry no industry at all;
// fund and benchmark records may come from the same table. The result is
// ordered by industry name.
func AggregateByIndustry(fund, benchmark []HoldingRecord) []IndustrySummary {
	fundSums := sumByIndustry(fund)
	benchSums := sumByIndustry(benchmark)

	names := make([]string, 0, len(fundSums)+len(benchSums))
	for k := range fundSums {
		names = append(names, k)
	}
	for k := range benchSums {
		if _, ok := fundSums[k]; !ok {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	out := make([]IndustrySummary, 0, len(names))
	for _, name := range names {
		f := fundSums[name]
		b := benchSums[name]
		out = append(out, IndustrySummary{
			Industry:        name,
			FundWeight:      f,
			BenchmarkWeight: b,
			ActiveWeight:    f.Sub(b),
		})
	}
	return out
}

// AggregateReconciled aggregates reconciled holdings by their industry.
// Benchmark-only stocks without an industry are excluded.
func AggregateReconciled(rs []ReconciledHolding) []IndustrySummary {
	fund := make([]HoldingRecord, 0, len(rs))
	bench := make([]HoldingRecord, 0, len(rs))
	for _, r := range rs {
		fund = append(fund, HoldingRecord{Stock: r.Stock, Industry: r.Industry, Weight: NewWeight(r.SchemeWeight)})
		bench = append(bench, HoldingRecord{Stock: r.Stock, Industry: r.Industry, Weight: NewWeight(r.BenchmarkWeight)})
	}
	return AggregateByIndustry(fund, bench)
}

func sumByIndustry(hs []HoldingRecord) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, h := range hs {
		if h.Industry == "" {
			continue
		}
		sums[h.Industry] = sums[h.Industry].Add(h.Weight.OrZero())
	}
	return sums
}
