package activeweight

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ReconciledHolding is the comparison of one stock across both sides.
type ReconciledHolding struct {
	Stock           string
	Industry        string
	SchemeWeight    decimal.Decimal
	BenchmarkWeight decimal.Decimal
	ActiveWeight    decimal.Decimal
}

type joinEntry struct {
	schemeIndustry    string
	benchmarkIndustry string
	scheme            decimal.Decimal
	benchmark         decimal.Decimal
}

// Reconcile performs a full outer join of scheme and benchmark holdings on the
// normalized stock key.
//
// Every stock present on either side appears exactly once in the result. A
// stock absent from one side has a zero weight on that side, and invalid
// weights count as zero. Several records for the same stock on one side are
// summed. Records without a stock identifier cannot be joined and are skipped.
// The industry comes from the scheme side, falling back to the benchmark side.
//
// The result is ordered by stock key, so identical inputs always produce an
// identical result. An empty benchmark side is not special-cased: every
// benchmark weight is zero and every active weight equals the scheme weight.
func Reconcile(scheme, benchmark []HoldingRecord) []ReconciledHolding {
	entries := make(map[string]*joinEntry, len(scheme)+len(benchmark))
	get := func(key string) *joinEntry {
		e, ok := entries[key]
		if !ok {
			e = &joinEntry{}
			entries[key] = e
		}
		return e
	}

	for _, h := range scheme {
		key := NormalizeStock(h.Stock)
		if key == "" {
			continue
		}
		e := get(key)
		e.scheme = e.scheme.Add(h.Weight.OrZero())
		if e.schemeIndustry == "" {
			e.schemeIndustry = h.Industry
		}
	}
	for _, h := range benchmark {
		key := NormalizeStock(h.Stock)
		if key == "" {
			continue
		}
		e := get(key)
		e.benchmark = e.benchmark.Add(h.Weight.OrZero())
		if e.benchmarkIndustry == "" {
			e.benchmarkIndustry = h.Industry
		}
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]ReconciledHolding, 0, len(keys))
	for _, k := range keys {
		e := entries[k]
		industry := e.schemeIndustry
		if industry == "" {
			industry = e.benchmarkIndustry
		}
		out = append(out, ReconciledHolding{
			Stock:           k,
			Industry:        industry,
			SchemeWeight:    e.scheme,
			BenchmarkWeight: e.benchmark,
			ActiveWeight:    e.scheme.Sub(e.benchmark),
		})
	}
	return out
}

// VendorActiveHoldings builds comparison rows straight from a scheme table
// that already carries fund, benchmark and active weight columns, as some
// vendors publish. The vendor's active weight is used when the column exists;
// rows where it is missing or unparseable are left out, as they cannot be
// ranked. Without an active weight column the difference is computed.
func VendorActiveHoldings(t *CanonicalTable) []ReconciledHolding {
	vendorActive := t.Has(RoleActiveWeight)
	out := make([]ReconciledHolding, 0, len(t.Rows))
	for _, row := range t.Rows {
		fund := row.Weight(RoleFundWeight).OrZero()
		bench := row.Weight(RoleBenchmarkWeight).OrZero()
		active := fund.Sub(bench)
		if vendorActive {
			w := row.Weight(RoleActiveWeight)
			if !w.Valid {
				continue
			}
			active = w.Decimal
		}
		out = append(out, ReconciledHolding{
			Stock:           row.Value(RoleStockName),
			Industry:        row.Value(RoleIndustry),
			SchemeWeight:    fund,
			BenchmarkWeight: bench,
			ActiveWeight:    active,
		})
	}
	return out
}

// ActiveShare returns half the sum of absolute active weights, the share of
// the portfolio that differs from the benchmark.
func ActiveShare(rs []ReconciledHolding) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rs {
		sum = sum.Add(r.ActiveWeight.Abs())
	}
	return sum.Div(decimal.NewFromInt(2))
}

// Totals returns the summed scheme, benchmark and active weights.
func Totals(rs []ReconciledHolding) (scheme, benchmark, active decimal.Decimal) {
	for _, r := range rs {
		scheme = scheme.Add(r.SchemeWeight)
		benchmark = benchmark.Add(r.BenchmarkWeight)
		active = active.Add(r.ActiveWeight)
	}
	return scheme, benchmark, active
}
