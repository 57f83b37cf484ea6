// Package activeweight implements the active-weight reconciliation engine that
// compares a mutual fund scheme's holdings with the constituent weights of a
// benchmark index.
//
// # Architecture
//
// The package is organized leaf-first, one file per stage:
//
//   - roles.go: Canonical roles and the ColumnMapping produced by the resolver
//   - resolver.go: Header pattern matching that tolerates vendor naming drift
//   - weight.go: Nullable weight values and the numeric coercion policy
//   - table.go: RawTable input and the CanonicalTable produced by normalization
//   - normalizer.go: Column renaming, weight coercion and row filtering
//   - reconcile.go: Full outer join of scheme and benchmark holdings
//   - industry.go: Sector-level aggregation of fund and benchmark weights
//   - ranking.go: Stable ordering and top overweight/underweight selection
//   - report.go: Named tabular sections for downloadable reports
//
// # Data Flow
//
//	RawTable → Resolver → ColumnMapping → Normalizer → CanonicalTable
//	CanonicalTable (schemes) ┐
//	                          ├→ Reconcile → AggregateReconciled / Rank → Report
//	CanonicalTable (benchmark)┘
//
// # Usage
//
//	resolver, err := activeweight.NewResolver(activeweight.DefaultSchemePatterns())
//	if err != nil {
//	    return err
//	}
//	mapping := resolver.Resolve(raw.Columns)
//	schemes, dropped, err := activeweight.NormalizeTable(raw, mapping, activeweight.SchemeRequiredRoles)
//	if err != nil {
//	    return err // *SchemaResolutionError naming every missing role
//	}
//	selected := schemes.Filter(activeweight.RoleSchemeName, "Templeton India Equity Income Fund(G)")
//	reconciled := activeweight.Reconcile(
//	    selected.Holdings(activeweight.RoleFundWeight),
//	    benchmark.Holdings(activeweight.RoleBenchmarkWeight),
//	)
//	ranking := activeweight.Rank(reconciled, 5)
//
// # Numeric Policy
//
// Weights are decimal values (github.com/shopspring/decimal) so that sums and
// differences are exact. A cell that cannot be parsed keeps an "unparseable"
// marker through normalization and only becomes zero when aggregated; an empty
// cell is "missing" and also aggregates as zero. A stock present on only one
// side of the join has a zero weight on the other side: absence means zero
// exposure.
//
// # Concurrency
//
// Every function is pure over its inputs. Nothing is cached at package level,
// so concurrent requests can run the pipeline without any locking.
package activeweight
