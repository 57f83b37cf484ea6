package activeweight

// Section names of the multi-section report.
const (
	SectionIndustrySummary = "Industry Summary"
	SectionTopOverweight   = "Top Overweight"
	SectionTopUnderweight  = "Top Underweight"
	SectionActiveWeights   = "Active Weights"
)

// Column headers used by every exported artifact. Report consumers depend on
// these exact names.
const (
	HeaderStock                = "Stock"
	HeaderSchemeWeight         = "Scheme_Weight"
	HeaderBenchmarkWeight      = "Benchmark_Weight"
	HeaderActiveWeight         = "Active_Weight"
	HeaderIndustry             = "Industry"
	HeaderFundWeight           = "Fund Weight"
	HeaderIndustryBenchmark    = "Benchmark Weight"
	HeaderIndustryActiveWeight = "Active Weight"
)

// HoldingHeaders are the headers of stock-level sections.
func HoldingHeaders() []string {
	return []string{HeaderStock, HeaderSchemeWeight, HeaderBenchmarkWeight, HeaderActiveWeight}
}

// IndustryHeaders are the headers of the industry summary section.
func IndustryHeaders() []string {
	return []string{HeaderIndustry, HeaderFundWeight, HeaderIndustryBenchmark, HeaderIndustryActiveWeight}
}

// Section is a flat named table. Cells are strings or decimal.Decimal values.
type Section struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// HoldingsSection renders reconciled holdings as a stock-level table.
func HoldingsSection(name string, rs []ReconciledHolding) Section {
	s := Section{Name: name, Headers: HoldingHeaders(), Rows: make([][]any, 0, len(rs))}
	for _, r := range rs {
		s.Rows = append(s.Rows, []any{r.Stock, r.SchemeWeight, r.BenchmarkWeight, r.ActiveWeight})
	}
	return s
}

// IndustrySection renders industry summaries.
func IndustrySection(ss []IndustrySummary) Section {
	s := Section{Name: SectionIndustrySummary, Headers: IndustryHeaders(), Rows: make([][]any, 0, len(ss))}
	for _, i := range ss {
		s.Rows = append(s.Rows, []any{i.Industry, i.FundWeight, i.BenchmarkWeight, i.ActiveWeight})
	}
	return s
}

// BuildReport assembles the three report sections in their fixed order.
func BuildReport(industries []IndustrySummary, ranking Ranking) []Section {
	return []Section{
		IndustrySection(industries),
		HoldingsSection(SectionTopOverweight, ranking.Overweight),
		HoldingsSection(SectionTopUnderweight, ranking.Underweight),
	}
}
