package activeweight

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		patterns PatternSet
		columns  []string
		want     ColumnMapping
	}{
		{
			name:     "vendor scheme layout",
			patterns: DefaultSchemePatterns(),
			columns:  []string{"Scheme Name", "Security Name", "Industry", "% of Holdings", "Benchmark"},
			want: ColumnMapping{
				RoleSchemeName:      "Scheme Name",
				RoleStockName:       "Security Name",
				RoleIndustry:        "Industry",
				RoleFundWeight:      "% of Holdings",
				RoleBenchmarkFilter: "Benchmark",
			},
		},
		{
			name:     "case insensitive with surrounding whitespace",
			patterns: DefaultSchemePatterns(),
			columns:  []string{" SCHEME NAME ", "stock", "SECTOR", "Fund Weight (%)"},
			want: ColumnMapping{
				RoleSchemeName: " SCHEME NAME ",
				RoleStockName:  "stock",
				RoleIndustry:   "SECTOR",
				RoleFundWeight: "Fund Weight (%)",
			},
		},
		{
			name:     "first column in header order wins",
			patterns: PatternSet{{Role: RoleIndustry, Patterns: []string{"sector", "industry"}}},
			columns:  []string{"Industry Group", "Sector"},
			want:     ColumnMapping{RoleIndustry: "Industry Group"},
		},
		{
			name:     "blank headers are skipped",
			patterns: PatternSet{{Role: RoleStockName, Patterns: []string{".*"}}},
			columns:  []string{"", "  ", "Stock"},
			want:     ColumnMapping{RoleStockName: "Stock"},
		},
		{
			name:     "unresolved roles are absent",
			patterns: DefaultBenchmarkPatterns(),
			columns:  []string{"Company", "Wt"},
			want:     ColumnMapping{RoleStockName: "Company"},
		},
		{
			name:     "stock header with a qualifier",
			patterns: DefaultSchemePatterns(),
			columns:  []string{"Scheme Name", "Stock Symbol", "Sector", "Fund Weight"},
			want: ColumnMapping{
				RoleSchemeName: "Scheme Name",
				RoleStockName:  "Stock Symbol",
				RoleIndustry:   "Sector",
				RoleFundWeight: "Fund Weight",
			},
		},
		{
			name:     "security header with a qualifier",
			patterns: DefaultBenchmarkPatterns(),
			columns:  []string{"Index", "Security Code", "Index Weight"},
			want: ColumnMapping{
				RoleBenchmarkFilter: "Index",
				RoleStockName:       "Security Code",
				RoleBenchmarkWeight: "Index Weight",
			},
		},
		{
			name:     "benchmark layout",
			patterns: DefaultBenchmarkPatterns(),
			columns:  []string{"Index Name", "Company Name", "Weight(%)"},
			want: ColumnMapping{
				RoleBenchmarkFilter: "Index Name",
				RoleStockName:       "Company Name",
				RoleBenchmarkWeight: "Weight(%)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResolver(tt.patterns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Resolve(tt.columns))
		})
	}
}

func TestNewResolver_Errors(t *testing.T) {
	_, err := NewResolver(PatternSet{{Role: "ticker", Patterns: []string{"x"}}})
	assert.ErrorContains(t, err, "unknown role")

	_, err = NewResolver(PatternSet{{Role: RoleStockName, Patterns: []string{"("}}})
	assert.ErrorContains(t, err, "invalid pattern")

	assert.Panics(t, func() {
		MustResolver(PatternSet{{Role: RoleStockName, Patterns: []string{"["}}})
	})
}

func TestPatternSet_With(t *testing.T) {
	base := DefaultBenchmarkPatterns()
	custom := base.With(RoleBenchmarkWeight, `^wt$`)

	assert.Equal(t, []string{`^wt$`}, custom.Patterns(RoleBenchmarkWeight))
	assert.Len(t, custom, len(base))
	assert.NotEqual(t, custom.Patterns(RoleBenchmarkWeight), base.Patterns(RoleBenchmarkWeight))

	added := base.With(RoleActiveWeight, `active`)
	assert.Len(t, added, len(base)+1)
	assert.Nil(t, base.Patterns(RoleActiveWeight))
}

func TestRequire_MissingIndustry(t *testing.T) {
	columns := []string{"Scheme", "Stock", "Weight%"}
	mapping, err := ResolveColumns(DefaultSchemePatterns(), columns)
	require.NoError(t, err)

	err = mapping.Require([]Role{RoleSchemeName, RoleStockName, RoleIndustry}, columns)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaResolution))

	var sre *SchemaResolutionError
	require.True(t, errors.As(err, &sre))
	assert.Equal(t, []Role{RoleIndustry}, sre.Missing)
	assert.Equal(t, columns, sre.Columns)
	assert.Equal(t, []string{"Industry"}, sre.MissingLabels())
	assert.Contains(t, err.Error(), "industry")
	assert.Contains(t, err.Error(), `"Weight%"`)
}

func TestRequire_NamesEveryMissingRole(t *testing.T) {
	mapping := ColumnMapping{RoleStockName: "Stock"}
	err := mapping.Require(SchemeRequiredRoles, []string{"Stock"})

	var sre *SchemaResolutionError
	require.ErrorAs(t, err, &sre)
	assert.Equal(t, []Role{RoleSchemeName, RoleIndustry, RoleFundWeight}, sre.Missing)
	assert.NoError(t, Identity(SchemeRequiredRoles...).Require(SchemeRequiredRoles, nil))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Stock_Name ")
	assert.True(t, ok)
	assert.Equal(t, RoleStockName, r)

	_, ok = ParseRole("ticker")
	assert.False(t, ok)
}
