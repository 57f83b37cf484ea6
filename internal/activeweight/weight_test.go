package activeweight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeight(t *testing.T) {
	tests := []struct {
		in          string
		valid       bool
		missing     bool
		unparseable bool
		want        string
	}{
		{in: "5.25", valid: true, want: "5.25"},
		{in: "  -0.5 ", valid: true, want: "-0.5"},
		{in: "0", valid: true, want: "0"},
		{in: "", missing: true},
		{in: "   ", missing: true},
		{in: "N/A", unparseable: true},
		{in: "1,234", unparseable: true},
		{in: "12%", unparseable: true},
		{in: "1e2", valid: true, want: "100"},
		{in: "1000000", valid: true, want: "1000000"},
		{in: "1000000.5", unparseable: true},
		{in: "1e400", unparseable: true},
		{in: "1e2000000", unparseable: true},
		{in: "-1e2000000000", unparseable: true},
		{in: "1e-2000000", unparseable: true},
		{in: "0e999", unparseable: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w := ParseWeight(tt.in)
			assert.Equal(t, tt.valid, w.Valid)
			assert.Equal(t, tt.missing, w.Missing())
			assert.Equal(t, tt.unparseable, w.Unparseable())
			if tt.valid {
				assertDecimal(t, tt.want, w.Decimal)
			} else {
				assert.True(t, w.OrZero().IsZero())
			}
		})
	}
}

func TestWeight_UnparseableIsNotZero(t *testing.T) {
	na := ParseWeight("N/A")
	zero := ParseWeight("0")
	missing := ParseWeight("")

	assert.True(t, na.OrZero().Equal(zero.OrZero()))
	assert.False(t, na.Equal(zero))
	assert.False(t, na.Equal(missing))
	assert.False(t, missing.Equal(zero))
	assert.True(t, na.Equal(ParseWeight(" N/A ")))
	assert.Equal(t, "N/A", na.String())
	assert.Equal(t, "", missing.String())
}

func TestWeight_RoundTripsThroughString(t *testing.T) {
	for _, s := range []string{"5.0", "0.125", "-3", "N/A", ""} {
		w := ParseWeight(s)
		assert.True(t, w.Equal(ParseWeight(w.String())), s)
	}
	assert.True(t, WeightFromFloat(2.5).Equal(ParseWeight("2.50")))
}

func TestOversizedWeights_AggregateAsZero(t *testing.T) {
	scheme := []HoldingRecord{
		holding("AAA", "1e2000000", "Tech"),
		holding("BBB", "1.5", "Banks"),
	}
	bench := []HoldingRecord{
		holding("AAA", "1e400", "Tech"),
		holding("BBB", "2", "Banks"),
	}
	require.True(t, scheme[0].Weight.Unparseable())
	require.True(t, bench[0].Weight.Unparseable())

	rs := Reconcile(scheme, bench)
	require.Len(t, rs, 2)
	assertDecimal(t, "0", rs[0].ActiveWeight)
	assertDecimal(t, "-0.5", rs[1].ActiveWeight)

	ranking := Rank(rs, 1)
	assert.Equal(t, []string{"AAA"}, stocks(ranking.Overweight))
	assert.Equal(t, []string{"BBB"}, stocks(ranking.Underweight))

	for _, s := range AggregateByIndustry(scheme, bench) {
		f, _ := s.ActiveWeight.Float64()
		assert.False(t, math.IsInf(f, 0), s.Industry)
	}
}
