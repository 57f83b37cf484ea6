package activeweight

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func holding(stock, weight, industry string) HoldingRecord {
	return HoldingRecord{Stock: stock, Weight: ParseWeight(weight), Industry: industry}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "expected %s, got %s %v", want, got.String(), msgAndArgs)
}

func stocks(rs []ReconciledHolding) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Stock
	}
	return out
}
