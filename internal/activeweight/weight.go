package activeweight

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Weight is a percentage weight read from a source cell. An invalid Weight is
// either missing (empty cell) or unparseable (Raw keeps the offending text).
// Both aggregate as zero, but they stay distinguishable until then.
type Weight struct {
	decimal.NullDecimal
	Raw string
}

// NewWeight returns a valid weight.
func NewWeight(d decimal.Decimal) Weight {
	return Weight{NullDecimal: decimal.NullDecimal{Decimal: d, Valid: true}}
}

// WeightFromFloat returns a valid weight for f.
func WeightFromFloat(f float64) Weight {
	return NewWeight(decimal.NewFromFloat(f))
}

// Bounds of a plausible percentage weight. Cells outside them are treated as
// unparseable.
const maxWeightScale = 30

var maxWeightMagnitude = decimal.New(1, 6)

// ParseWeight coerces a cell into a Weight. Surrounding whitespace is ignored.
// Any text that is not a plain decimal number, including markers such as
// "N/A", yields an unparseable weight rather than an error. So does a number
// whose exponent exceeds maxWeightScale in either direction or whose
// magnitude exceeds maxWeightMagnitude.
func ParseWeight(s string) Weight {
	s = strings.TrimSpace(s)
	if s == "" {
		return Weight{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !plausibleWeight(d) {
		return Weight{Raw: s}
	}
	return NewWeight(d)
}

// plausibleWeight checks the exponent before comparing so that huge exponents
// never reach the rescaling arithmetic.
func plausibleWeight(d decimal.Decimal) bool {
	if exp := d.Exponent(); exp > maxWeightScale || exp < -maxWeightScale {
		return false
	}
	return d.Abs().LessThanOrEqual(maxWeightMagnitude)
}

// Missing reports whether the source cell was empty.
func (w Weight) Missing() bool {
	return !w.Valid && w.Raw == ""
}

// Unparseable reports whether the source cell held non-numeric text.
func (w Weight) Unparseable() bool {
	return !w.Valid && w.Raw != ""
}

// OrZero returns the weight value, or zero when the weight is invalid.
func (w Weight) OrZero() decimal.Decimal {
	if !w.Valid {
		return decimal.Zero
	}
	return w.Decimal
}

// String renders the weight as it would appear in a source cell.
func (w Weight) String() string {
	if !w.Valid {
		return w.Raw
	}
	return w.Decimal.String()
}

// Equal reports whether both weights have the same validity and value.
func (w Weight) Equal(o Weight) bool {
	if w.Valid != o.Valid {
		return false
	}
	if !w.Valid {
		return w.Raw == o.Raw
	}
	return w.Decimal.Equal(o.Decimal)
}
