package exporter

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatWeight renders a weight for text output without trailing zeros, so
// 13.40 appears as 13.4 and 2.00 as 2.
func FormatWeight(d decimal.Decimal) string {
	return d.String()
}

// FormatWeightFixed renders a weight with exactly places decimals.
func FormatWeightFixed(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}

// formatCell renders a report cell as CSV text.
func formatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case decimal.Decimal:
		return FormatWeight(c)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	default:
		return fmt.Sprint(c)
	}
}

// workbookCell converts a report cell into a value excelize stores natively.
// Decimals become numbers so spreadsheet formulas work on them.
func workbookCell(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return v
}
