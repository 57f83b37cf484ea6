package activeweight

import (
	"log/slog"
	"strings"
)

// naMarkers are cell values treated as empty for identity roles.
var naMarkers = map[string]bool{
	"nan":  true,
	"n/a":  true,
	"#n/a": true,
	"null": true,
}

// Normalizer converts raw tables into the canonical schema.
type Normalizer struct {
	logger *slog.Logger
	// RetainOriginals keeps unmapped source columns in CanonicalRow.Extra.
	RetainOriginals bool
}

// NewNormalizer creates a new normalizer. A nil logger uses slog.Default().
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger.With(slog.String("component", "normalizer"))}
}

// NormalizeTable normalizes raw with a default normalizer.
func NormalizeTable(raw RawTable, mapping ColumnMapping, required []Role) (*CanonicalTable, int, error) {
	return NewNormalizer(nil).Normalize(raw, mapping, required)
}

// Normalize produces the canonical table for raw and the number of rows
// dropped for missing identity values.
//
// Every required role must be resolved by mapping, otherwise a
// *SchemaResolutionError is returned before any row is read. Stock identifiers
// are trimmed and upper-cased, other identity values trimmed. Weight cells are
// coerced with ParseWeight; unparseable cells are counted and logged but never
// fail the table.
func (n *Normalizer) Normalize(raw RawTable, mapping ColumnMapping, required []Role) (*CanonicalTable, int, error) {
	if err := mapping.Require(required, raw.Columns); err != nil {
		n.logger.Error("required columns not resolved",
			slog.Any("missing", err.(*SchemaResolutionError).Missing),
			slog.Any("columns", raw.Columns))
		return nil, 0, err
	}

	roles := mapping.Roles()
	mapped := make(map[string]bool, len(roles))
	for _, r := range roles {
		col, _ := mapping.Column(r)
		mapped[col] = true
	}

	table := &CanonicalTable{Roles: roles}
	if n.RetainOriginals {
		for _, c := range raw.Columns {
			if !mapped[c] {
				table.Extra = append(table.Extra, c)
			}
		}
	}

	var dropRoles []Role
	for _, r := range required {
		if r.IsIdentity() {
			dropRoles = append(dropRoles, r)
		}
	}

	unparseableByRole := make(map[Role]int)
	for i, rec := range raw.Rows {
		row := CanonicalRow{
			Values:  make(map[Role]string),
			Weights: make(map[Role]Weight),
		}
		for _, r := range roles {
			col, _ := mapping.Column(r)
			cell := rec[col]
			if r.IsWeight() {
				w := ParseWeight(cell)
				if w.Unparseable() {
					unparseableByRole[r]++
					n.logger.Debug("unparseable weight cell",
						slog.Int("row", i),
						slog.String("column", col),
						slog.String("value", w.Raw))
				}
				row.Weights[r] = w
				continue
			}
			row.Values[r] = normalizeIdentity(r, cell)
		}

		if missingIdentity(row, dropRoles) {
			table.Dropped++
			continue
		}
		if n.RetainOriginals {
			row.Extra = make(map[string]string, len(table.Extra))
			for _, c := range table.Extra {
				row.Extra[c] = rec[c]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	for _, c := range unparseableByRole {
		table.Unparseable += c
	}
	if table.Unparseable > 0 {
		attrs := []any{slog.Int("count", table.Unparseable)}
		for _, r := range roles {
			if c := unparseableByRole[r]; c > 0 {
				attrs = append(attrs, slog.Int(string(r), c))
			}
		}
		n.logger.Warn("unparseable weight cells substituted with zero", attrs...)
	}
	if table.Dropped > 0 {
		n.logger.Info("rows dropped for missing identity values",
			slog.Int("dropped", table.Dropped),
			slog.Int("kept", len(table.Rows)))
	}

	return table, table.Dropped, nil
}

// NormalizeStock returns the join key for a stock identifier.
func NormalizeStock(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func normalizeIdentity(role Role, cell string) string {
	v := strings.TrimSpace(cell)
	if naMarkers[strings.ToLower(v)] {
		return ""
	}
	if role == RoleStockName {
		return strings.ToUpper(v)
	}
	return v
}

func missingIdentity(row CanonicalRow, roles []Role) bool {
	for _, r := range roles {
		if row.Values[r] == "" {
			return true
		}
	}
	return false
}
