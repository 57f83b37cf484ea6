package activeweight

import (
	"strings"
)

// Record is one source row: column name to the cell's textual value. Numeric
// cells are carried in their textual form and empty cells as "".
type Record map[string]string

// RawTable is an ordered sequence of records loaded from a tabular source.
// Header offsets and text encoding are handled by the loader before the table
// reaches this package.
type RawTable struct {
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (t RawTable) Len() int {
	return len(t.Rows)
}

// HoldingRecord is a single holding on one side of the comparison.
type HoldingRecord struct {
	Stock    string
	Weight   Weight
	Industry string
}

// CanonicalRow is a normalized row keyed by canonical role.
type CanonicalRow struct {
	Values  map[Role]string
	Weights map[Role]Weight
	// Extra holds unmapped source columns when the normalizer retains them.
	Extra map[string]string
}

// Value returns the text value of an identity role.
func (r CanonicalRow) Value(role Role) string {
	return r.Values[role]
}

// Weight returns the weight of a weight role. Unmapped roles are missing.
func (r CanonicalRow) Weight(role Role) Weight {
	return r.Weights[role]
}

// CanonicalTable is the normalized view of a RawTable.
type CanonicalTable struct {
	// Roles are the canonical columns present, in canonical order.
	Roles []Role
	// Extra lists the retained original columns.
	Extra []string
	Rows  []CanonicalRow

	// Dropped counts rows excluded for missing identity values.
	Dropped int
	// Unparseable counts weight cells that held non-numeric text.
	Unparseable int
}

// Has reports whether the table carries role.
func (t *CanonicalTable) Has(role Role) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (t *CanonicalTable) Len() int {
	return len(t.Rows)
}

// Filter returns the rows whose value for role equals value, ignoring case and
// surrounding whitespace. The counters of the receiver are carried over.
func (t *CanonicalTable) Filter(role Role, value string) *CanonicalTable {
	value = strings.TrimSpace(value)
	out := &CanonicalTable{
		Roles:       t.Roles,
		Extra:       t.Extra,
		Dropped:     t.Dropped,
		Unparseable: t.Unparseable,
	}
	for _, row := range t.Rows {
		if strings.EqualFold(strings.TrimSpace(row.Value(role)), value) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Distinct returns the non-empty values of role in order of first appearance.
func (t *CanonicalTable) Distinct(role Role) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range t.Rows {
		v := row.Value(role)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Holdings projects the table onto holding records using weightRole as the
// weight of each record.
func (t *CanonicalTable) Holdings(weightRole Role) []HoldingRecord {
	out := make([]HoldingRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, HoldingRecord{
			Stock:    row.Value(RoleStockName),
			Weight:   row.Weight(weightRole),
			Industry: row.Value(RoleIndustry),
		})
	}
	return out
}

// Raw renders the table back into a RawTable whose columns are named after the
// canonical roles, followed by any retained original columns.
func (t *CanonicalTable) Raw() RawTable {
	raw := RawTable{Columns: make([]string, 0, len(t.Roles)+len(t.Extra))}
	for _, r := range t.Roles {
		raw.Columns = append(raw.Columns, string(r))
	}
	raw.Columns = append(raw.Columns, t.Extra...)
	for _, row := range t.Rows {
		rec := make(Record, len(raw.Columns))
		for _, r := range t.Roles {
			if r.IsWeight() {
				rec[string(r)] = row.Weight(r).String()
			} else {
				rec[string(r)] = row.Value(r)
			}
		}
		for _, c := range t.Extra {
			rec[c] = row.Extra[c]
		}
		raw.Rows = append(raw.Rows, rec)
	}
	return raw
}
