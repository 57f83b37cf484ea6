package activeweight

import "strings"

// Role is a canonical column category that the resolver maps onto an actual,
// variably named source column.
type Role string

// Canonical roles. The string values double as canonical column names.
const (
	RoleSchemeName      Role = "scheme_name"
	RoleStockName       Role = "stock_name"
	RoleIndustry        Role = "industry"
	RoleFundWeight      Role = "fund_weight"
	RoleBenchmarkWeight Role = "benchmark_weight"
	RoleActiveWeight    Role = "active_weight"
	RoleBenchmarkFilter Role = "benchmark_filter"
)

// AllRoles lists the canonical roles in canonical column order.
var AllRoles = []Role{
	RoleSchemeName,
	RoleStockName,
	RoleIndustry,
	RoleFundWeight,
	RoleBenchmarkWeight,
	RoleActiveWeight,
	RoleBenchmarkFilter,
}

var roleLabels = map[Role]string{
	RoleSchemeName:      "Scheme Name",
	RoleStockName:       "Stock Name",
	RoleIndustry:        "Industry",
	RoleFundWeight:      "Fund Weight",
	RoleBenchmarkWeight: "Benchmark Weight",
	RoleActiveWeight:    "Active Weight",
	RoleBenchmarkFilter: "Benchmark Name",
}

// Label returns the human readable name of the role.
func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// IsWeight reports whether values of the role are numeric weights.
func (r Role) IsWeight() bool {
	switch r {
	case RoleFundWeight, RoleBenchmarkWeight, RoleActiveWeight:
		return true
	}
	return false
}

// IsIdentity reports whether a row lacking this role is excluded during
// normalization when the role is required.
func (r Role) IsIdentity() bool {
	switch r {
	case RoleSchemeName, RoleStockName, RoleIndustry:
		return true
	}
	return false
}

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// ParseRole converts a canonical role name, as used in configuration files,
// into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Required role sets for the two source tables.
var (
	SchemeRequiredRoles    = []Role{RoleSchemeName, RoleStockName, RoleIndustry, RoleFundWeight}
	BenchmarkRequiredRoles = []Role{RoleStockName, RoleBenchmarkWeight}
)

// ColumnMapping maps a canonical role to the actual column name found in a
// table. Unresolved roles are absent.
type ColumnMapping map[Role]string

// Column returns the actual column resolved for role.
func (m ColumnMapping) Column(role Role) (string, bool) {
	c, ok := m[role]
	return c, ok && c != ""
}

// Has reports whether role is resolved.
func (m ColumnMapping) Has(role Role) bool {
	_, ok := m.Column(role)
	return ok
}

// Missing returns the roles of required that are not resolved, in the order
// they were requested.
func (m ColumnMapping) Missing(required []Role) []Role {
	var missing []Role
	for _, r := range required {
		if !m.Has(r) {
			missing = append(missing, r)
		}
	}
	return missing
}

// Require returns a *SchemaResolutionError naming every required role that is
// not resolved. columns is the full header list of the table, reported for
// diagnosis.
func (m ColumnMapping) Require(required []Role, columns []string) error {
	missing := m.Missing(required)
	if len(missing) == 0 {
		return nil
	}
	return &SchemaResolutionError{
		Missing: missing,
		Columns: append([]string(nil), columns...),
	}
}

// Roles returns the resolved roles in canonical order.
func (m ColumnMapping) Roles() []Role {
	var roles []Role
	for _, r := range AllRoles {
		if m.Has(r) {
			roles = append(roles, r)
		}
	}
	return roles
}

// Identity returns a mapping where every role in roles maps onto a column of
// the same name. It describes a table that is already canonical.
func Identity(roles ...Role) ColumnMapping {
	m := make(ColumnMapping, len(roles))
	for _, r := range roles {
		m[r] = string(r)
	}
	return m
}
