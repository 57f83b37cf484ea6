package activeweight

import (
	"fmt"
	"regexp"
	"strings"
)

// RolePatterns is the ordered list of header patterns for one role. Patterns
// are case-insensitive regular expressions matched anywhere in the header.
type RolePatterns struct {
	Role     Role     `yaml:"role" json:"role"`
	Patterns []string `yaml:"patterns" json:"patterns"`
}

// PatternSet is an ordered list of (role, patterns) pairs.
type PatternSet []RolePatterns

// Patterns returns the patterns configured for role.
func (ps PatternSet) Patterns(role Role) []string {
	for _, rp := range ps {
		if rp.Role == role {
			return rp.Patterns
		}
	}
	return nil
}

// With returns a copy of ps where role uses patterns, replacing any previous
// entry for the role or appending a new one.
func (ps PatternSet) With(role Role, patterns ...string) PatternSet {
	out := make(PatternSet, 0, len(ps)+1)
	replaced := false
	for _, rp := range ps {
		if rp.Role == role {
			out = append(out, RolePatterns{Role: role, Patterns: patterns})
			replaced = true
			continue
		}
		out = append(out, rp)
	}
	if !replaced {
		out = append(out, RolePatterns{Role: role, Patterns: patterns})
	}
	return out
}

// Resolver locates the column holding each canonical role in a table header.
// A Resolver is immutable and safe for concurrent use.
type Resolver struct {
	roles []compiledRole
}

type compiledRole struct {
	role     Role
	patterns []*regexp.Regexp
}

// NewResolver compiles the pattern set. An invalid pattern or an unknown role
// is a configuration error.
func NewResolver(ps PatternSet) (*Resolver, error) {
	r := &Resolver{roles: make([]compiledRole, 0, len(ps))}
	for _, rp := range ps {
		if !rp.Role.Valid() {
			return nil, fmt.Errorf("unknown role %q", rp.Role)
		}
		cr := compiledRole{role: rp.Role}
		for _, p := range rp.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q for role %s: %w", p, rp.Role, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		r.roles = append(r.roles, cr)
	}
	return r, nil
}

// MustResolver is like NewResolver but panics on error. Use it for pattern
// sets known at compile time.
func MustResolver(ps PatternSet) *Resolver {
	r, err := NewResolver(ps)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the mapping for columns. For each role the first column, in
// header order, that matches any of the role's patterns is selected. Headers
// are compared with surrounding whitespace removed. Roles with no matching
// column are absent from the mapping.
func (r *Resolver) Resolve(columns []string) ColumnMapping {
	m := make(ColumnMapping, len(r.roles))
	for _, cr := range r.roles {
		if col, ok := cr.match(columns); ok {
			m[cr.role] = col
		}
	}
	return m
}

func (cr compiledRole) match(columns []string) (string, bool) {
	for _, col := range columns {
		header := strings.TrimSpace(col)
		if header == "" {
			continue
		}
		for _, re := range cr.patterns {
			if re.MatchString(header) {
				return col, true
			}
		}
	}
	return "", false
}

// ResolveColumns compiles ps and resolves columns in one call.
func ResolveColumns(ps PatternSet, columns []string) (ColumnMapping, error) {
	r, err := NewResolver(ps)
	if err != nil {
		return nil, err
	}
	return r.Resolve(columns), nil
}

// DefaultSchemePatterns returns the header patterns for scheme holdings
// tables, derived from the layouts published by fund data vendors.
func DefaultSchemePatterns() PatternSet {
	return PatternSet{
		{Role: RoleSchemeName, Patterns: []string{`scheme name`, `^scheme$`, `fund name`}},
		{Role: RoleStockName, Patterns: []string{`^(security|stock|company)( name)?$`, `security name`, `stock name`, `company name`, `instrument`, `^(security|stock)\b`}},
		{Role: RoleIndustry, Patterns: []string{`industry`, `sector`}},
		{Role: RoleFundWeight, Patterns: []string{`% of holdings`, `fund weight`, `scheme weight`, `% to net assets`, `holding %`}},
		{Role: RoleBenchmarkWeight, Patterns: []string{`benchmark weight`, `index weight`, `nifty weight`}},
		{Role: RoleActiveWeight, Patterns: []string{`active weight`}},
		{Role: RoleBenchmarkFilter, Patterns: []string{`^benchmark( name)?$`, `benchmark index`}},
	}
}

// DefaultBenchmarkPatterns returns the header patterns for benchmark
// constituent tables, which may carry several indices distinguished by a
// benchmark name column.
func DefaultBenchmarkPatterns() PatternSet {
	return PatternSet{
		{Role: RoleBenchmarkFilter, Patterns: []string{`^(benchmark|index)( name)?$`, `benchmark name`, `index name`}},
		{Role: RoleStockName, Patterns: []string{`^(security|stock|company)( name)?$`, `security name`, `stock name`, `company name`, `instrument`, `^(security|stock)\b`}},
		{Role: RoleIndustry, Patterns: []string{`industry`, `sector`}},
		{Role: RoleBenchmarkWeight, Patterns: []string{`benchmark weight`, `index weight`, `weight`}},
	}
}
