package activeweight

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaResolution is matched by every *SchemaResolutionError.
var ErrSchemaResolution = errors.New("schema resolution failed")

// SchemaResolutionError reports required roles that have no matching column in
// a table header. It is fatal to the analysis: computing over a wrongly mapped
// column is worse than refusing to compute.
type SchemaResolutionError struct {
	Missing []Role
	Columns []string
}

// Error implements the error interface
func (e *SchemaResolutionError) Error() string {
	names := make([]string, len(e.Missing))
	for i, r := range e.Missing {
		names[i] = string(r)
	}
	return fmt.Sprintf("missing required columns: %s (available columns: %s)",
		strings.Join(names, ", "), strings.Join(quoteAll(e.Columns), ", "))
}

// Is makes errors.Is(err, ErrSchemaResolution) succeed.
func (e *SchemaResolutionError) Is(target error) bool {
	return target == ErrSchemaResolution
}

// MissingLabels returns the human readable names of the missing roles.
func (e *SchemaResolutionError) MissingLabels() []string {
	labels := make([]string, len(e.Missing))
	for i, r := range e.Missing {
		labels[i] = r.Label()
	}
	return labels
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
