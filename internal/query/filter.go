// Package query implements the filtered/aggregated views served to the
// dashboard front end.
package query

import (
	"fmt"
	"sort"
	"strings"

	"donordash/internal/core"
)

// All is the sentinel option meaning "no constraint on this column".
const All = "All"

// Constraint is one equality predicate: a categorical column and the single
// accepted value. A Value of All (or empty) is a no-op.
type Constraint struct {
	Column string
	Value  string
}

// Active reports whether the constraint actually narrows the record set.
func (c Constraint) Active() bool {
	return c.Value != "" && c.Value != All
}

// Apply returns the subset of gifts satisfying the conjunction of all active
// constraints. An empty constraint set returns the input unchanged. Unknown
// column names fail with core.ErrUnknownColumn even when no record would be
// inspected; unknown values simply yield an empty result, since a stale
// option is a user condition, not a programmer error.
func Apply(gifts []core.Gift, constraints []Constraint) ([]core.Gift, error) {
	active := make([]Constraint, 0, len(constraints))
	for _, c := range constraints {
		if !core.IsFilterColumn(c.Column) {
			return nil, fmt.Errorf("%w: %q", core.ErrUnknownColumn, c.Column)
		}
		if c.Active() {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return gifts, nil
	}

	out := make([]core.Gift, 0, len(gifts))
	for _, g := range gifts {
		keep := true
		for _, c := range active {
			v, err := g.ColumnValue(c.Column)
			if err != nil {
				return nil, err
			}
			if v != c.Value {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, g)
		}
	}
	return out, nil
}

// Fingerprint renders a constraint set as a stable cache key: active
// constraints only, sorted by column.
func Fingerprint(constraints []Constraint) string {
	active := make([]Constraint, 0, len(constraints))
	for _, c := range constraints {
		if c.Active() {
			active = append(active, c)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Column < active[j].Column })

	parts := make([]string, len(active))
	for i, c := range active {
		parts[i] = c.Column + "=" + c.Value
	}
	return strings.Join(parts, "&")
}
