package query

import (
	"context"

	"donordash/internal/core"
)

// View is the value object returned for one filter application: the
// filtered record set plus every aggregate the dashboard charts consume.
type View struct {
	Records       []core.Gift
	ByGeo         []core.GeoTotal
	ByCollege     []core.CategoryTotal
	BySubcategory []core.CategoryTotal
	ByYear        []core.CategoryTotal
}

// Ports consumed by the HTTP layer. The in-memory Service and the SQLite
// repository both satisfy them.
type (
	OptionLister interface {
		// CategoryOptions returns the ordered distinct values for a column,
		// preceded by the All sentinel.
		CategoryOptions(ctx context.Context, column string) ([]string, error)
	}

	Viewer interface {
		// ApplyFilters recomputes the filtered view for a constraint set.
		ApplyFilters(ctx context.Context, constraints []Constraint) (*View, error)
	}

	SummaryReader interface {
		// CleaningSummary reports what the last load kept and dropped.
		CleaningSummary(ctx context.Context) (core.CleaningSummary, error)
	}

	// Versioner reports an opaque identifier that changes whenever the
	// underlying dataset changes. Callers stamp it into cache keys so stale
	// views fall out as soon as a new load lands.
	Versioner interface {
		DatasetVersion(ctx context.Context) (string, error)
	}
)
