package core

// GeoTotal is one row of the choropleth aggregate: summed gifts for a single
// recognized geography. Geographies with no matching records still appear
// with zero totals so the full map renders uniformly.
type GeoTotal struct {
	GeoID string
	Code  string
	Name  string
	Total float64
	Count int
}

// CategoryTotal is an amount aggregated by a categorical value (college,
// allocation subcategory, year, ...).
type CategoryTotal struct {
	Key   string
	Total float64
	Count int
}

// CleaningSummary reports what the cleaning pass kept and dropped, for the
// "rows after cleaning" caption and for observing silent data loss.
type CleaningSummary struct {
	RowsRead   int
	RowsKept   int
	BadDates   int
	BadAmounts int
	Unresolved int // kept rows whose state code has no geography
	MinAmount  float64
	MaxAmount  float64
}
