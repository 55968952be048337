package query

import (
	"donordash/internal/core"
	"donordash/internal/geo"
)

// ByGeo groups the records by geographic identifier, summing amounts and
// counting rows, then left-joins against the full state reference so every
// recognized geography appears exactly once. Geographies with no matching
// records get explicit zero totals; without that padding the choropleth
// renders gaps. Records with an unresolved state code are skipped here but
// remain available to the non-geographic aggregates.
func ByGeo(gifts []core.Gift) []core.GeoTotal {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, g := range gifts {
		if !g.Resolved() {
			continue
		}
		sums[g.GeoID] += g.Amount
		counts[g.GeoID]++
	}

	refs := geo.States()
	out := make([]core.GeoTotal, 0, len(refs))
	for _, ref := range refs {
		out = append(out, core.GeoTotal{
			GeoID: ref.FIPS,
			Code:  ref.Code,
			Name:  ref.Name,
			Total: sums[ref.FIPS],
			Count: counts[ref.FIPS],
		})
	}
	return out
}

// ByCategory groups the records by the named categorical column, summing
// amounts and counting rows. No padding: values absent from the records do
// not appear. Output preserves first-seen input order, which keeps later
// sort-by-total presentation stable on ties.
func ByCategory(gifts []core.Gift, column string) ([]core.CategoryTotal, error) {
	index := make(map[string]int)
	var out []core.CategoryTotal
	for _, g := range gifts {
		key, err := g.ColumnValue(column)
		if err != nil {
			return nil, err
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, core.CategoryTotal{Key: key})
		}
		out[i].Total += g.Amount
		out[i].Count++
	}
	return out, nil
}
