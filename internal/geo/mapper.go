package geo

import (
	"strings"

	"donordash/internal/core"
)

// Attach resolves each record's state code against the reference table and
// sets GeoID in place. Records with an unrecognized code keep an empty GeoID:
// they stay in the cleaned set for the non-geographic aggregates but never
// reach the choropleth join. Returns the number of unresolved records.
func Attach(gifts []core.Gift) int {
	unresolved := 0
	for i := range gifts {
		ref, ok := Lookup(strings.ToUpper(strings.TrimSpace(gifts[i].State)))
		if !ok {
			gifts[i].GeoID = ""
			unresolved++
			continue
		}
		gifts[i].State = ref.Code
		gifts[i].GeoID = ref.FIPS
	}
	return unresolved
}
