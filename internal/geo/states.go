// Package geo holds the static U.S. state reference table and the mapping
// from donor state codes to the geographic identifiers used by the
// choropleth topology.
package geo

// StateRef is one recognized region: postal code, FIPS identifier, and
// display name. FIPS is kept as a zero-padded two-digit string so the join
// key matches the us-10m topojson id space exactly; the identifier type is
// uniform across the whole table, never a mixed string/integer form.
type StateRef struct {
	Code string
	FIPS string
	Name string
}

// stateRefs enumerates the recognized regions: the 50 states plus the
// District of Columbia. Loaded once at init, never mutated.
var stateRefs = []StateRef{
	{"AL", "01", "Alabama"},
	{"AK", "02", "Alaska"},
	{"AZ", "04", "Arizona"},
	{"AR", "05", "Arkansas"},
	{"CA", "06", "California"},
	{"CO", "08", "Colorado"},
	{"CT", "09", "Connecticut"},
	{"DE", "10", "Delaware"},
	{"DC", "11", "District of Columbia"},
	{"FL", "12", "Florida"},
	{"GA", "13", "Georgia"},
	{"HI", "15", "Hawaii"},
	{"ID", "16", "Idaho"},
	{"IL", "17", "Illinois"},
	{"IN", "18", "Indiana"},
	{"IA", "19", "Iowa"},
	{"KS", "20", "Kansas"},
	{"KY", "21", "Kentucky"},
	{"LA", "22", "Louisiana"},
	{"ME", "23", "Maine"},
	{"MD", "24", "Maryland"},
	{"MA", "25", "Massachusetts"},
	{"MI", "26", "Michigan"},
	{"MN", "27", "Minnesota"},
	{"MS", "28", "Mississippi"},
	{"MO", "29", "Missouri"},
	{"MT", "30", "Montana"},
	{"NE", "31", "Nebraska"},
	{"NV", "32", "Nevada"},
	{"NH", "33", "New Hampshire"},
	{"NJ", "34", "New Jersey"},
	{"NM", "35", "New Mexico"},
	{"NY", "36", "New York"},
	{"NC", "37", "North Carolina"},
	{"ND", "38", "North Dakota"},
	{"OH", "39", "Ohio"},
	{"OK", "40", "Oklahoma"},
	{"OR", "41", "Oregon"},
	{"PA", "42", "Pennsylvania"},
	{"RI", "44", "Rhode Island"},
	{"SC", "45", "South Carolina"},
	{"SD", "46", "South Dakota"},
	{"TN", "47", "Tennessee"},
	{"TX", "48", "Texas"},
	{"UT", "49", "Utah"},
	{"VT", "50", "Vermont"},
	{"VA", "51", "Virginia"},
	{"WA", "53", "Washington"},
	{"WV", "54", "West Virginia"},
	{"WI", "55", "Wisconsin"},
	{"WY", "56", "Wyoming"},
}

var byCode map[string]StateRef

func init() {
	byCode = make(map[string]StateRef, len(stateRefs))
	for _, s := range stateRefs {
		byCode[s.Code] = s
	}
}

// States returns the full reference table in canonical order. The returned
// slice is a copy; callers may not mutate the reference data.
func States() []StateRef {
	out := make([]StateRef, len(stateRefs))
	copy(out, stateRefs)
	return out
}

// Lookup resolves a postal code to its reference entry.
func Lookup(code string) (StateRef, bool) {
	s, ok := byCode[code]
	return s, ok
}

// Count returns the number of recognized regions.
func Count() int {
	return len(stateRefs)
}
