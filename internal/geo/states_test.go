package geo

import (
	"testing"

	"donordash/internal/core"
)

func TestLookup(t *testing.T) {
	cases := []struct {
		code string
		fips string
		name string
		ok   bool
	}{
		{"CA", "06", "California", true},
		{"AL", "01", "Alabama", true},
		{"WY", "56", "Wyoming", true},
		{"DC", "11", "District of Columbia", true},
		{"ZZ", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range cases {
		ref, ok := Lookup(tc.code)
		if ok != tc.ok {
			t.Fatalf("Lookup(%q) ok=%v, expected %v", tc.code, ok, tc.ok)
		}
		if ok && (ref.FIPS != tc.fips || ref.Name != tc.name) {
			t.Fatalf("Lookup(%q) = %+v, expected fips=%q name=%q", tc.code, ref, tc.fips, tc.name)
		}
	}
}

// Every identifier in the table must be a zero-padded two-digit string and
// each code must appear exactly once; the map join breaks on either.
func TestReferenceTableCanonical(t *testing.T) {
	seenCode := map[string]bool{}
	seenFIPS := map[string]bool{}
	for _, s := range States() {
		if len(s.FIPS) != 2 {
			t.Fatalf("state %s has non-canonical FIPS %q", s.Code, s.FIPS)
		}
		if s.FIPS[0] < '0' || s.FIPS[0] > '9' || s.FIPS[1] < '0' || s.FIPS[1] > '9' {
			t.Fatalf("state %s has non-numeric FIPS %q", s.Code, s.FIPS)
		}
		if seenCode[s.Code] {
			t.Fatalf("duplicate state code %s", s.Code)
		}
		if seenFIPS[s.FIPS] {
			t.Fatalf("duplicate FIPS %s", s.FIPS)
		}
		seenCode[s.Code] = true
		seenFIPS[s.FIPS] = true
	}
	if Count() != 51 {
		t.Fatalf("expected 51 recognized regions, got %d", Count())
	}
}

func TestAttach(t *testing.T) {
	gifts := []core.Gift{
		{State: "CA"},
		{State: " tx "},
		{State: "ZZ"},
		{State: ""},
	}
	unresolved := Attach(gifts)
	if unresolved != 2 {
		t.Fatalf("expected 2 unresolved, got %d", unresolved)
	}
	if gifts[0].GeoID != "06" {
		t.Fatalf("CA expected GeoID 06, got %q", gifts[0].GeoID)
	}
	if gifts[1].GeoID != "48" || gifts[1].State != "TX" {
		t.Fatalf("tx expected normalized TX/48, got %q/%q", gifts[1].State, gifts[1].GeoID)
	}
	if gifts[2].Resolved() || gifts[3].Resolved() {
		t.Fatal("unrecognized codes must stay unresolved")
	}
}
