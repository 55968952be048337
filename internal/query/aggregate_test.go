package query

import (
	"testing"

	"donordash/internal/core"
	"donordash/internal/geo"
)

func TestByGeoPadsEveryGeography(t *testing.T) {
	totals := ByGeo(sampleGifts())

	if len(totals) != geo.Count() {
		t.Fatalf("expected %d rows (one per recognized geography), got %d", geo.Count(), len(totals))
	}

	byID := make(map[string]core.GeoTotal, len(totals))
	for _, gt := range totals {
		if dup, ok := byID[gt.GeoID]; ok {
			t.Fatalf("geography %s appears twice: %+v / %+v", gt.GeoID, dup, gt)
		}
		byID[gt.GeoID] = gt
	}

	if ca := byID["06"]; ca.Total != 150 || ca.Count != 2 {
		t.Fatalf("CA = %+v, expected total 150 count 2", ca)
	}
	if tx := byID["48"]; tx.Total != 200 || tx.Count != 1 {
		t.Fatalf("TX = %+v, expected total 200 count 1", tx)
	}
	// Every zero-match geography holds exactly 0, not an absent row.
	if wy := byID["56"]; wy.Total != 0 || wy.Count != 0 {
		t.Fatalf("WY = %+v, expected zero totals", wy)
	}
}

func TestByGeoExcludesUnresolved(t *testing.T) {
	totals := ByGeo(sampleGifts())
	var sum float64
	for _, gt := range totals {
		sum += gt.Total
	}
	// The ZZ row (75) is excluded from geography-keyed aggregation.
	if sum != 350 {
		t.Fatalf("geo total = %v, expected 350 (unresolved row excluded)", sum)
	}
}

func TestByGeoEmptyInput(t *testing.T) {
	totals := ByGeo(nil)
	if len(totals) != geo.Count() {
		t.Fatalf("empty input must still pad all geographies, got %d", len(totals))
	}
	for _, gt := range totals {
		if gt.Total != 0 || gt.Count != 0 {
			t.Fatalf("expected zero totals, got %+v", gt)
		}
	}
}

func TestByCategory(t *testing.T) {
	totals, err := ByCategory(sampleGifts(), core.ColCollege)
	if err != nil {
		t.Fatal(err)
	}
	want := []core.CategoryTotal{
		{Key: "Engineering", Total: 300, Count: 2},
		{Key: "Law", Total: 50, Count: 1},
		{Key: "Arts", Total: 75, Count: 1},
	}
	if len(totals) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(totals))
	}
	for i, w := range want {
		if totals[i] != w {
			t.Fatalf("category %d = %+v, expected %+v (first-seen order)", i, totals[i], w)
		}
	}
}

func TestByCategoryRetainsUnresolvedRows(t *testing.T) {
	totals, err := ByCategory(sampleGifts(), core.ColAllocation)
	if err != nil {
		t.Fatal(err)
	}
	for _, ct := range totals {
		if ct.Key == "Building" {
			// 50 (CA) + 75 (unresolved ZZ): non-geo aggregates keep every row.
			if ct.Total != 125 {
				t.Fatalf("Building = %v, expected 125", ct.Total)
			}
			return
		}
	}
	t.Fatal("Building allocation missing from aggregate")
}

func TestByCategoryUnknownColumn(t *testing.T) {
	if _, err := ByCategory(sampleGifts(), "Donor Name"); err == nil {
		t.Fatal("expected error for unknown column")
	}
}
